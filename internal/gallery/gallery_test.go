package gallery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gabrielmiguelok/pakheritage/internal/content"
)

func testCatalog(t *testing.T) *content.Catalog {
	t.Helper()
	c, err := content.NewCatalog([]content.ImageRecord{
		{ID: "1", Src: "https://img.example/1.jpg", Category: content.Art},
		{ID: "2", Src: "https://img.example/2.jpg", Category: content.Festivals},
		{ID: "3", Src: "https://img.example/3.jpg", Category: content.Art},
	})
	require.NoError(t, err)
	return c
}

func TestGrid_InitialState(t *testing.T) {
	g := NewGrid(testCatalog(t))

	cards := g.Cards()
	require.Len(t, cards, 3)
	for i, c := range cards {
		assert.False(t, c.Loaded)
		assert.Equal(t, []string{"1", "2", "3"}[i], c.Image.ID)
	}
	assert.Equal(t, content.Category(""), g.Filter())
}

func TestGrid_MarkLoadedOnce(t *testing.T) {
	g := NewGrid(testCatalog(t))

	assert.True(t, g.MarkLoaded("2"))
	assert.False(t, g.MarkLoaded("2"))
	assert.False(t, g.MarkLoaded("nope"))

	cards := g.Cards()
	assert.False(t, cards[0].Loaded)
	assert.True(t, cards[1].Loaded)
	assert.False(t, cards[2].Loaded)
}

func TestGrid_Filter(t *testing.T) {
	g := NewGrid(testCatalog(t))
	g.MarkLoaded("3")

	assert.True(t, g.SetFilter(content.Art))
	assert.False(t, g.SetFilter(content.Art))
	assert.False(t, g.SetFilter("food"))

	cards := g.Cards()
	require.Len(t, cards, 3, "filtered cards keep their slot")
	var shown []string
	for _, c := range cards {
		if !c.Hidden {
			shown = append(shown, c.Image.ID)
		}
	}
	assert.Equal(t, []string{"1", "3"}, shown)
	assert.True(t, cards[2].Loaded, "filtering keeps load state")

	assert.True(t, g.SetFilter(""))
	for _, c := range g.Cards() {
		assert.False(t, c.Hidden)
	}
}

func TestGrid_CardsIsACopy(t *testing.T) {
	g := NewGrid(testCatalog(t))
	cards := g.Cards()
	cards[0].Loaded = true
	assert.False(t, g.Cards()[0].Loaded)
}
