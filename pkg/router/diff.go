package router

import (
	"hash/fnv"
	"strings"

	"github.com/gabrielmiguelok/pakheritage/pkg/core"
)

// buildDiffPayload compares the slots of a fresh render against the hashes
// stored for the session and keeps only the slots that changed.
func buildDiffPayload(session *LiveSession, html string) *core.DiffPayload {
	payload := &core.DiffPayload{
		Version:   session.NextVersion(),
		Slots:     make(map[string]string),
		HTMLSlots: make(map[string]string),
	}

	textSlots, htmlSlots := extractSlots(html)
	prevHashes := session.SlotHashes()
	newHashes := make(map[string]uint64, len(textSlots)+len(htmlSlots))

	for id, content := range textSlots {
		h := hashSlotContent(content)
		newHashes[id] = h
		if prev, ok := prevHashes[id]; !ok || prev != h {
			payload.Slots[id] = content
		}
	}
	for id, content := range htmlSlots {
		h := hashSlotContent(content)
		newHashes[id] = h
		if prev, ok := prevHashes[id]; !ok || prev != h {
			payload.HTMLSlots[id] = content
		}
	}

	session.SetSlotHashes(newHashes)

	// Without slots the client can only replace the whole view.
	if len(textSlots) == 0 && len(htmlSlots) == 0 {
		payload.Full = html
	}

	return payload
}

// seedSlotHashes records the slots of the join render so the first event
// only sends what it changed.
func seedSlotHashes(session *LiveSession, html string) {
	textSlots, htmlSlots := extractSlots(html)
	hashes := make(map[string]uint64, len(textSlots)+len(htmlSlots))
	for id, content := range textSlots {
		hashes[id] = hashSlotContent(content)
	}
	for id, content := range htmlSlots {
		hashes[id] = hashSlotContent(content)
	}
	session.SetSlotHashes(hashes)
}

// extractSlots finds every element carrying data-slot="id" and returns its
// inner content, split into plain-text and HTML slots. Nested slots are
// reported both on their own and inside their parent.
func extractSlots(html string) (textSlots, htmlSlots map[string]string) {
	textSlots = make(map[string]string)
	htmlSlots = make(map[string]string)

	const marker = `data-slot="`
	n := len(html)
	pos := 0

	for pos < n {
		idx := strings.Index(html[pos:], marker)
		if idx == -1 {
			break
		}

		idStart := pos + idx + len(marker)
		idLen := strings.IndexByte(html[idStart:], '"')
		if idLen == -1 {
			break
		}
		slotID := html[idStart : idStart+idLen]
		next := idStart + idLen

		tagStart := pos + idx
		for tagStart > 0 && html[tagStart] != '<' {
			tagStart--
		}
		tagEnd := tagStart + 1
		for tagEnd < n && !isTagNameEnd(html[tagEnd]) {
			tagEnd++
		}
		tagName := html[tagStart+1 : tagEnd]

		closeAngle := strings.IndexByte(html[next:], '>')
		if closeAngle == -1 || tagName == "" {
			pos = next
			continue
		}
		contentStart := next + closeAngle + 1

		if end := matchingClose(html, contentStart, tagName); end != -1 {
			content := strings.TrimSpace(html[contentStart:end])
			if strings.ContainsAny(content, "<>") {
				htmlSlots[slotID] = content
			} else {
				textSlots[slotID] = content
			}
		}

		// Continue inside the element so nested slots are found too.
		pos = contentStart
	}

	return textSlots, htmlSlots
}

func isTagNameEnd(c byte) bool {
	return c == ' ' || c == '>' || c == '/' || c == '\t' || c == '\n'
}

// matchingClose returns the index of the close tag matching an element of
// tagName whose content starts at from, or -1.
func matchingClose(html string, from int, tagName string) int {
	openTag := "<" + tagName
	closeTag := "</" + tagName
	n := len(html)

	depth := 1
	pos := from
	for depth > 0 && pos < n {
		nextClose := strings.Index(html[pos:], closeTag)
		if nextClose == -1 {
			return -1
		}
		nextClose += pos

		nextOpen := strings.Index(html[pos:], openTag)
		if nextOpen != -1 {
			nextOpen += pos
		}

		if nextOpen != -1 && nextOpen < nextClose {
			after := nextOpen + len(openTag)
			if after < n && isTagNameEnd(html[after]) {
				depth++
			}
			pos = after
			continue
		}

		depth--
		if depth == 0 {
			return nextClose
		}
		pos = nextClose + len(closeTag)
	}
	return -1
}

func hashSlotContent(content string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(content))
	return h.Sum64()
}
