package viewport

import (
	"fmt"
	"testing"
)

func TestDerive(t *testing.T) {
	tests := []struct {
		y    float64
		want Flags
	}{
		{0, Flags{}},
		{50, Flags{}},
		{51, Flags{NavScrolled: true}},
		{300, Flags{NavScrolled: true}},
		{300.5, Flags{NavScrolled: true, ShowBackToTop: true}},
		{5000, Flags{NavScrolled: true, ShowBackToTop: true}},
	}
	for _, tt := range tests {
		if got := Derive(tt.y); got != tt.want {
			t.Errorf("Derive(%v) = %+v, want %+v", tt.y, got, tt.want)
		}
	}
}

func TestTracker(t *testing.T) {
	var tr Tracker

	if tr.Update(10) {
		t.Error("10px changes nothing")
	}
	if !tr.Update(60) {
		t.Error("60px turns the navbar solid")
	}
	if tr.Update(200) {
		t.Error("200px changes nothing after 60px")
	}
	if !tr.Update(400) || !tr.Flags().ShowBackToTop {
		t.Error("400px shows back-to-top")
	}
	if !tr.Update(-20) || tr.Flags() != (Flags{}) {
		t.Errorf("overscroll resets flags, got %+v", tr.Flags())
	}
}

func TestReveal(t *testing.T) {
	r := NewReveal("about", "gallery")

	if r.Observe("gallery", 0.05) {
		t.Error("below threshold")
	}
	if !r.Observe("gallery", 0.1) {
		t.Error("threshold reveals")
	}
	if r.Observe("gallery", 0.9) {
		t.Error("already revealed")
	}
	if r.Observe("gallery", 0) || !r.Visible("gallery") {
		t.Error("reveal never un-latches")
	}
	if r.Observe("", 1) {
		t.Error("empty id ignored")
	}
	if r.Visible("about") {
		t.Error("about was never observed")
	}
	for i := 0; i < 100; i++ {
		if r.Observe(fmt.Sprintf("junk-%d", i), 1) {
			t.Fatal("unknown id revealed")
		}
	}
	if len(r.seen) != 1 {
		t.Errorf("unknown ids are not remembered, seen %d", len(r.seen))
	}
}
