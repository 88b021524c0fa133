package spec

import (
	"strings"
	"testing"
)

func TestExtractSubject(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"draw a red circle", "Red Circle"},
		{"Show me the solar system.", "Solar System"},
		{"visualize an ellipse", "Ellipse"},
		{"create the water cycle", "Water Cycle"},
		{"photosynthesis", "Photosynthesis"},
		{"draw the", ""},
		{"   ", ""},
		{"show anatomy of the heart", "Anatomy Of The Heart"},
	}
	for _, tc := range cases {
		if got := ExtractSubject(tc.in); got != tc.want {
			t.Errorf("ExtractSubject(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestExtractSubjectCapsLength(t *testing.T) {
	got := ExtractSubject("draw " + strings.Repeat("z", 100))
	if len(got) != 64 {
		t.Fatalf("subject length = %d, want 64", len(got))
	}
}

func TestLabelCard(t *testing.T) {
	els := LabelCard("Gravity")
	if len(els) != 2 {
		t.Fatalf("got %d elements, want 2", len(els))
	}
	card, text := els[0], els[1]
	if card.Type != "rect" || *card.Width != 280 || *card.Height != 140 || card.Color != "#e0e7ff" {
		t.Fatalf("unexpected backdrop %+v", card)
	}
	if text.Type != "text" || text.Label != "Gravity" || text.Color != "#111827" {
		t.Fatalf("unexpected label %+v", text)
	}

	if got := LabelCard("")[1].Label; got != "Item" {
		t.Fatalf("empty subject label = %q, want Item", got)
	}
}
