package grouping

import (
	"errors"
	"testing"
)

func TestToken_Geometry(t *testing.T) {
	tok := Token{Vertices: [4]Vertex{{10, 0}, {50, 4}, {52, 24}, {12, 20}}}

	x, y := tok.Centroid()
	if x != 31 || y != 12 {
		t.Errorf("Centroid() = (%v, %v), want (31, 12)", x, y)
	}

	assertBox(t, tok.Bounds(), Box{Left: 11, Top: 2, Right: 51, Bottom: 22})
	assertBox(t, tok.Extent(), Box{Left: 10, Top: 0, Right: 52, Bottom: 24})
}

func TestToken_BoundsMisorderedVertices(t *testing.T) {
	// Counter-clockwise input would put left past right; the box stays valid.
	tok := Token{Vertices: [4]Vertex{{50, 0}, {10, 0}, {10, 20}, {50, 20}}}
	b := tok.Bounds()
	if b.Left > b.Right || b.Top > b.Bottom {
		t.Errorf("Bounds() = %+v is not normalized", b)
	}
}

func TestArtifactFilter_IsArtifact(t *testing.T) {
	f := ArtifactFilter{MaxDigits: 4, Denylist: []string{"ebrary", "F.Netter"}}

	tests := []struct {
		text string
		want bool
	}{
		{"Heart", false},
		{"1234", false},
		{"12345", true},
		{"a1b2c3d4e5", true},
		{"ebrary", true},
		{"F.", true},
		{"ebrary.com", true},
		{"Netter's", false},
		{"", true},
		{"   ", true},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := f.IsArtifact(tt.text); got != tt.want {
				t.Errorf("IsArtifact(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestArtifactFilter_EmptyDenylistEntryIgnored(t *testing.T) {
	f := ArtifactFilter{MaxDigits: 4, Denylist: []string{""}}
	if f.IsArtifact("word") {
		t.Error("an empty denylist entry must not match every token")
	}
}

func TestNormalize(t *testing.T) {
	annotations := []Annotation{
		rect("whole image text", 0, 0, 200, 100),
		rect("Aorta", 10, 10, 50, 30),
		{Text: "broken", Vertices: []Vertex{{1, 1}, {2, 2}}},
		rect("ebrary", 60, 10, 90, 30),
		rect("Vena", 100, 10, 140, 30),
		rect("0123456789", 150, 10, 190, 30),
	}

	res := Normalize(annotations, ArtifactFilter{MaxDigits: 4, Denylist: []string{"ebrary"}}, true)

	if len(res.Tokens) != 2 {
		t.Fatalf("got %d tokens, want 2", len(res.Tokens))
	}
	for i, want := range []string{"Aorta", "Vena"} {
		if res.Tokens[i].Text != want || res.Tokens[i].ID != i {
			t.Errorf("token %d = {ID:%d Text:%q}, want {ID:%d Text:%q}", i, res.Tokens[i].ID, res.Tokens[i].Text, i, want)
		}
	}

	if len(res.Rejected) != 1 {
		t.Fatalf("got %d rejected, want 1", len(res.Rejected))
	}
	rej := res.Rejected[0]
	if rej.Index != 2 || rej.Text != "broken" {
		t.Errorf("rejected = %+v, want index 2 text broken", rej)
	}
	var verr *ValidationError
	if !errors.As(error(&rej), &verr) {
		t.Error("ValidationError should satisfy error")
	}

	if len(res.Filtered) != 2 {
		t.Errorf("filtered = %v, want 2 entries", res.Filtered)
	}
}

func TestNormalize_Empty(t *testing.T) {
	if res := Normalize(nil, ArtifactFilter{}, true); len(res.Tokens) != 0 {
		t.Errorf("got %d tokens from nil input", len(res.Tokens))
	}

	onlyHeader := []Annotation{rect("all", 0, 0, 10, 10)}
	if res := Normalize(onlyHeader, ArtifactFilter{}, true); len(res.Tokens) != 0 {
		t.Errorf("got %d tokens from header-only input", len(res.Tokens))
	}
}

func TestNormalize_KeepHeader(t *testing.T) {
	res := Normalize([]Annotation{rect("only", 0, 0, 10, 10)}, ArtifactFilter{MaxDigits: 4}, false)
	if len(res.Tokens) != 1 {
		t.Errorf("got %d tokens, want 1", len(res.Tokens))
	}
}
