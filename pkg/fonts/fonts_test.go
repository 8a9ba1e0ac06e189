package fonts

import "testing"

func TestNew(t *testing.T) {
	f, err := New()
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer f.Close()

	if f.Header == nil || f.Stamp == nil || f.Body == nil || f.Footer == nil {
		t.Fatal("New() returned nil faces")
	}

	// Body face is monospace: every glyph advances the same.
	wide, ok1 := f.Body.GlyphAdvance('W')
	narrow, ok2 := f.Body.GlyphAdvance('i')
	if !ok1 || !ok2 {
		t.Fatal("body face missing ASCII glyphs")
	}
	if wide != narrow {
		t.Errorf("body face not monospace: W=%v i=%v", wide, narrow)
	}
}

func TestNewReturnsDistinctFaces(t *testing.T) {
	a, err := New()
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()
	b, err := New()
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	if a.Body == b.Body {
		t.Error("New() should not share faces between callers")
	}
}
