package sanitize

import "testing"

func TestLineStripsMarkupAndCollapsesWhitespace(t *testing.T) {
	got := Line("  Jane   <b>Doe</b>\n ")
	if got != "Jane Doe" {
		t.Fatalf("expected %q, got %q", "Jane Doe", got)
	}
}

func TestStripHTMLCatchesEncodedTags(t *testing.T) {
	got := StripHTML("&lt;script&gt;alert(1)&lt;/script&gt;hello")
	if got != "alert(1)hello" {
		t.Fatalf("unexpected result %q", got)
	}
}

func TestTruncateCountsRunes(t *testing.T) {
	got := Truncate("دبي دبي", 3)
	if got != "دبي" {
		t.Fatalf("unexpected result %q", got)
	}
}

func TestOptionalLineBlankIsNil(t *testing.T) {
	if OptionalLine("   ") != nil {
		t.Fatal("expected nil for blank input")
	}
	if v := OptionalLine(" Dubai "); v == nil || *v != "Dubai" {
		t.Fatalf("unexpected value %v", v)
	}
}
