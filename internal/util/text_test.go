package util

import "testing"

func TestFoldKey(t *testing.T) {
	if FoldKey("  Branch_NAME ") != FoldKey("branch_name") {
		t.Fatalf("fold mismatch")
	}
	if FoldKey("Down   Town") != "down town" {
		t.Fatalf("got %q", FoldKey("Down   Town"))
	}
}

func TestSafeFileName(t *testing.T) {
	cases := map[string]string{
		"Downtown":        "Downtown",
		"Nasr City":       "Nasr_City",
		"Mall/Of:Egypt":   "MallOfEgypt",
		"   ":             "branch",
		"Heliopolis  (2)": "Heliopolis_(2)",
	}
	for in, want := range cases {
		if got := SafeFileName(in, "branch"); got != want {
			t.Fatalf("SafeFileName(%q)=%q want %q", in, got, want)
		}
	}
}

func TestSheetName(t *testing.T) {
	if got := SheetName("Dairy [Fresh]/Cold", "Brand"); got != "Dairy _Fresh_Cold" {
		t.Fatalf("got %q", got)
	}
	long := "A very long brand name that exceeds the limit"
	if got := SheetName(long, "Brand"); len([]rune(got)) != MaxSheetNameLen {
		t.Fatalf("len=%d", len([]rune(got)))
	}
	if got := SheetName("''", "Brand"); got != "Brand" {
		t.Fatalf("got %q", got)
	}
}
