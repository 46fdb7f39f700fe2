package pipeline

import "testing"

func TestExtractCategory(t *testing.T) {
	cases := map[string]string{
		"Milk 1L":                 "Dairy",
		"Full Cream Milk 500ml":   "Dairy",
		"Potato Chips Salted 40g": "Snacks",
		"Almarai 1L":              "Almarai",
		"500ml Spiro Spathis":     "Spiro",
		"12 x 330":                UncategorizedLabel,
		"":                        UncategorizedLabel,
	}
	for name, want := range cases {
		t.Run(name, func(t *testing.T) {
			if got := ExtractCategory(name); got != want {
				t.Fatalf("got %q want %q", got, want)
			}
		})
	}
}
