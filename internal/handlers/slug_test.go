package handlers

import "testing"

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Festive Snack Box":       "festive-snack-box",
		"  Mega Combo!! 2024  ":   "mega-combo-2024",
		"---":                     "",
		"UPPER lower 42":          "upper-lower-42",
		"multi   space":           "multi-space",
		"trailing punctuation!!!": "trailing-punctuation",
	}

	for input, want := range cases {
		if got := slugify(input); got != want {
			t.Errorf("slugify(%q) = %q, want %q", input, got, want)
		}
	}
}
