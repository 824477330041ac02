package naming

import "testing"

func TestTitleCase(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"john smith", "John Smith"},
		{"JOHN SMITH", "John Smith"},
		{"  jOhN   sMiTh  ", "John Smith"},
		{"o'brien", "O'Brien"},
		{"O'BRIEN", "O'Brien"},
		{"anne-marie", "Anne-Marie"},
		{"", ""},
		{"x", "X"},
		{"hair & beauty", "Hair & Beauty"},
	}
	for _, c := range cases {
		if got := TitleCase(c.in); got != c.want {
			t.Errorf("TitleCase(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Glow Salon", "glow-salon"},
		{"Glow   Salon", "glow-salon"},
		{"  Glow Salon  ", "glow-salon"},
		{"Glow & Co.", "glow-co"},
		{"Déjà Vu", "deja-vu"},
		{"Crème Brûlée", "creme-brulee"},
		{"already-a-slug", "already-a-slug"},
		{"Under_scored", "under-scored"},
		{"---", ""},
		{"", ""},
	}
	for _, c := range cases {
		if got := Slugify(c.in); got != c.want {
			t.Errorf("Slugify(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestSlugifyDeterministic(t *testing.T) {
	name := "Unify Hair Studio"
	first := Slugify(name)
	for i := 0; i < 3; i++ {
		if got := Slugify(name); got != first {
			t.Fatalf("slug changed between calls: %q vs %q", first, got)
		}
	}
}
