package textnorm

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Quel est le rôle du foie ?", "quel est le role du foie"},
		{"  L'HÉMOGLOBINE,   transporte-t-elle l'O2?", "l hemoglobine transporte t elle l o2"},
		{"déjà vu", "deja vu"},
		{"", ""},
		{"???", ""},
		{"a  b\t c", "a b c"},
	}
	for _, c := range cases {
		if got := Normalize(c.in); got != c.want {
			t.Errorf("Normalize(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestTokenize(t *testing.T) {
	toks := Tokenize("Le foie, le FOIE!")
	want := []string{"le", "foie", "le", "foie"}
	if len(toks) != len(want) {
		t.Fatalf("got %v, want %v", toks, want)
	}
	for i := range want {
		if toks[i] != want[i] {
			t.Fatalf("got %v, want %v", toks, want)
		}
	}
	if Tokenize("  !! ") != nil {
		t.Fatalf("expected nil tokens for punctuation-only input")
	}
}

func TestJaccard(t *testing.T) {
	a := TokenSet("le role du foie")
	b := TokenSet("le foie et le rein")
	// intersection {le, foie} = 2, union {le, role, du, foie, et, rein} = 6
	if got := Jaccard(a, b); got != 2.0/6.0 {
		t.Fatalf("Jaccard = %v, want %v", got, 2.0/6.0)
	}
	if Jaccard(nil, b) != 0 {
		t.Fatalf("empty set must yield 0")
	}
	if Jaccard(a, a) != 1 {
		t.Fatalf("identical sets must yield 1")
	}
}
