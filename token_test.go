package shaped

import "testing"

func kinds(toks []token) []tokenKind {
	out := make([]tokenKind, len(toks))
	for i, t := range toks {
		out[i] = t.kind
	}
	return out
}

func TestTokenizeFullGrammar(t *testing.T) {
	src := `(name:string[3,20], age?:int(0,150)=30, v:int|float, tags:array<string>)`
	toks, err := tokenize(src)
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	want := []tokenKind{
		tokLParen,
		tokIdent, tokColon, tokIdent, tokLBracket, tokInt, tokComma, tokInt, tokRBracket, tokComma,
		tokIdent, tokQuestion, tokColon, tokIdent, tokLParen, tokInt, tokComma, tokInt, tokRParen, tokEqual, tokInt, tokComma,
		tokIdent, tokColon, tokIdent, tokPipe, tokIdent, tokComma,
		tokIdent, tokColon, tokIdent, tokLAngle, tokIdent, tokRAngle,
		tokRParen, tokEOF,
	}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("token count: got %d want %d (%v)", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: got %s want %s", i, got[i], want[i])
		}
	}
}

func TestTokenizeOffsets(t *testing.T) {
	toks, err := tokenize(`(a:int)`)
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	wantOff := []int{0, 1, 2, 3, 6, 7}
	for i, off := range wantOff {
		if toks[i].off != off {
			t.Fatalf("token %d (%s): offset got %d want %d", i, toks[i].kind, toks[i].off, off)
		}
	}
}

func TestTokenizeNumbers(t *testing.T) {
	cases := []struct {
		src  string
		kind tokenKind
	}{
		{"10", tokInt},
		{"-30", tokInt},
		{"+15", tokInt},
		{"3.14", tokFloat},
		{"-0.5", tokFloat},
		{"1.496e11", tokFloat},
		{"2E-3", tokFloat},
		{"+1.5e+3", tokFloat},
	}
	for _, c := range cases {
		toks, err := tokenize(c.src)
		if err != nil {
			t.Fatalf("%q: tokenize: %v", c.src, err)
		}
		if toks[0].kind != c.kind {
			t.Fatalf("%q: kind got %s want %s", c.src, toks[0].kind, c.kind)
		}
		if toks[0].text != c.src {
			t.Fatalf("%q: text got %q", c.src, toks[0].text)
		}
	}
}

func TestTokenizeStringEscapes(t *testing.T) {
	toks, err := tokenize(`"a\nb\t\"q\"\\z\d"`)
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	if toks[0].kind != tokString {
		t.Fatalf("kind got %s", toks[0].kind)
	}
	// unknown escape \d keeps the character
	want := "a\nb\t\"q\"\\zd"
	if toks[0].text != want {
		t.Fatalf("text got %q want %q", toks[0].text, want)
	}
}

func TestTokenizeErrors(t *testing.T) {
	cases := []struct {
		src  string
		kind string
	}{
		{"@", KindUnexpectedChar},
		{`(a:string="abc`, KindUnterminatedString},
		{"1.2.3", KindInvalidNumber},
		{"1e", KindInvalidNumber},
		{"--5", KindInvalidNumber},
	}
	for _, c := range cases {
		_, err := tokenize(c.src)
		if err == nil {
			t.Fatalf("%q: expected error", c.src)
		}
		if err.Stage != StageLex {
			t.Fatalf("%q: stage got %s", c.src, err.Stage)
		}
		if err.Kind != c.kind {
			t.Fatalf("%q: kind got %s want %s", c.src, err.Kind, c.kind)
		}
	}
}
