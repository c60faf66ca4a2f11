package rustsrc

import (
	"errors"
	"testing"
)

func lexKinds(t *testing.T, src string) []Token {
	t.Helper()
	toks, err := Lex([]byte(src))
	if err != nil {
		t.Fatalf("Lex(%q) failed: %v", src, err)
	}
	return toks.List
}

func TestLex_TokenKinds(t *testing.T) {
	tests := []struct {
		name string
		src  string
		kind TokenKind
		lit  LitKind
		text string
	}{
		{name: "identifier", src: "foo_bar1", kind: Ident, text: "foo_bar1"},
		{name: "raw identifier", src: "r#type", kind: Ident, text: "r#type"},
		{name: "lifetime", src: "'static", kind: Lifetime, text: "'static"},
		{name: "char", src: "'a'", kind: Literal, lit: LitChar, text: "'a'"},
		{name: "escaped quote char", src: `'\''`, kind: Literal, lit: LitChar, text: `'\''`},
		{name: "unicode escape char", src: `'\u{1F600}'`, kind: Literal, lit: LitChar, text: `'\u{1F600}'`},
		{name: "byte", src: "b'x'", kind: Literal, lit: LitByte, text: "b'x'"},
		{name: "string with brace", src: `"a { b"`, kind: Literal, lit: LitStr, text: `"a { b"`},
		{name: "escaped quote string", src: `"a \" }"`, kind: Literal, lit: LitStr, text: `"a \" }"`},
		{name: "raw string", src: `r#"a "quoted" }"#`, kind: Literal, lit: LitRawStr, text: `r#"a "quoted" }"#`},
		{name: "byte string", src: `b"{"`, kind: Literal, lit: LitByteStr, text: `b"{"`},
		{name: "raw byte string", src: `br"{"`, kind: Literal, lit: LitRawByteStr, text: `br"{"`},
		{name: "c string", src: `c"x"`, kind: Literal, lit: LitCStr, text: `c"x"`},
		{name: "integer with suffix", src: "0xffu8", kind: Literal, lit: LitInt, text: "0xffu8"},
		{name: "float with exponent", src: "1.5e-3", kind: Literal, lit: LitFloat, text: "1.5e-3"},
		{name: "outer doc line", src: "/// docs", kind: OuterDoc, text: "/// docs"},
		{name: "outer doc block", src: "/** docs */", kind: OuterDoc, text: "/** docs */"},
		{name: "inner doc line", src: "//! crate docs", kind: InnerDoc, text: "//! crate docs"},
		{name: "open brace", src: "{}", kind: OpenDelim, text: "{"},
		{name: "punct", src: "#", kind: Punct, text: "#"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks := lexKinds(t, tt.src)
			if len(toks) == 0 {
				t.Fatalf("expected tokens for %q", tt.src)
			}
			got := toks[0]
			if got.Kind != tt.kind {
				t.Errorf("kind = %v, want %v", got.Kind, tt.kind)
			}
			if got.Lit != tt.lit {
				t.Errorf("lit = %v, want %v", got.Lit, tt.lit)
			}
			if got.Text != tt.text {
				t.Errorf("text = %q, want %q", got.Text, tt.text)
			}
		})
	}
}

func TestLex_DropsOrdinaryComments(t *testing.T) {
	src := "// plain\n/* block /* nested */ still */ //// not doc\n/**/ /*** not doc */ fn"
	toks := lexKinds(t, src)
	if len(toks) != 1 || toks[0].Text != "fn" {
		t.Fatalf("expected only `fn`, got %+v", toks)
	}
}

func TestLex_RangeNumberIsNotFloat(t *testing.T) {
	toks := lexKinds(t, "0..10")
	if len(toks) != 4 {
		t.Fatalf("expected 4 tokens, got %d: %+v", len(toks), toks)
	}
	if toks[0].Lit != LitInt || toks[3].Lit != LitInt {
		t.Errorf("expected integer literals around `..`, got %+v", toks)
	}
}

func TestLex_Shebang(t *testing.T) {
	toks := lexKinds(t, "#!/usr/bin/env run-cargo-script\nfn main() {}")
	if toks[0].Text != "fn" {
		t.Errorf("shebang line not skipped: first token %q", toks[0].Text)
	}

	toks = lexKinds(t, "#![allow(dead_code)]")
	if toks[0].Text != "#" || toks[1].Text != "!" {
		t.Errorf("inner attribute mistaken for shebang: %+v", toks[:2])
	}
}

func TestLex_MatchesDelimiters(t *testing.T) {
	toks, err := Lex([]byte("fn f() { let x = [1, (2)]; }"))
	if err != nil {
		t.Fatalf("Lex failed: %v", err)
	}
	for i, tok := range toks.List {
		if tok.Kind != OpenDelim {
			if tok.Kind != CloseDelim && toks.Match(i) != -1 {
				t.Errorf("token %q should not have a match", tok.Text)
			}
			continue
		}
		j := toks.Match(i)
		if j <= i || toks.Match(j) != i {
			t.Errorf("bad match for %q at %d: %d", tok.Text, i, j)
		}
	}
}

func TestLex_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		line int
		col  int
	}{
		{name: "unterminated string", src: "const A: &str = \"abc;", line: 1, col: 17},
		{name: "unterminated block comment", src: "fn a() {}\n/* open", line: 2, col: 1},
		{name: "unterminated raw string", src: `r#"abc"`, line: 1, col: 1},
		{name: "unclosed delimiter", src: "fn a() {\n", line: 1, col: 8},
		{name: "mismatched delimiter", src: "fn a() { ]", line: 1, col: 10},
		{name: "stray closing delimiter", src: "}", line: 1, col: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Lex([]byte(tt.src))
			var synErr *SyntaxError
			if !errors.As(err, &synErr) {
				t.Fatalf("expected SyntaxError, got %v", err)
			}
			if synErr.Line != tt.line || synErr.Col != tt.col {
				t.Errorf("position = %d:%d, want %d:%d (%v)", synErr.Line, synErr.Col, tt.line, tt.col, synErr)
			}
		})
	}
}
