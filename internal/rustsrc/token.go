package rustsrc

import "fmt"

// Span is a half-open byte range into a file's original text.
type Span struct {
	Start uint32 // inclusive
	End   uint32 // exclusive
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() uint32 {
	return s.End - s.Start
}

func (s Span) String() string {
	return fmt.Sprintf("%d-%d", s.Start, s.End)
}

// Text returns the bytes of src covered by the span.
func (s Span) Text(src []byte) string {
	return string(src[s.Start:s.End])
}

// TokenKind classifies a token.
type TokenKind uint8

const (
	EOF TokenKind = iota
	Ident
	Lifetime
	Literal
	Punct
	OpenDelim
	CloseDelim
	// OuterDoc is a `///` or `/** */` comment; it belongs to the following item.
	OuterDoc
	// InnerDoc is a `//!` or `/*! */` comment; it belongs to the enclosing module.
	InnerDoc
)

var tokenKindNames = [...]string{
	EOF:        "eof",
	Ident:      "identifier",
	Lifetime:   "lifetime",
	Literal:    "literal",
	Punct:      "punctuation",
	OpenDelim:  "open delimiter",
	CloseDelim: "close delimiter",
	OuterDoc:   "doc comment",
	InnerDoc:   "inner doc comment",
}

func (k TokenKind) String() string {
	if int(k) < len(tokenKindNames) {
		return tokenKindNames[k]
	}
	return fmt.Sprintf("TokenKind(%d)", k)
}

// LitKind refines Literal tokens.
type LitKind uint8

const (
	LitNone LitKind = iota
	LitInt
	LitFloat
	LitChar
	LitByte
	LitStr
	LitRawStr
	LitByteStr
	LitRawByteStr
	LitCStr
	LitRawCStr
)

// IsString reports whether the literal is a plain or raw string literal.
func (k LitKind) IsString() bool {
	return k == LitStr || k == LitRawStr
}

// Token is a single significant token. Whitespace and ordinary comments are
// dropped by the lexer; doc comments are kept because they are part of an
// item's extent.
type Token struct {
	Kind TokenKind
	Lit  LitKind
	Span Span
	Text string
}

// Is reports whether the token is an identifier or punctuation with the given text.
func (t Token) Is(text string) bool {
	return (t.Kind == Ident || t.Kind == Punct) && t.Text == text
}

// IsIdent reports whether the token is the identifier name (raw or not).
func (t Token) IsIdent(name string) bool {
	return t.Kind == Ident && Unraw(t.Text) == name
}

// IsOpen reports whether the token opens a group with the given delimiter byte.
func (t Token) IsOpen(delim byte) bool {
	return t.Kind == OpenDelim && t.Text[0] == delim
}

// Unraw strips the `r#` prefix from a raw identifier.
func Unraw(ident string) string {
	if len(ident) > 2 && ident[0] == 'r' && ident[1] == '#' {
		return ident[2:]
	}
	return ident
}
