package rustsrc

import (
	"unicode"
	"unicode/utf8"
)

// Tokens is the lexed form of one source file.
type Tokens struct {
	Src  []byte
	List []Token
	// match maps the index of every delimiter token to the index of its
	// partner; -1 for all other tokens.
	match []int
}

// Match returns the index of the delimiter paired with the delimiter at i,
// or -1 if the token at i is not a delimiter.
func (t *Tokens) Match(i int) int {
	return t.match[i]
}

// ItemEnd scans an item header in [i, hi) and returns the index of its body
// `{` or of its terminating `;`, or -1 if there is neither. Groups are
// skipped, and a `{` inside generic arguments (`Foo<{ N }>`) is a const
// argument, not the body.
func (t *Tokens) ItemEnd(i, hi int) int {
	angle := 0
	for j := i; j < hi; j++ {
		tok := t.List[j]
		switch {
		case tok.Kind == OpenDelim:
			if tok.Text[0] == '{' && angle == 0 {
				return j
			}
			j = t.match[j]
		case tok.Is("<"):
			angle++
		case tok.Is(">"):
			// the `>` of `->`
			if j > i && t.List[j-1].Is("-") && t.List[j-1].Span.End == tok.Span.Start {
				continue
			}
			angle = max(angle-1, 0)
		case tok.Is(";"):
			return j
		}
	}
	return -1
}

// Len returns the number of tokens.
func (t *Tokens) Len() int {
	return len(t.List)
}

// Lex tokenizes src and checks that delimiters are balanced.
func Lex(src []byte) (*Tokens, error) {
	cur, err := newCursor(src)
	if err != nil {
		return nil, err
	}
	lx := &lexer{cur: cur, src: src}
	lx.skipShebang()

	var toks []Token
	for {
		tok, ok, err := lx.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		toks = append(toks, tok)
	}

	match, err := balance(src, toks)
	if err != nil {
		return nil, err
	}
	return &Tokens{Src: src, List: toks, match: match}, nil
}

type lexer struct {
	cur cursor
	src []byte
}

func (lx *lexer) errorf(off uint32, format string, args ...any) error {
	return newSyntaxError(lx.src, off, format, args...)
}

// skipShebang drops a leading `#!...` line unless it starts an inner attribute.
func (lx *lexer) skipShebang() {
	if !lx.cur.hasPrefix("#!") {
		return
	}
	i := 2
	for i < len(lx.src) && (lx.src[i] == ' ' || lx.src[i] == '\t') {
		i++
	}
	if i < len(lx.src) && lx.src[i] == '[' {
		return
	}
	for !lx.cur.eof() && lx.cur.peek() != '\n' {
		lx.cur.bump()
	}
}

// next returns the next significant token. ok is false at EOF.
func (lx *lexer) next() (tok Token, ok bool, err error) {
	for {
		if err := lx.skipWhitespace(); err != nil {
			return Token{}, false, err
		}
		if lx.cur.eof() {
			return Token{}, false, nil
		}
		if lx.cur.peek() == '/' && (lx.cur.peekAt(1) == '/' || lx.cur.peekAt(1) == '*') {
			tok, isDoc, err := lx.scanComment()
			if err != nil {
				return Token{}, false, err
			}
			if isDoc {
				return tok, true, nil
			}
			continue
		}
		break
	}

	start := lx.cur.off
	ch := lx.cur.peek()
	switch {
	case isIdentStart(lx.cur.src[lx.cur.off:]):
		tok, err = lx.scanWordOrPrefixed()
	case ch >= '0' && ch <= '9':
		tok = lx.scanNumber()
	case ch == '\'':
		tok, err = lx.scanQuote(start, LitChar)
	case ch == '"':
		lx.cur.bump()
		err = lx.scanStringBody(start)
		tok = lx.literal(start, LitStr)
	case ch == '(' || ch == '[' || ch == '{':
		lx.cur.bump()
		tok = lx.token(start, OpenDelim)
	case ch == ')' || ch == ']' || ch == '}':
		lx.cur.bump()
		tok = lx.token(start, CloseDelim)
	case ch < utf8.RuneSelf && isPunctByte(ch):
		lx.cur.bump()
		tok = lx.token(start, Punct)
	default:
		r, _ := utf8.DecodeRune(lx.cur.src[lx.cur.off:])
		return Token{}, false, lx.errorf(start, "unexpected character %q", r)
	}
	if err != nil {
		return Token{}, false, err
	}
	return tok, true, nil
}

func (lx *lexer) token(start uint32, kind TokenKind) Token {
	sp := lx.cur.spanFrom(start)
	return Token{Kind: kind, Span: sp, Text: sp.Text(lx.src)}
}

func (lx *lexer) literal(start uint32, lit LitKind) Token {
	tok := lx.token(start, Literal)
	tok.Lit = lit
	return tok
}

func (lx *lexer) skipWhitespace() error {
	for !lx.cur.eof() {
		ch := lx.cur.peek()
		switch ch {
		case ' ', '\t', '\n', '\r', '\v', '\f':
			lx.cur.bump()
			continue
		}
		if ch >= utf8.RuneSelf {
			r, size := utf8.DecodeRune(lx.cur.src[lx.cur.off:])
			if unicode.IsSpace(r) {
				lx.cur.advance(uint32(size))
				continue
			}
		}
		return nil
	}
	return nil
}

// scanComment consumes a line or block comment. Doc comments are returned as
// tokens; ordinary comments are dropped.
func (lx *lexer) scanComment() (Token, bool, error) {
	start := lx.cur.off
	if lx.cur.hasPrefix("//") {
		kind := EOF
		switch {
		case lx.cur.hasPrefix("///") && !lx.cur.hasPrefix("////"):
			kind = OuterDoc
		case lx.cur.hasPrefix("//!"):
			kind = InnerDoc
		}
		for !lx.cur.eof() && lx.cur.peek() != '\n' {
			lx.cur.bump()
		}
		if kind == EOF {
			return Token{}, false, nil
		}
		return lx.token(start, kind), true, nil
	}

	kind := EOF
	switch {
	case lx.cur.hasPrefix("/**") && !lx.cur.hasPrefix("/**/") && !lx.cur.hasPrefix("/***"):
		kind = OuterDoc
	case lx.cur.hasPrefix("/*!"):
		kind = InnerDoc
	}
	lx.cur.advance(2)
	depth := 1
	for depth > 0 {
		if lx.cur.eof() {
			return Token{}, false, lx.errorf(start, "unterminated block comment")
		}
		switch {
		case lx.cur.hasPrefix("/*"):
			lx.cur.advance(2)
			depth++
		case lx.cur.hasPrefix("*/"):
			lx.cur.advance(2)
			depth--
		default:
			lx.cur.bump()
		}
	}
	if kind == EOF {
		return Token{}, false, nil
	}
	return lx.token(start, kind), true, nil
}

// scanWordOrPrefixed scans an identifier, keyword, raw identifier, or a
// literal introduced by an identifier-like prefix (b"", r#""#, c"", b'').
func (lx *lexer) scanWordOrPrefixed() (Token, error) {
	start := lx.cur.off
	word := lx.scanIdentChars()
	next := lx.cur.peek()

	switch word {
	case "r", "br", "cr":
		if next == '"' || (next == '#' && (lx.cur.peekAt(1) == '"' || lx.cur.peekAt(1) == '#')) {
			lit := map[string]LitKind{"r": LitRawStr, "br": LitRawByteStr, "cr": LitRawCStr}[word]
			if err := lx.scanRawStringBody(start); err != nil {
				return Token{}, err
			}
			return lx.literal(start, lit), nil
		}
		if word == "r" && next == '#' && isIdentStart(lx.cur.src[lx.cur.off+1:]) {
			lx.cur.bump()
			lx.scanIdentChars()
			return lx.token(start, Ident), nil
		}
	case "b", "c":
		if next == '"' {
			lx.cur.bump()
			if err := lx.scanStringBody(start); err != nil {
				return Token{}, err
			}
			if word == "b" {
				return lx.literal(start, LitByteStr), nil
			}
			return lx.literal(start, LitCStr), nil
		}
		if word == "b" && next == '\'' {
			return lx.scanQuote(start, LitByte)
		}
	}
	return lx.token(start, Ident), nil
}

func (lx *lexer) scanIdentChars() string {
	start := lx.cur.off
	for !lx.cur.eof() {
		ch := lx.cur.peek()
		if ch < utf8.RuneSelf {
			if !isIdentContinueByte(ch) {
				break
			}
			lx.cur.bump()
			continue
		}
		r, size := utf8.DecodeRune(lx.cur.src[lx.cur.off:])
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.Is(unicode.Mn, r) {
			break
		}
		lx.cur.advance(uint32(size))
	}
	return string(lx.src[start:lx.cur.off])
}

func (lx *lexer) scanNumber() Token {
	start := lx.cur.off
	hex := lx.cur.hasPrefix("0x") || lx.cur.hasPrefix("0X")
	lit := LitInt
	lx.scanDigits(hex)
	if lx.cur.peek() == '.' && isDigit(lx.cur.peekAt(1)) {
		lit = LitFloat
		lx.cur.bump()
		lx.scanDigits(hex)
	}
	return lx.literal(start, lit)
}

func (lx *lexer) scanDigits(hex bool) {
	for !lx.cur.eof() {
		ch := lx.cur.peek()
		if !isIdentContinueByte(ch) {
			return
		}
		lx.cur.bump()
		if !hex && (ch == 'e' || ch == 'E') {
			if n := lx.cur.peek(); (n == '+' || n == '-') && isDigit(lx.cur.peekAt(1)) {
				lx.cur.bump()
			}
		}
	}
}

// scanQuote scans a character literal, byte literal, or lifetime. start
// points at the prefix (if any); the cursor points at the opening quote.
func (lx *lexer) scanQuote(start uint32, lit LitKind) (Token, error) {
	lx.cur.bump() // '
	if lx.cur.peek() == '\\' {
		for {
			if lx.cur.eof() || lx.cur.peek() == '\n' {
				return Token{}, lx.errorf(start, "unterminated character literal")
			}
			ch := lx.cur.bump()
			if ch == '\\' {
				lx.cur.bump()
				continue
			}
			if ch == '\'' {
				return lx.literal(start, lit), nil
			}
		}
	}
	if lx.cur.eof() {
		return Token{}, lx.errorf(start, "unterminated character literal")
	}
	r, size := utf8.DecodeRune(lx.cur.src[lx.cur.off:])
	if lx.cur.peekAt(uint32(size)) == '\'' {
		lx.cur.advance(uint32(size) + 1)
		return lx.literal(start, lit), nil
	}
	if lit == LitChar && (r == '_' || unicode.IsLetter(r)) {
		lx.scanIdentChars()
		return lx.token(start, Lifetime), nil
	}
	return Token{}, lx.errorf(start, "invalid character literal")
}

// scanStringBody consumes a quoted body; the opening quote is already consumed.
func (lx *lexer) scanStringBody(start uint32) error {
	for {
		if lx.cur.eof() {
			return lx.errorf(start, "unterminated string literal")
		}
		switch lx.cur.bump() {
		case '\\':
			lx.cur.bump()
		case '"':
			return nil
		}
	}
}

// scanRawStringBody consumes `#*"..."#*`; the cursor points after the prefix.
func (lx *lexer) scanRawStringBody(start uint32) error {
	hashes := 0
	for lx.cur.eat('#') {
		hashes++
	}
	if !lx.cur.eat('"') {
		return lx.errorf(start, "expected `\"` in raw string literal")
	}
	for {
		if lx.cur.eof() {
			return lx.errorf(start, "unterminated raw string literal")
		}
		if lx.cur.bump() != '"' {
			continue
		}
		n := 0
		for n < hashes && lx.cur.peek() == '#' {
			lx.cur.bump()
			n++
		}
		if n == hashes {
			return nil
		}
	}
}

// balance pairs every open delimiter with its closing partner.
func balance(src []byte, toks []Token) ([]int, error) {
	match := make([]int, len(toks))
	var stack []int
	for i, tok := range toks {
		match[i] = -1
		switch tok.Kind {
		case OpenDelim:
			stack = append(stack, i)
		case CloseDelim:
			if len(stack) == 0 {
				return nil, newSyntaxError(src, tok.Span.Start, "unexpected closing delimiter `%s`", tok.Text)
			}
			open := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if closerFor(toks[open].Text[0]) != tok.Text[0] {
				return nil, newSyntaxError(src, tok.Span.Start,
					"mismatched closing delimiter `%s` for `%s` at offset %d", tok.Text, toks[open].Text, toks[open].Span.Start)
			}
			match[open] = i
			match[i] = open
		}
	}
	if len(stack) > 0 {
		open := toks[stack[len(stack)-1]]
		return nil, newSyntaxError(src, open.Span.Start, "unclosed delimiter `%s`", open.Text)
	}
	return match, nil
}

func closerFor(open byte) byte {
	switch open {
	case '(':
		return ')'
	case '[':
		return ']'
	default:
		return '}'
	}
}

func isIdentStart(rest []byte) bool {
	if len(rest) == 0 {
		return false
	}
	ch := rest[0]
	if ch < utf8.RuneSelf {
		return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
	}
	r, _ := utf8.DecodeRune(rest)
	return unicode.IsLetter(r)
}

func isIdentContinueByte(ch byte) bool {
	return ch == '_' || isDigit(ch) || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isPunctByte(ch byte) bool {
	switch ch {
	case '!', '#', '$', '%', '&', '*', '+', ',', '-', '.', '/', ':', ';', '<', '=', '>', '?', '@', '^', '|', '~':
		return true
	}
	return false
}
