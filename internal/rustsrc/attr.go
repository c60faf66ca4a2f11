package rustsrc

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Errors returned by PathAttr for a malformed `#[path]` attribute.
var (
	ErrPathAttrNoValue    = errors.New("expected `path` attribute to have a value")
	ErrPathAttrNotLiteral = errors.New("expected `path` attribute value to be a literal")
	ErrPathAttrNotString  = errors.New("expected `path` attribute value to be a string literal")
)

// Path returns the leading attribute path when it is a single identifier
// (`#[path = ...]` yields "path", `#[a::b]` yields ""), and the index of the
// first token after it.
func (a Attr) Path() (string, int) {
	if len(a.Tokens) == 0 || a.Tokens[0].Kind != Ident {
		return "", 0
	}
	if len(a.Tokens) > 1 && a.Tokens[1].Is(":") {
		return "", 0
	}
	return Unraw(a.Tokens[0].Text), 1
}

// PathAttr returns the value of the item's `#[path = "..."]` attribute.
func PathAttr(it *Item) (string, bool, error) {
	for _, attr := range it.Attrs {
		name, rest := attr.Path()
		if name != "path" {
			continue
		}
		toks := attr.Tokens[rest:]
		if len(toks) == 0 || !toks[0].Is("=") {
			return "", false, ErrPathAttrNoValue
		}
		value := toks[1:]
		if len(value) != 1 || value[0].Kind != Literal {
			return "", false, ErrPathAttrNotLiteral
		}
		if !value[0].Lit.IsString() {
			return "", false, ErrPathAttrNotString
		}
		s, err := StringValue(value[0])
		if err != nil {
			return "", false, err
		}
		return s, true, nil
	}
	return "", false, nil
}

// IsLinkExport reports whether the attribute exports its item to other
// compilation units: `#[no_mangle]`, `#[export_name = "..."]`, or either of
// them wrapped in `#[unsafe(...)]`.
func IsLinkExport(attr Attr) bool {
	return isLinkExportTokens(attr.Tokens)
}

func isLinkExportTokens(toks []Token) bool {
	a := Attr{Tokens: toks}
	name, rest := a.Path()
	switch name {
	case "no_mangle", "export_name":
		return true
	case "unsafe":
		if rest < len(toks) && toks[rest].IsOpen('(') {
			return isLinkExportTokens(toks[rest+1 : len(toks)-1])
		}
	}
	return false
}

// StringValue decodes a string or raw string literal token.
func StringValue(tok Token) (string, error) {
	text := tok.Text
	switch tok.Lit {
	case LitRawStr:
		body := strings.TrimPrefix(text, "r")
		hashes := len(body) - len(strings.TrimLeft(body, "#"))
		return body[hashes+1 : len(body)-hashes-1], nil
	case LitStr:
		return unescape(text[1 : len(text)-1])
	}
	return "", fmt.Errorf("not a string literal: %s", text)
}

func unescape(s string) (string, error) {
	if !strings.Contains(s, `\`) {
		return strings.ReplaceAll(s, "\r\n", "\n"), nil
	}
	var b strings.Builder
	for i := 0; i < len(s); {
		ch := s[i]
		if ch != '\\' {
			b.WriteByte(ch)
			i++
			continue
		}
		if i+1 >= len(s) {
			return "", fmt.Errorf("dangling escape in %q", s)
		}
		esc := s[i+1]
		i += 2
		switch esc {
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case '0':
			b.WriteByte(0)
		case '\\', '\'', '"':
			b.WriteByte(esc)
		case 'x':
			if i+2 > len(s) {
				return "", fmt.Errorf("short \\x escape in %q", s)
			}
			v, err := strconv.ParseUint(s[i:i+2], 16, 8)
			if err != nil || v > 0x7f {
				return "", fmt.Errorf("invalid \\x escape in %q", s)
			}
			b.WriteByte(byte(v))
			i += 2
		case 'u':
			end := strings.IndexByte(s[i:], '}')
			if !strings.HasPrefix(s[i:], "{") || end < 0 {
				return "", fmt.Errorf("invalid \\u escape in %q", s)
			}
			digits := strings.ReplaceAll(s[i+1:i+end], "_", "")
			v, err := strconv.ParseUint(digits, 16, 32)
			if err != nil || !utf8.ValidRune(rune(v)) {
				return "", fmt.Errorf("invalid \\u escape in %q", s)
			}
			b.WriteRune(rune(v))
			i += end + 1
		case '\n', '\r':
			for i < len(s) && strings.IndexByte(" \t\n\r", s[i]) >= 0 {
				i++
			}
		default:
			return "", fmt.Errorf("unknown escape \\%c in %q", esc, s)
		}
	}
	return b.String(), nil
}
