// Package unsafescan reports unsafe usage in Rust source files.
//
// For each file it lists the fn items that are declared unsafe but are not
// exported across compilation units, and the fn items that lexically contain
// an `unsafe { ... }` block. Unsafe fns exported with `#[no_mangle]` or
// `#[export_name]` are skipped entirely, bodies included, since unsafety at a
// foreign-function boundary is often unavoidable.
//
// Methods in impl and trait blocks are not fn items: they are never listed,
// and unsafe blocks inside them count toward the enclosing fn item, if any.
// Macro invocation arguments are opaque and never scanned.
package unsafescan

import (
	"sort"

	"github.com/danieljhkim/rsmerge/internal/rustsrc"
)

// Report is the scan result for one file.
type Report struct {
	// InternalUnsafeFns lists unsafe fn items that are not link-exported,
	// in source order.
	InternalUnsafeFns []string `json:"internal_unsafe_fns" msgpack:"internal_unsafe_fns"`

	// FnsContainingUnsafe lists, sorted, the innermost fn items that contain
	// at least one unsafe block.
	FnsContainingUnsafe []string `json:"fns_containing_unsafe" msgpack:"fns_containing_unsafe"`
}

// ScanSource scans one file's text.
func ScanSource(src []byte) (Report, error) {
	toks, err := rustsrc.Lex(src)
	if err != nil {
		return Report{}, err
	}
	s := &scanner{
		toks:       toks,
		list:       toks.List,
		containing: make(map[string]bool),
	}
	s.scan(0, len(s.list), scope{})

	rep := Report{
		InternalUnsafeFns:   s.internal,
		FnsContainingUnsafe: make([]string, 0, len(s.containing)),
	}
	if rep.InternalUnsafeFns == nil {
		rep.InternalUnsafeFns = []string{}
	}
	for name := range s.containing {
		rep.FnsContainingUnsafe = append(rep.FnsContainingUnsafe, name)
	}
	sort.Strings(rep.FnsContainingUnsafe)
	return rep, nil
}

type scanner struct {
	toks       *rustsrc.Tokens
	list       []rustsrc.Token
	internal   []string
	containing map[string]bool
}

// scope is the lexical context of a token range.
type scope struct {
	// fn is the innermost enclosing fn item, "" at module level.
	fn string
	// assoc is set directly inside impl, trait and extern block bodies,
	// where `fn` introduces an associated function rather than an item.
	assoc bool
}

var keywords = map[string]bool{
	"as": true, "async": true, "await": true, "break": true, "const": true,
	"continue": true, "crate": true, "dyn": true, "else": true, "enum": true,
	"extern": true, "false": true, "fn": true, "for": true, "if": true,
	"impl": true, "in": true, "let": true, "loop": true, "match": true,
	"mod": true, "move": true, "mut": true, "pub": true, "ref": true,
	"return": true, "self": true, "Self": true, "static": true, "struct": true,
	"super": true, "trait": true, "true": true, "type": true, "unsafe": true,
	"use": true, "where": true, "while": true, "yield": true,
}

func (s *scanner) scan(lo, hi int, sc scope) {
	for i := lo; i < hi; {
		i = s.step(i, hi, sc)
	}
}

// step handles the construct starting at i and returns the index after it.
func (s *scanner) step(i, hi int, sc scope) int {
	t := s.list[i]
	switch {
	case t.Is("#"):
		j := i + 1
		if j < hi && s.list[j].Is("!") {
			j++
		}
		if j < hi && s.list[j].IsOpen('[') {
			return s.toks.Match(j) + 1
		}
		return i + 1

	case t.IsIdent("unsafe") && i+1 < hi && s.list[i+1].IsOpen('{'):
		if sc.fn != "" {
			s.containing[sc.fn] = true
		}
		end := s.toks.Match(i + 1)
		s.scan(i+2, end, scope{fn: sc.fn})
		return end + 1

	case t.IsIdent("fn") && i+1 < hi && s.list[i+1].Kind == rustsrc.Ident:
		return s.fn(i, hi, sc)

	case t.IsIdent("impl") || t.IsIdent("trait"):
		return s.block(i, hi, sc, true)

	case t.IsIdent("extern"):
		j := i + 1
		if j < hi && s.list[j].Kind == rustsrc.Literal {
			j++
		}
		if j < hi && s.list[j].IsOpen('{') {
			end := s.toks.Match(j)
			s.scan(j+1, end, scope{fn: sc.fn, assoc: true})
			return end + 1
		}
		return i + 1

	case t.Kind == rustsrc.Ident && !keywords[t.Text] && i+1 < hi && s.list[i+1].Is("!"):
		j := i + 2
		if j < hi && s.list[j].Kind == rustsrc.Ident {
			j++
		}
		if j < hi && s.list[j].Kind == rustsrc.OpenDelim {
			return s.toks.Match(j) + 1
		}
		return i + 1

	case t.Kind == rustsrc.OpenDelim:
		end := s.toks.Match(i)
		s.scan(i+1, end, scope{fn: sc.fn})
		return end + 1
	}
	return i + 1
}

// block scans an impl or trait header up to its body and scans the body as
// an associated-item scope.
func (s *scanner) block(i, hi int, sc scope, assoc bool) int {
	j := s.toks.ItemEnd(i+1, hi)
	switch {
	case j < 0:
		return hi
	case s.list[j].Is(";"):
		return j + 1
	}
	end := s.toks.Match(j)
	s.scan(j+1, end, scope{fn: sc.fn, assoc: assoc})
	return end + 1
}

// fn handles `fn name ...` at index i.
func (s *scanner) fn(i, hi int, sc scope) int {
	name := rustsrc.Unraw(s.list[i+1].Text)
	body := -1
	next := hi
	if j := s.toks.ItemEnd(i+2, hi); j >= 0 {
		if s.list[j].IsOpen('{') {
			body = j
			next = s.toks.Match(j) + 1
		} else {
			next = j + 1
		}
	}

	if sc.assoc {
		if body >= 0 {
			s.scan(body+1, next-1, scope{fn: sc.fn})
		}
		return next
	}

	unsafeFn, exported := s.prefix(i)
	if unsafeFn {
		if exported {
			return next
		}
		s.internal = append(s.internal, name)
	}
	if body >= 0 {
		s.scan(body+1, next-1, scope{fn: name})
	}
	return next
}

// prefix walks backwards from the `fn` keyword at i over qualifiers,
// visibility, doc comments and outer attributes.
func (s *scanner) prefix(i int) (unsafeFn, exported bool) {
	for j := i - 1; j >= 0; j-- {
		t := s.list[j]
		switch {
		case t.Kind == rustsrc.Ident:
			switch t.Text {
			case "unsafe":
				unsafeFn = true
			case "const", "async", "extern", "safe", "default", "pub":
			default:
				return unsafeFn, exported
			}
		case t.Kind == rustsrc.Literal && j > 0 && s.list[j-1].IsIdent("extern"):
		case t.Kind == rustsrc.OuterDoc:
		case t.Kind == rustsrc.CloseDelim && t.Text == ")":
			open := s.toks.Match(j)
			if open < 1 || !s.list[open-1].IsIdent("pub") {
				return unsafeFn, exported
			}
			j = open
		case t.Kind == rustsrc.CloseDelim && t.Text == "]":
			open := s.toks.Match(j)
			if open < 1 || !s.list[open-1].Is("#") {
				return unsafeFn, exported
			}
			attr := rustsrc.Attr{Tokens: s.list[open+1 : j]}
			if rustsrc.IsLinkExport(attr) {
				exported = true
			}
			j = open - 1
		default:
			return unsafeFn, exported
		}
	}
	return unsafeFn, exported
}
