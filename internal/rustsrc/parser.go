package rustsrc

// ParseFile lexes src and parses its top-level items. Inline module bodies are
// parsed recursively into Item.Items; all other bodies are left opaque.
func ParseFile(src []byte) (*File, error) {
	toks, err := Lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks, list: toks.List}
	items, err := p.items(0, len(p.list))
	if err != nil {
		return nil, err
	}
	f := &File{Tokens: toks, Items: items}
	if n := len(p.list); n > 0 {
		f.End = p.list[n-1].Span.End
	}
	return f, nil
}

type parser struct {
	toks *Tokens
	list []Token
}

func (p *parser) errorAt(i int, format string, args ...any) error {
	var off uint32
	switch {
	case i < len(p.list):
		off = p.list[i].Span.Start
	case len(p.list) > 0:
		off = p.list[len(p.list)-1].Span.End
	}
	return newSyntaxError(p.toks.Src, off, format, args...)
}

func (p *parser) describe(i, hi int) string {
	if i >= hi {
		return "end of input"
	}
	return "`" + p.list[i].Text + "`"
}

// items parses the items in the token range [lo, hi).
func (p *parser) items(lo, hi int) ([]Item, error) {
	var out []Item
	for i := lo; i < hi; {
		it, next, err := p.item(i, hi)
		if err != nil {
			return nil, err
		}
		if it != nil {
			out = append(out, *it)
		}
		i = next
	}
	return out, nil
}

// item parses one item starting at i. It returns a nil item for tokens that
// occupy item position without forming an item (inner attributes, inner doc
// comments, stray semicolons).
func (p *parser) item(i, hi int) (*Item, int, error) {
	start := -1
	var attrs []Attr

	for i < hi {
		t := p.list[i]
		if t.Kind == OuterDoc {
			if start < 0 {
				start = i
			}
			i++
			continue
		}
		if t.Kind == InnerDoc {
			if start >= 0 {
				return nil, 0, p.errorAt(i, "inner doc comment is not permitted here")
			}
			return nil, i + 1, nil
		}
		if !t.Is("#") {
			break
		}
		j := i + 1
		inner := j < hi && p.list[j].Is("!")
		if inner {
			j++
		}
		if j >= hi || !p.list[j].IsOpen('[') {
			return nil, 0, p.errorAt(j, "expected `[` after `#`, found %s", p.describe(j, hi))
		}
		closeIdx := p.toks.Match(j)
		if inner {
			if start >= 0 {
				return nil, 0, p.errorAt(i, "inner attribute is not permitted here")
			}
			return nil, closeIdx + 1, nil
		}
		if start < 0 {
			start = i
		}
		attrs = append(attrs, Attr{
			Span:   Span{Start: t.Span.Start, End: p.list[closeIdx].Span.End},
			Tokens: p.list[j+1 : closeIdx],
		})
		i = closeIdx + 1
	}

	if i >= hi {
		if start >= 0 {
			return nil, 0, p.errorAt(i, "expected item after attributes")
		}
		return nil, hi, nil
	}
	if start < 0 {
		if p.list[i].Is(";") {
			return nil, i + 1, nil
		}
		start = i
	}

	it := &Item{Attrs: attrs}
	end, err := p.itemBody(it, i, hi)
	if err != nil {
		return nil, 0, err
	}
	it.Span = Span{Start: p.list[start].Span.Start, End: p.list[end].Span.End}
	return it, end + 1, nil
}

// itemBody parses visibility, qualifiers and the item proper, filling in
// kind, name and nested data. It returns the index of the item's last token.
func (p *parser) itemBody(it *Item, i, hi int) (int, error) {
	if i < hi && p.list[i].IsIdent("pub") {
		i++
		if i < hi && p.list[i].IsOpen('(') {
			i = p.toks.Match(i) + 1
		}
	}

qualifiers:
	for i < hi && p.list[i].Kind == Ident {
		switch p.list[i].Text {
		case "unsafe":
			it.Unsafe = true
			i++
		case "async", "safe":
			if !p.peekIdentIn(i+1, hi, "fn", "unsafe", "static", "extern") {
				break qualifiers
			}
			i++
		case "default", "auto":
			if !p.peekIdentIn(i+1, hi, "fn", "impl", "trait", "type", "const", "unsafe", "async", "extern") {
				break qualifiers
			}
			i++
		case "const":
			if !p.peekIdentIn(i+1, hi, "fn", "unsafe", "async", "extern") {
				break qualifiers
			}
			i++
		case "extern":
			j := i + 1
			if j < hi && p.list[j].Kind == Literal {
				j++
			}
			if j < hi && p.list[j].IsOpen('{') {
				it.Kind = ItemExternBlock
				return p.toks.Match(j), nil
			}
			if j < hi && p.list[j].IsIdent("crate") {
				return p.externCrate(it, j+1, hi)
			}
			i = j
		default:
			break qualifiers
		}
	}

	if i >= hi {
		return 0, p.errorAt(i, "expected item, found end of input")
	}
	kw := p.list[i]
	if kw.Kind != Ident {
		return 0, p.errorAt(i, "expected item, found %s", p.describe(i, hi))
	}

	switch kw.Text {
	case "fn":
		return p.named(it, ItemFn, i+1, hi, p.braceOrSemi)
	case "struct":
		return p.named(it, ItemStruct, i+1, hi, p.braceOrSemi)
	case "enum":
		return p.named(it, ItemEnum, i+1, hi, p.braceOrSemi)
	case "trait":
		return p.named(it, ItemTrait, i+1, hi, p.braceOrSemi)
	case "union":
		if i+1 < hi && p.list[i+1].Kind == Ident {
			return p.named(it, ItemUnion, i+1, hi, p.braceOrSemi)
		}
	case "impl":
		it.Kind = ItemImpl
		return p.braceOrSemi(i+1, hi)
	case "type":
		return p.named(it, ItemType, i+1, hi, p.semi)
	case "const":
		return p.named(it, ItemConst, i+1, hi, p.semi)
	case "static":
		j := i + 1
		if j < hi && p.list[j].IsIdent("mut") {
			j++
		}
		return p.named(it, ItemStatic, j, hi, p.semi)
	case "use":
		it.Kind = ItemUse
		return p.semi(i+1, hi)
	case "mod":
		return p.module(it, i+1, hi)
	case "macro_rules":
		if i+1 < hi && p.list[i+1].Is("!") {
			return p.macroRules(it, i+2, hi)
		}
	case "macro":
		if i+1 < hi && p.list[i+1].Kind == Ident {
			return p.named(it, ItemMacro, i+1, hi, p.braceOrSemi)
		}
	}
	return p.macroCall(it, i, hi)
}

func (p *parser) peekIdentIn(i, hi int, names ...string) bool {
	if i >= hi || p.list[i].Kind != Ident {
		return false
	}
	for _, n := range names {
		if p.list[i].Text == n {
			return true
		}
	}
	return false
}

func (p *parser) ident(i, hi int, what string) (string, error) {
	if i >= hi || p.list[i].Kind != Ident {
		return "", p.errorAt(i, "expected identifier after `%s`, found %s", what, p.describe(i, hi))
	}
	name := Unraw(p.list[i].Text)
	if name == "_" {
		return "", nil
	}
	return name, nil
}

func (p *parser) named(it *Item, kind ItemKind, i, hi int, rest func(int, int) (int, error)) (int, error) {
	name, err := p.ident(i, hi, kind.String())
	if err != nil {
		return 0, err
	}
	it.Kind = kind
	it.Name = name
	return rest(i+1, hi)
}

// semi finds the `;` that ends the item, skipping over delimited groups.
func (p *parser) semi(i, hi int) (int, error) {
	for j := i; j < hi; j++ {
		t := p.list[j]
		if t.Kind == OpenDelim {
			j = p.toks.Match(j)
			continue
		}
		if t.Is(";") {
			return j, nil
		}
	}
	return 0, p.errorAt(hi, "expected `;`, found end of input")
}

// braceOrSemi finds the end of an item that is terminated either by its
// `{ ... }` body or by a `;`.
func (p *parser) braceOrSemi(i, hi int) (int, error) {
	j := p.toks.ItemEnd(i, hi)
	switch {
	case j < 0:
		return 0, p.errorAt(hi, "expected `{` or `;`, found end of input")
	case p.list[j].Kind == OpenDelim:
		return p.toks.Match(j), nil
	}
	return j, nil
}

func (p *parser) module(it *Item, i, hi int) (int, error) {
	name, err := p.ident(i, hi, "mod")
	if err != nil {
		return 0, err
	}
	if name == "" {
		return 0, p.errorAt(i, "expected module name, found `_`")
	}
	it.Kind = ItemMod
	it.Name = name
	j := i + 1
	switch {
	case j < hi && p.list[j].Is(";"):
		return j, nil
	case j < hi && p.list[j].IsOpen('{'):
		closeIdx := p.toks.Match(j)
		it.Body = &Span{Start: p.list[j].Span.Start, End: p.list[closeIdx].Span.End}
		children, err := p.items(j+1, closeIdx)
		if err != nil {
			return 0, err
		}
		it.Items = children
		return closeIdx, nil
	}
	return 0, p.errorAt(j, "expected `;` or `{` after module name, found %s", p.describe(j, hi))
}

func (p *parser) externCrate(it *Item, i, hi int) (int, error) {
	name, err := p.ident(i, hi, "crate")
	if err != nil {
		return 0, err
	}
	j := i + 1
	if j < hi && p.list[j].IsIdent("as") {
		name, err = p.ident(j+1, hi, "as")
		if err != nil {
			return 0, err
		}
		j += 2
	}
	it.Kind = ItemExternCrate
	it.Name = name
	return p.semi(j, hi)
}

func (p *parser) macroRules(it *Item, i, hi int) (int, error) {
	name, err := p.ident(i, hi, "macro_rules!")
	if err != nil {
		return 0, err
	}
	it.Kind = ItemMacroRules
	it.Name = name
	return p.macroGroup(i+1, hi)
}

// macroCall parses `path::to::mac! ...` in item position.
func (p *parser) macroCall(it *Item, i, hi int) (int, error) {
	j := i
	for {
		if j >= hi || p.list[j].Kind != Ident {
			return 0, p.errorAt(i, "expected item, found %s", p.describe(i, hi))
		}
		j++
		if j+1 < hi && p.list[j].Is(":") && p.list[j+1].Is(":") {
			j += 2
			continue
		}
		break
	}
	if j >= hi || !p.list[j].Is("!") {
		return 0, p.errorAt(i, "expected item, found %s", p.describe(i, hi))
	}
	j++
	if j < hi && p.list[j].Kind == Ident {
		j++
	}
	it.Kind = ItemMacroCall
	return p.macroGroup(j, hi)
}

// macroGroup expects a delimited group; parenthesized and bracketed groups
// must be followed by `;`.
func (p *parser) macroGroup(i, hi int) (int, error) {
	if i >= hi || p.list[i].Kind != OpenDelim {
		return 0, p.errorAt(i, "expected macro body, found %s", p.describe(i, hi))
	}
	closeIdx := p.toks.Match(i)
	if p.list[i].Text[0] == '{' {
		return closeIdx, nil
	}
	if closeIdx+1 < hi && p.list[closeIdx+1].Is(";") {
		return closeIdx + 1, nil
	}
	return 0, p.errorAt(closeIdx+1, "expected `;` after macro invocation, found %s", p.describe(closeIdx+1, hi))
}
