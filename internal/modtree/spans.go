package modtree

import "github.com/danieljhkim/rsmerge/internal/rustsrc"

// ItemSpan is one addressable item of a module.
type ItemSpan struct {
	// Path is the qualified item path: module path plus item name.
	Path Path
	Kind rustsrc.ItemKind
	// Span covers the item's attributes and docs through its end.
	Span rustsrc.Span
	// Module marks a module declaration; Inline marks one with a body.
	Module bool
	Inline bool
}

// ItemSpans lists the named direct items of a module in source order.
// Nested module bodies are not entered; unnamed items are skipped.
func ItemSpans(module Path, items []rustsrc.Item) []ItemSpan {
	out := make([]ItemSpan, 0, len(items))
	for i := range items {
		it := &items[i]
		if !it.Named() {
			continue
		}
		out = append(out, ItemSpan{
			Path:   module.Child(it.Name),
			Kind:   it.Kind,
			Span:   it.Span,
			Module: it.IsModule(),
			Inline: it.IsInlineModule(),
		})
	}
	return out
}
