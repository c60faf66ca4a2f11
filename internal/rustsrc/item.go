package rustsrc

// ItemKind tags the syntactic form of a top-level item.
type ItemKind uint8

const (
	ItemFn ItemKind = iota + 1
	ItemStruct
	ItemEnum
	ItemUnion
	ItemTrait
	ItemImpl
	ItemType
	ItemConst
	ItemStatic
	ItemMod
	ItemUse
	ItemExternCrate
	ItemExternBlock
	ItemMacroRules
	ItemMacro
	ItemMacroCall
)

var itemKindNames = map[ItemKind]string{
	ItemFn:          "fn",
	ItemStruct:      "struct",
	ItemEnum:        "enum",
	ItemUnion:       "union",
	ItemTrait:       "trait",
	ItemImpl:        "impl",
	ItemType:        "type",
	ItemConst:       "const",
	ItemStatic:      "static",
	ItemMod:         "mod",
	ItemUse:         "use",
	ItemExternCrate: "extern crate",
	ItemExternBlock: "extern block",
	ItemMacroRules:  "macro_rules",
	ItemMacro:       "macro",
	ItemMacroCall:   "macro call",
}

func (k ItemKind) String() string {
	if s, ok := itemKindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Attr is one outer attribute `#[...]`. Tokens holds the tokens between the
// brackets.
type Attr struct {
	Span   Span
	Tokens []Token
}

// Item is one top-level item. Every kind exposes the same view: a name (empty
// when the item has no stable name, e.g. impl blocks and use declarations) and
// the exact extent from its first attribute or doc comment through its end.
type Item struct {
	Kind   ItemKind
	Name   string
	Span   Span
	Attrs  []Attr
	Unsafe bool

	// Body is the `{ ... }` group of an inline module, braces included.
	Body *Span
	// Items are the direct items of an inline module body.
	Items []Item
}

// Named reports whether the item can be addressed by name.
func (it *Item) Named() bool {
	return it.Name != ""
}

// IsModule reports whether the item declares a module.
func (it *Item) IsModule() bool {
	return it.Kind == ItemMod
}

// IsInlineModule reports whether the item is a module declared with a body.
func (it *Item) IsInlineModule() bool {
	return it.Kind == ItemMod && it.Body != nil
}

// File is the item-level parse of one source file.
type File struct {
	Tokens *Tokens
	Items  []Item
	// End is the end offset of the last token, or 0 for a file without tokens.
	End uint32
}
