// Package rustsrc tokenizes Rust source files and splits them into top-level items.
//
// It is deliberately shallow: the parser understands item boundaries (attributes,
// visibility, qualifiers, the terminating `;` or body group) and the nesting of
// inline module bodies, but it never looks inside function bodies or type
// definitions. That is enough to address items by name and to know their exact
// byte extent in the original text.
//
// Key pieces:
//   - Lex: produces the token list plus matching-delimiter indices
//   - ParseFile: item-level parse of a file, inline module bodies included
//   - PathAttr, IsLinkExport: attribute helpers used by module resolution and
//     the unsafe scanner
package rustsrc
