package rustsrc

import (
	"fmt"

	"fortio.org/safecast"
)

// cursor is a byte position in the source being lexed.
type cursor struct {
	src   []byte
	off   uint32
	limit uint32
}

func newCursor(src []byte) (cursor, error) {
	limit, err := safecast.Conv[uint32](len(src))
	if err != nil {
		return cursor{}, fmt.Errorf("source too large: %w", err)
	}
	return cursor{src: src, limit: limit}, nil
}

func (c *cursor) eof() bool {
	return c.off >= c.limit
}

// peek returns the current byte, or 0 at EOF.
func (c *cursor) peek() byte {
	return c.peekAt(0)
}

// peekAt returns the byte n positions ahead, or 0 past EOF.
func (c *cursor) peekAt(n uint32) byte {
	if c.off+n >= c.limit {
		return 0
	}
	return c.src[c.off+n]
}

func (c *cursor) bump() byte {
	if c.eof() {
		return 0
	}
	b := c.src[c.off]
	c.off++
	return b
}

func (c *cursor) advance(n uint32) {
	c.off = min(c.off+n, c.limit)
}

// eat consumes the next byte if it matches b.
func (c *cursor) eat(b byte) bool {
	if !c.eof() && c.src[c.off] == b {
		c.off++
		return true
	}
	return false
}

func (c *cursor) hasPrefix(s string) bool {
	if c.off+uint32(len(s)) > c.limit {
		return false
	}
	return string(c.src[c.off:c.off+uint32(len(s))]) == s
}

func (c *cursor) spanFrom(start uint32) Span {
	return Span{Start: start, End: c.off}
}
