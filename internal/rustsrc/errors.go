package rustsrc

import (
	"bytes"
	"fmt"
)

// SyntaxError reports malformed source at a position in the original text.
type SyntaxError struct {
	Offset uint32
	Line   int
	Col    int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Col, e.Msg)
}

func newSyntaxError(src []byte, off uint32, format string, args ...any) *SyntaxError {
	if int(off) > len(src) {
		off = uint32(len(src))
	}
	before := src[:off]
	line := bytes.Count(before, []byte{'\n'}) + 1
	col := int(off) - (bytes.LastIndexByte(before, '\n') + 1) + 1
	return &SyntaxError{
		Offset: off,
		Line:   line,
		Col:    col,
		Msg:    fmt.Sprintf(format, args...),
	}
}
