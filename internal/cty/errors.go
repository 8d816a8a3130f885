package cty

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseError reports the first construct of the country file that failed to parse.
// A ParseError always rejects the whole file.
type ParseError struct {
	// Label names the construct that was expected, e.g. "CQ zone" or "';'".
	Label string
	// Offset is the byte offset of the failure in the source text.
	Offset int
	// Line and Column are 1-based; Column counts bytes.
	Line   int
	Column int
	// Found is a short description of the offending input.
	Found string
	// Err is the underlying conversion error, if any.
	Err error
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("line %d, column %d: expected %s, found %s", e.Line, e.Column, e.Label, e.Found)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func newParseError(src string, offset int, label, found string, err error) *ParseError {
	if offset > len(src) {
		offset = len(src)
	}
	head := src[:offset]
	line := strings.Count(head, "\n") + 1
	column := offset - strings.LastIndexByte(head, '\n')
	return &ParseError{
		Label:  label,
		Offset: offset,
		Line:   line,
		Column: column,
		Found:  found,
		Err:    err,
	}
}

// describeAt describes the byte at offset for error messages.
func describeAt(src string, offset int) string {
	if offset >= len(src) {
		return "end of input"
	}
	return strconv.Quote(src[offset : offset+1])
}
