package data

import "fmt"

// SchemaError reports a malformed competition file.
type SchemaError struct {
	File   string
	Line   int
	Column string
	Msg    string
}

func (e *SchemaError) Error() string {
	switch {
	case e.Line > 0 && e.Column != "":
		return fmt.Sprintf("%s:%d: column %s: %s", e.File, e.Line, e.Column, e.Msg)
	case e.Line > 0:
		return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Msg)
	case e.Column != "":
		return fmt.Sprintf("%s: column %s: %s", e.File, e.Column, e.Msg)
	default:
		return fmt.Sprintf("%s: %s", e.File, e.Msg)
	}
}
