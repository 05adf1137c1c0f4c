package ses

import "fmt"

// SchemaError indicates that an expected key was missing from a raw SES API
// response. It is propagated up unrecovered and surfaces as a server error
// to the dashboard caller.
type SchemaError struct {
	Key string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("ses: response missing %q", e.Key)
}

// ParseError indicates a malformed timestamp or numeric value inside an
// otherwise well-formed response. No partial results are ever returned
// alongside one.
type ParseError struct {
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("ses: parsing %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
