package installbase

import "fmt"

// FetchError wraps a store failure for key.
type FetchError struct {
	Key string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Key, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// FormatError reports a worklist body that is not a JSON array of objects
// carrying a gduns field.
type FormatError struct {
	Key    string
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("unexpected worklist format in %s: %s: %v", e.Key, e.Reason, e.Err)
	}
	return fmt.Sprintf("unexpected worklist format in %s: %s", e.Key, e.Reason)
}

func (e *FormatError) Unwrap() error { return e.Err }

// MalformedPayloadError reports an install base body that failed either
// decode stage or does not have the expected shape.
type MalformedPayloadError struct {
	Key    string
	Reason string
	Err    error
}

func (e *MalformedPayloadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("unexpected install base JSON format in %s: %s: %v", e.Key, e.Reason, e.Err)
	}
	return fmt.Sprintf("unexpected install base JSON format in %s: %s", e.Key, e.Reason)
}

func (e *MalformedPayloadError) Unwrap() error { return e.Err }

// EmptyPayloadError reports a well-formed document that declares fewer than
// one record.
type EmptyPayloadError struct {
	Key         string
	RecordCount int
}

func (e *EmptyPayloadError) Error() string {
	return fmt.Sprintf("no JSON payload in %s (recordCount=%d)", e.Key, e.RecordCount)
}
