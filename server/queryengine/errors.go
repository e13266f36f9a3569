package queryengine

import "errors"

// ParseError indicates the upstream structured parse failed or returned
// content that cannot be mapped onto the hints schema. Callers should ask
// the user to rephrase rather than retry silently.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return "query parse failed: " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// RetrievalError indicates the candidate retrieval call failed. Retry policy
// belongs to the retrieval transport, not to the ranking core.
type RetrievalError struct {
	Err error
}

func (e *RetrievalError) Error() string {
	return "candidate retrieval failed: " + e.Err.Error()
}

func (e *RetrievalError) Unwrap() error {
	return e.Err
}

// IsParseError reports whether err is (or wraps) a ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// IsRetrievalError reports whether err is (or wraps) a RetrievalError.
func IsRetrievalError(err error) bool {
	var re *RetrievalError
	return errors.As(err, &re)
}
