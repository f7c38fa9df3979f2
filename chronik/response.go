package chronik

import (
	"fmt"
	"net/http"

	"chronikwatch/chronikpb"
)

// Response is the outcome of one exchange with the indexer: either a
// decoded payload (status 200) or the indexer's error message (any other
// status). Exactly one side is ever populated.
type Response[T any] struct {
	status int
	ok     *T
	err    *chronikpb.Error
}

func (r *Response[T]) Status() int { return r.status }

// Ok returns the payload, or a StatusMismatchError when the exchange was
// an error response.
func (r *Response[T]) Ok() (*T, error) {
	if r.status != http.StatusOK {
		return nil, &StatusMismatchError{
			Expected: http.StatusOK,
			Got:      r.status,
			ErrMsg:   r.err.Msg,
		}
	}
	return r.ok, nil
}

// Err returns the indexer's error message after checking the response
// carried exactly the given status. It fails on a 200 response and on an
// error response with a different status.
func (r *Response[T]) Err(status int) (*chronikpb.Error, error) {
	if r.status == http.StatusOK {
		return nil, &StatusMismatchError{Expected: status, Got: r.status, Ok: r.ok}
	}
	if r.status != status {
		return nil, &StatusMismatchError{Expected: status, Got: r.status, ErrMsg: r.err.Msg}
	}
	return r.err, nil
}

// ContentTypeError reports a response served under a content type other
// than application/x-protobuf. The body is kept raw since it was never
// decoded.
type ContentTypeError struct {
	ContentType string
	Body        []byte
}

func (e *ContentTypeError) Error() string {
	return fmt.Sprintf("unexpected content type %q, expected %q, body: %q", e.ContentType, protobufContentType, e.Body)
}

// DecodeError reports a protobuf body that failed to decode. It is
// distinct from ContentTypeError: the server claimed protobuf but the
// bytes did not parse.
type DecodeError struct {
	What string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding %s: %v", e.What, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// StatusMismatchError reports that a response did not match the status a
// caller asserted through Ok or Err.
type StatusMismatchError struct {
	Expected int
	Got      int
	ErrMsg   string
	Ok       any
}

func (e *StatusMismatchError) Error() string {
	switch {
	case e.Expected == http.StatusOK:
		return fmt.Sprintf("expected OK response, but got status %d, error: %s", e.Got, e.ErrMsg)
	case e.Got == http.StatusOK:
		return fmt.Sprintf("expected error response status %d, but got OK: %+v", e.Expected, e.Ok)
	default:
		return fmt.Sprintf("expected error response status %d, but got different error status %d, error: %s", e.Expected, e.Got, e.ErrMsg)
	}
}
