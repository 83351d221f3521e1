package template

import (
	"errors"
	"fmt"
)

// ErrNoTokenizer is returned by token_size when the context has no tokenizer
var ErrNoTokenizer = errors.New("no tokenizer in context")

// EvaluationError reports a template that cannot be rendered: bad syntax,
// an unknown filter or macro, or a filter called with bad arguments.
type EvaluationError struct {
	// Pos is the byte offset in the template source, -1 when unknown
	Pos int
	Msg string
	Err error
}

func (e *EvaluationError) Error() string {
	msg := e.Msg
	if e.Err != nil {
		if msg == "" {
			msg = e.Err.Error()
		} else {
			msg = msg + ": " + e.Err.Error()
		}
	}
	if e.Pos >= 0 {
		return fmt.Sprintf("template error at offset %d: %s", e.Pos, msg)
	}
	return "template error: " + msg
}

func (e *EvaluationError) Unwrap() error {
	return e.Err
}

func errorf(pos int, format string, args ...any) *EvaluationError {
	return &EvaluationError{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

func wrapError(pos int, err error, format string, args ...any) *EvaluationError {
	var ee *EvaluationError
	if errors.As(err, &ee) {
		return ee
	}
	return &EvaluationError{Pos: pos, Msg: fmt.Sprintf(format, args...), Err: err}
}
