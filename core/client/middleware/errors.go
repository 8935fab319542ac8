package middleware

import "errors"

// ErrRetryExhausted is returned by the retry middleware when every attempt
// failed. It is wrapped together with the last provider error, so both
// errors.Is(err, ErrRetryExhausted) and checks on the root cause work.
var ErrRetryExhausted = errors.New("pdfstruct: all retry attempts exhausted")
