package document

import "errors"

// ErrEmptyInput marks requests where required text (document body or
// question) is missing or whitespace-only. The HTTP layer maps it to a
// client error; everything else surfaces as a service error.
var ErrEmptyInput = errors.New("empty input")
