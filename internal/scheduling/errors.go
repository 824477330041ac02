package scheduling

import "errors"

// ErrMalformed marks a request rejected before any storage access, such as an
// unknown status value or a schedule window with end before start.
var ErrMalformed = errors.New("malformed input")
