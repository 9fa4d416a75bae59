package notify

import "errors"

// ErrAborted signals the user aborted a prompt (e.g., Ctrl+C).
var ErrAborted = errors.New("notify: aborted")
