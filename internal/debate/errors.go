package debate

import "errors"

// Failure taxonomy surfaced to callers. Generation and store failures
// are recovered inside the engine and never carry these sentinels.
var (
	// ErrValidation marks bad input shape. Surfaced verbatim, never
	// retried.
	ErrValidation = errors.New("validation failure")

	// ErrProcessing marks an unexpected internal failure. The cause is
	// retained for logs; callers see only the generic sentinel.
	ErrProcessing = errors.New("processing failure")
)
