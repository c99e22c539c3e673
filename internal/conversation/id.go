package conversation

import (
	"github.com/oklog/ulid/v2"
)

// NewID creates a sortable, globally unique conversation ID. The
// "conv_" prefix makes store keys self-describing in shared
// namespaces.
func NewID() string {
	return "conv_" + ulid.Make().String()
}
