package hub

import (
	"fmt"
	"strings"
)

// ValidationError reports a submission missing required fields.
// Nothing is stored or published when it is returned.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid notification: %s required", strings.Join(e.Missing, " and "))
}
