package netxlite

import (
	"errors"
	"strings"
)

// ErrNoEndpoints is returned when we are asked to connect to an
// empty list of endpoints, e.g., because resolving returned nothing.
var ErrNoEndpoints = errors.New("no endpoints to connect to")

// reduceErrors picks the error to report after all connect attempts
// failed. A classified error is probably more relevant than an unknown
// one, so we return the first classified error; otherwise we return
// the last error, which is what a sequential connect reports.
func reduceErrors(errorslist []error) error {
	if len(errorslist) == 0 {
		return ErrNoEndpoints
	}
	for _, err := range errorslist {
		var wrapper *ErrWrapper
		if errors.As(err, &wrapper) && !strings.HasPrefix(
			err.Error(), "unknown_failure",
		) {
			return err
		}
	}
	return errorslist[len(errorslist)-1]
}
