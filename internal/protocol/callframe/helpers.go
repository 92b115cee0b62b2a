package callframe

import (
	"errors"
	"fmt"

	"github.com/coreframe/callwire/pkg/ccerr"
)

func lengthOverflow(offset, length, max int) error {
	return ccerr.NewLengthOverflowError(offset, length, max)
}

func errInvalidUtf8(field string) error {
	return ccerr.NewInvalidUtf8Error(-1, field)
}

// errUnavailable wraps a cached failure reason for a lazy accessor that
// is re-read after its first failed attempt.
func errUnavailable(reason string) error {
	if reason == "" {
		return errors.New("field unavailable")
	}
	return fmt.Errorf("field unavailable: %s", reason)
}
