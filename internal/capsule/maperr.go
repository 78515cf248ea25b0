package capsule

import (
	"errors"

	"github.com/prn-tf/helix/internal/masterkey"
)

// mapMasterKeyErr translates a masterkey package error onto the
// capsule package's own error taxonomy, so callers only ever need to
// match against this package's sentinels.
func mapMasterKeyErr(err error) error {
	switch {
	case errors.Is(err, masterkey.ErrPassphraseMismatch):
		return ErrPassphraseMismatch
	case errors.Is(err, masterkey.ErrMalformedCapsule):
		return ErrMalformedCapsule
	default:
		return err
	}
}
