package usecase

import (
	"errors"

	"github.com/fastygo/courts/domain"
)

// Classify passes domain errors through and marks anything else as an
// infrastructure failure of op.
func Classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var dErr *domain.Error
	if errors.As(err, &dErr) {
		return err
	}
	return domain.Unavailable(op+" failed", err)
}
