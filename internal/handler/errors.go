package handler

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/makkenzo/license-gate/internal/ierr"
)

// bindError keeps validator errors intact for field-level details and wraps
// anything else (malformed JSON, bad query types) as a validation failure.
func bindError(err error) error {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		return err
	}
	return fmt.Errorf("%w: %v", ierr.ErrValidation, err)
}
