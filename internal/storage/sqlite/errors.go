package sqlite

import (
	"errors"
	"strings"

	"github.com/nsyout/overseer/internal/types"
)

// wrapDBError classifies a raw database/sql error into the closed
// taxonomy. Foreign-key and check-constraint violations surface as
// KindStoreError with the underlying message preserved, matching spec §7
// ("Store: integrity (foreign key / check constraint), IO").
func wrapDBError(op string, err error) error {
	if err == nil {
		return nil
	}
	var typed *types.Error
	if errors.As(err, &typed) {
		return err
	}
	return types.Errorf(types.KindStoreError, err, "%s", op)
}

func isConstraintViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "constraint") || strings.Contains(msg, "unique")
}
