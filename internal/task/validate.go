package task

import (
	"strings"

	"github.com/nsyout/overseer/internal/types"
)

func validatePriority(p int) error {
	if p < types.MinPriority || p > types.MaxPriority {
		return types.Errorf(types.KindInvalidInput, nil, "priority %d out of range [%d, %d]", p, types.MinPriority, types.MaxPriority)
	}
	return nil
}

func validateDescription(d string) error {
	if strings.TrimSpace(d) == "" {
		return types.NewError(types.KindInvalidInput, "description is required", nil)
	}
	return nil
}

func validateTaskID(id string) error {
	return types.ValidateID(id, types.TaskPrefix)
}
