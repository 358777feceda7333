package service

import (
	"errors"
	"fmt"

	"sharefile/share-api/internal/plan"
)

var (
	ErrNotAuthenticated     = errors.New("you must be logged in to upload files")
	ErrQuotaExceeded        = errors.New("quota exceeded")
	ErrStorageWriteFailed   = errors.New("storage write failed")
	ErrStorageDeleteFailed  = errors.New("storage delete failed")
	ErrRowReadFailed        = errors.New("row read failed")
	ErrRowWriteFailed       = errors.New("row write failed")
	ErrRowDeleteFailed      = errors.New("row delete failed")
	ErrNotFound             = errors.New("file not found or has expired")
	ErrDuplicateTransaction = errors.New("transaction ID was already used")
	ErrProfileLocked        = errors.New("invalid profile password")
)

type QuotaReason string

const (
	QuotaSize  QuotaReason = "size"
	QuotaCount QuotaReason = "count"
)

// QuotaError says which plan limit an upload ran into. It matches
// ErrQuotaExceeded with errors.Is
type QuotaError struct {
	Reason QuotaReason
	Plan   plan.Limits
	// Bytes for size, files for count
	Limit int64
}

func (e *QuotaError) Error() string {
	switch e.Reason {
	case QuotaSize:
		return fmt.Sprintf("file is larger than the %d MB limit of the %s", e.Limit/plan.MB, e.Plan.Name)
	default:
		return fmt.Sprintf("upload limit reached, the %s allows %d files", e.Plan.Name, e.Limit)
	}
}

func (e *QuotaError) Is(target error) bool {
	return target == ErrQuotaExceeded
}
