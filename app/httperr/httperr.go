// Package httperr turns service errors into the JSON error responses used by
// every handler
package httperr

import (
	"errors"
	"net/http"

	"sharefile/share-api/internal/plan"
	"sharefile/share-api/internal/service"
	"sharefile/share-api/pkg/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Abort writes err as {"error", "requestID"} with a matching status. Errors
// that aren't the client's fault are logged and hidden behind a generic message
func Abort(c *gin.Context, err error, msg string) {
	requestID := c.GetString("requestID")

	status, public := classify(err)
	if status == http.StatusInternalServerError {
		zap.L().Error(msg, zap.String("requestID", requestID), zap.Error(err))
	}

	body := gin.H{
		"error":     public,
		"requestID": requestID,
	}

	var qe *service.QuotaError
	if errors.As(err, &qe) {
		body["reason"] = qe.Reason
		body["plan"] = qe.Plan
		body["limit"] = qe.Limit
	}

	c.AbortWithStatusJSON(status, body)
}

func classify(err error) (int, string) {
	var qe *service.QuotaError

	switch {
	case errors.As(err, &qe) && qe.Reason == service.QuotaSize:
		return http.StatusRequestEntityTooLarge, qe.Error()
	case errors.As(err, &qe):
		return http.StatusConflict, qe.Error()
	case errors.Is(err, service.ErrNotAuthenticated):
		return http.StatusUnauthorized, "You must be logged in"
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, "File not found or has expired"
	case errors.Is(err, service.ErrDuplicateTransaction):
		return http.StatusConflict, "This transaction ID was already used"
	case errors.Is(err, service.ErrProfileLocked):
		return http.StatusUnauthorized, "Invalid profile password"
	case errors.Is(err, plan.ErrUnknownPlan):
		return http.StatusBadRequest, "Unknown plan type"
	case errors.Is(err, validators.ErrTransactionIDEmpty),
		errors.Is(err, validators.ErrTransactionIDInvalid),
		errors.Is(err, validators.ErrAmountInvalid),
		errors.Is(err, validators.ErrPasswordEmpty),
		errors.Is(err, validators.ErrPasswordTooShort),
		errors.Is(err, validators.ErrPasswordTooLong):
		return http.StatusBadRequest, capitalize(err.Error())
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}

	b := []byte(s)
	if b[0] >= 'a' && b[0] <= 'z' {
		b[0] -= 'a' - 'A'
	}

	return string(b)
}
