package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	auditdomain "github.com/transnet/rms/internal/audit/domain"
	"github.com/transnet/rms/internal/authorization"
	crdomain "github.com/transnet/rms/internal/checkresult/domain"
	refdomain "github.com/transnet/rms/internal/reference/domain"
	rldomain "github.com/transnet/rms/internal/resourceledger/domain"
	sodomain "github.com/transnet/rms/internal/serviceorder/domain"
	tddomain "github.com/transnet/rms/internal/taskdetail/domain"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrConflict           = errors.New("conflict")
	ErrInternal           = errors.New("internal_error")
	ErrNotFound           = errors.New("not_found")
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrTooManyRequests    = errors.New("too_many_requests")
	ErrServiceUnavailable = errors.New("service_unavailable")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		code := validationErrorCode(err)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, ErrForbidden),
		errors.Is(err, authorization.ErrForbidden):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: conflictMessage(err),
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, ErrTooManyRequests):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "too_many_requests",
			Message: "too many requests",
		}
	case errors.Is(err, ErrServiceUnavailable):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "service unavailable",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return true
	case isOrderValidationError(err),
		isTaskValidationError(err),
		isLedgerValidationError(err),
		isCheckResultValidationError(err),
		isReferenceValidationError(err):
		return true
	default:
		return false
	}
}

func isOrderValidationError(err error) bool {
	switch {
	case errors.Is(err, sodomain.ErrInvalidID),
		errors.Is(err, sodomain.ErrInvalidOrderNo),
		errors.Is(err, sodomain.ErrInvalidTenant),
		errors.Is(err, sodomain.ErrInvalidCheckType),
		errors.Is(err, sodomain.ErrInvalidParentOrder),
		errors.Is(err, sodomain.ErrInvalidDate):
		return true
	default:
		return false
	}
}

func isTaskValidationError(err error) bool {
	switch {
	case errors.Is(err, tddomain.ErrInvalidID),
		errors.Is(err, tddomain.ErrInvalidOrder),
		errors.Is(err, tddomain.ErrInvalidTaskType),
		errors.Is(err, tddomain.ErrInvalidExecutionStatus),
		errors.Is(err, tddomain.ErrInvalidLifecycleStatus),
		errors.Is(err, tddomain.ErrMissingParentOrder),
		errors.Is(err, tddomain.ErrMissingExternalContract):
		return true
	default:
		return false
	}
}

func isLedgerValidationError(err error) bool {
	switch {
	case errors.Is(err, rldomain.ErrInvalidID),
		errors.Is(err, rldomain.ErrInvalidOrder),
		errors.Is(err, rldomain.ErrInvalidResourceType),
		errors.Is(err, rldomain.ErrInvalidResourceID),
		errors.Is(err, rldomain.ErrInvalidSnapshot):
		return true
	default:
		return false
	}
}

func isCheckResultValidationError(err error) bool {
	switch {
	case errors.Is(err, crdomain.ErrInvalidOrder),
		errors.Is(err, crdomain.ErrInvalidCheckType),
		errors.Is(err, crdomain.ErrInvalidResult),
		errors.Is(err, crdomain.ErrInvalidReason):
		return true
	default:
		return false
	}
}

func isReferenceValidationError(err error) bool {
	switch {
	case errors.Is(err, refdomain.ErrInvalidName),
		errors.Is(err, refdomain.ErrInvalidID),
		errors.Is(err, auditdomain.ErrInvalidPageToken),
		errors.Is(err, auditdomain.ErrInvalidTimeRange):
		return true
	default:
		return false
	}
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, ErrConflict),
		errors.Is(err, sodomain.ErrDuplicateOrderNo),
		errors.Is(err, sodomain.ErrOrderReferenced),
		errors.Is(err, rldomain.ErrDuplicateResource):
		return true
	default:
		return false
	}
}

func conflictMessage(err error) string {
	switch {
	case errors.Is(err, sodomain.ErrDuplicateOrderNo):
		return "order number already exists"
	case errors.Is(err, sodomain.ErrOrderReferenced):
		return "order is referenced by resource ledger entries"
	case errors.Is(err, rldomain.ErrDuplicateResource):
		return "resource is already recorded"
	default:
		return "conflict"
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, sodomain.ErrNotFound),
		errors.Is(err, tddomain.ErrNotFound),
		errors.Is(err, rldomain.ErrNotFound),
		errors.Is(err, crdomain.ErrNotFound),
		errors.Is(err, refdomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorCode(err error) string {
	if errors.Is(err, ErrInvalidRequest) {
		return "invalid_request"
	}
	return err.Error()
}

func validationErrorField(code string) string {
	if code == "invalid_request" {
		return "request"
	}
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	if strings.HasPrefix(code, "missing_") {
		return strings.TrimPrefix(code, "missing_")
	}
	return ""
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	case "missing_parent_order":
		return "change tasks require the order to reference a parent order"
	case "missing_external_contract":
		return "external resources require a contract reference"
	default:
		return "invalid value"
	}
}

// classifyErrorForLog labels request errors for structured logging.
func classifyErrorForLog(err error) (string, string) {
	status, payload := mapError(err)
	switch {
	case status >= 500:
		return "server_error", payload.Type
	case status >= 400:
		return "client_error", payload.Type
	default:
		return "", payload.Type
	}
}
