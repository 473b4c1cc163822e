package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	authdomain "github.com/coopfoods/ajomart/internal/auth/domain"
	branchdomain "github.com/coopfoods/ajomart/internal/branch/domain"
	catalogdomain "github.com/coopfoods/ajomart/internal/catalog/domain"
	eligibilitydomain "github.com/coopfoods/ajomart/internal/eligibility/domain"
	memberdomain "github.com/coopfoods/ajomart/internal/member/domain"
	orderdomain "github.com/coopfoods/ajomart/internal/order/domain"
	"gorm.io/gorm"
)

type errorPayload struct {
	Type      string `json:"type"`
	Code      string `json:"code"`
	Message   string `json:"message"`
	Limit     *int64 `json:"limit,omitempty"`
	Attempted *int64 `json:"attempted,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrInvalidRequest = errors.New("invalid_request")
	ErrRateLimited    = errors.New("rate_limited")
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

// mapError translates domain errors into the boundary taxonomy. Internal
// detail (query text, driver errors) never reaches the client.
func mapError(err error) (int, errorPayload) {
	var limitErr *orderdomain.LimitError
	if errors.As(err, &limitErr) {
		code := "exceeds_loan_limit"
		wallet := "Loan"
		if limitErr.Option == orderdomain.PaymentSavings {
			code = "exceeds_savings_limit"
			wallet = "Savings"
		}
		return http.StatusBadRequest, errorPayload{
			Type:      "limit_exceeded",
			Code:      code,
			Message:   fmt.Sprintf("Total exceeds %s available %s", wallet, naira(limitErr.Limit)),
			Limit:     &limitErr.Limit,
			Attempted: &limitErr.Attempted,
		}
	}

	var procErr *orderdomain.ProcedureError
	if errors.As(err, &procErr) {
		return http.StatusBadRequest, errorPayload{
			Type:    "state_conflict",
			Code:    procErr.Op + "_failed",
			Message: procErr.Reason,
		}
	}

	switch {
	case isValidationError(err):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Code:    sentinelCode(err),
			Message: err.Error(),
		}
	case errors.Is(err, orderdomain.ErrSavingsBlockedByLoans):
		return http.StatusBadRequest, errorPayload{
			Type:    "limit_exceeded",
			Code:    "savings_blocked_by_loans",
			Message: "Savings is not available while loans are outstanding",
		}
	case errors.Is(err, orderdomain.ErrStateConflict),
		errors.Is(err, orderdomain.ErrDeleteNotAllowed):
		return http.StatusBadRequest, errorPayload{
			Type:    "state_conflict",
			Code:    sentinelCode(err),
			Message: err.Error(),
		}
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, authdomain.ErrInvalidCredentials),
		errors.Is(err, authdomain.ErrSessionNotFound),
		errors.Is(err, authdomain.ErrSessionExpired):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Code:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Code:    "forbidden",
			Message: "forbidden",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Code:    sentinelCode(err),
			Message: err.Error(),
		}
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "rate_limited",
			Code:    "rate_limited",
			Message: "too many attempts, try again later",
		}
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusInternalServerError, errorPayload{
			Type:    "dependency_error",
			Code:    "store_timeout",
			Message: "data store timed out",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Code:    "internal_error",
			Message: "internal server error",
		}
	}
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, orderdomain.ErrValidation),
		errors.Is(err, orderdomain.ErrInvalidPaymentOption),
		errors.Is(err, catalogdomain.ErrEmptyLines),
		errors.Is(err, catalogdomain.ErrInvalidQuantity),
		errors.Is(err, catalogdomain.ErrInvalidSKU),
		errors.Is(err, catalogdomain.ErrInvalidPrice),
		errors.Is(err, memberdomain.ErrInvalidMemberCode),
		errors.Is(err, memberdomain.ErrInactive),
		errors.Is(err, branchdomain.ErrInvalidBranchCode),
		errors.Is(err, eligibilitydomain.ErrUnknownPolicy):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, memberdomain.ErrNotFound),
		errors.Is(err, branchdomain.ErrBranchNotFound),
		errors.Is(err, branchdomain.ErrDepartmentNotFound),
		errors.Is(err, catalogdomain.ErrItemNotFound),
		errors.Is(err, catalogdomain.ErrPriceNotFound),
		errors.Is(err, orderdomain.ErrOrderNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

// sentinelCode walks to the innermost sentinel so wrapped context like
// "member_not_found: M-0042" maps to a stable machine code.
func sentinelCode(err error) string {
	for {
		unwrapped := errors.Unwrap(err)
		if unwrapped == nil {
			return err.Error()
		}
		err = unwrapped
	}
}

// naira renders a kobo amount for user-facing messages.
func naira(kobo int64) string {
	whole := kobo / 100
	frac := kobo % 100
	if frac < 0 {
		frac = -frac
	}
	return fmt.Sprintf("₦%d.%02d", whole, frac)
}
