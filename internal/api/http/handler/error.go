package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	playground "github.com/go-playground/validator/v10"

	"github.com/Abdul-Aziz026/school-auth/internal/model"
)

type response struct {
	Data  any            `json:"data,omitempty"`
	Error *errorResponse `json:"error,omitempty"`
}

type errorResponse struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
	// RetryAfterSeconds is set on lockout answers.
	RetryAfterSeconds int64 `json:"retry_after_seconds,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps service errors to HTTP answers. Invalid credentials
// and broken tokens both come out as 401 with no extra detail.
func writeError(w http.ResponseWriter, err error) {
	var lockoutErr *model.LockoutError
	if errors.As(err, &lockoutErr) {
		seconds := int64(lockoutErr.Remaining.Seconds())
		if seconds < 1 {
			seconds = 1
		}
		writeJSON(w, http.StatusLocked, response{Error: &errorResponse{
			Code:              "ACCOUNT_LOCKED",
			Message:           "account temporarily locked",
			RetryAfterSeconds: seconds,
		}})
		return
	}

	switch {
	case errors.Is(err, model.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, response{Error: &errorResponse{
			Code: "INVALID_CREDENTIALS", Message: "invalid email or password",
		}})
	case errors.Is(err, model.ErrAccountLocked):
		writeJSON(w, http.StatusLocked, response{Error: &errorResponse{
			Code: "ACCOUNT_LOCKED", Message: "account temporarily locked",
		}})
	case errors.Is(err, model.ErrAccountDisabled):
		writeJSON(w, http.StatusForbidden, response{Error: &errorResponse{
			Code: "ACCOUNT_DISABLED", Message: "account is disabled",
		}})
	case errors.Is(err, model.ErrEmailTaken):
		writeJSON(w, http.StatusConflict, response{Error: &errorResponse{
			Code: "EMAIL_TAKEN", Message: "an account with this email already exists",
		}})
	case errors.Is(err, model.ErrTokenInvalid),
		errors.Is(err, model.ErrTokenRevoked),
		errors.Is(err, model.ErrTokenExpired),
		errors.Is(err, model.ErrUserIntegrity):
		writeJSON(w, http.StatusUnauthorized, response{Error: &errorResponse{
			Code: "INVALID_REFRESH_TOKEN", Message: "refresh token is not valid",
		}})
	case errors.Is(err, model.ErrResetTokenInvalid):
		writeJSON(w, http.StatusBadRequest, response{Error: &errorResponse{
			Code: "INVALID_RESET_TOKEN", Message: "reset token is not valid",
		}})
	case errors.Is(err, model.ErrResetTokenExpired):
		writeJSON(w, http.StatusBadRequest, response{Error: &errorResponse{
			Code: "RESET_TOKEN_EXPIRED", Message: "reset token has expired",
		}})
	case errors.Is(err, model.ErrNotFound):
		writeJSON(w, http.StatusNotFound, response{Error: &errorResponse{
			Code: "NOT_FOUND", Message: "resource not found",
		}})
	default:
		writeJSON(w, http.StatusInternalServerError, response{Error: &errorResponse{
			Code: "INTERNAL_ERROR", Message: "an internal error occurred",
		}})
	}
}

var validatorInstance = playground.New(playground.WithRequiredStructEnabled())

func validate(s any) error {
	return validatorInstance.Struct(s)
}

func writeValidationError(w http.ResponseWriter, err error) {
	var validationErrors playground.ValidationErrors
	if errors.As(err, &validationErrors) {
		fields := make(map[string]string, len(validationErrors))
		for _, fe := range validationErrors {
			fields[strings.ToLower(fe.Field())] = msgForTag(fe)
		}
		writeJSON(w, http.StatusBadRequest, response{Error: &errorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "request validation failed",
			Fields:  fields,
		}})
		return
	}

	writeJSON(w, http.StatusBadRequest, response{Error: &errorResponse{
		Code: "INVALID_INPUT", Message: err.Error(),
	}})
}

func msgForTag(fe playground.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	default:
		return "is invalid"
	}
}
