package domain

import "fmt"

// AppError is the base domain error type.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Cause   error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Cause }

// Standard domain error constructors.

func ErrNotFound(entity, id string) *AppError {
	return &AppError{Code: "NOT_FOUND", Message: fmt.Sprintf("%s %s not found", entity, id), Status: 404}
}

func ErrValidation(msg string) *AppError {
	return &AppError{Code: "VALIDATION_ERROR", Message: msg, Status: 400}
}

func ErrUnauthorized(msg string) *AppError {
	return &AppError{Code: "UNAUTHORIZED", Message: msg, Status: 401}
}

func ErrForbidden(msg string) *AppError {
	return &AppError{Code: "FORBIDDEN", Message: msg, Status: 403}
}

func ErrSessionNotActive(id string) *AppError {
	return &AppError{Code: "SESSION_NOT_ACTIVE", Message: fmt.Sprintf("game session %s is not active", id), Status: 409}
}

func ErrSessionStillActive(id string) *AppError {
	return &AppError{Code: "SESSION_STILL_ACTIVE", Message: fmt.Sprintf("game session %s is still active", id), Status: 409}
}

func ErrPlayerNotInSession(userID string) *AppError {
	return &AppError{Code: "PLAYER_NOT_IN_SESSION", Message: fmt.Sprintf("player %s is not part of this session", userID), Status: 404}
}

func ErrPlayerAlreadyInSession(userID string) *AppError {
	return &AppError{Code: "PLAYER_ALREADY_IN_SESSION", Message: fmt.Sprintf("player %s already joined this session", userID), Status: 409}
}

// ErrExceedsPot rejects a single cash-out larger than the chips left on the table.
func ErrExceedsPot(amount, remaining int64) *AppError {
	return &AppError{
		Code:    "EXCEEDS_POT",
		Message: fmt.Sprintf("cash-out of %d chips exceeds the %d chips remaining in the pot", amount, remaining),
		Status:  400,
	}
}

// ErrPotOverdrawn rejects an end-of-game cash-out total above the pot.
func ErrPotOverdrawn(total, pot int64) *AppError {
	return &AppError{
		Code:    "POT_OVERDRAWN",
		Message: fmt.Sprintf("total cash-out of %d chips exceeds the pot of %d chips", total, pot),
		Status:  400,
	}
}

// ErrIncompleteCashOut names the players still missing a cash-out value.
func ErrIncompleteCashOut(userIDs []string) *AppError {
	return &AppError{
		Code:    "INCOMPLETE_CASHOUT",
		Message: fmt.Sprintf("players without a recorded cash-out: %v", userIDs),
		Status:  409,
	}
}

// ErrUnbalancedSettlement rejects balances whose positive slack exceeds the
// settlement tolerance (more cashed out than bought in).
func ErrUnbalancedSettlement(slack float64) *AppError {
	return &AppError{
		Code:    "UNBALANCED_SETTLEMENT",
		Message: fmt.Sprintf("settlement balances exceed the pot by %.2f currency units", slack),
		Status:  409,
	}
}

func ErrInvariantViolation(msg string) *AppError {
	return &AppError{Code: "INVARIANT_VIOLATION", Message: msg, Status: 500}
}

// ErrConcurrencyConflict signals an optimistic-lock failure; the caller should
// retry against a freshly loaded aggregate.
func ErrConcurrencyConflict(id string) *AppError {
	return &AppError{Code: "CONCURRENCY_CONFLICT", Message: fmt.Sprintf("game session %s was modified concurrently", id), Status: 409}
}

func ErrInternal(msg string, cause error) *AppError {
	return &AppError{Code: "INTERNAL_ERROR", Message: msg, Status: 500, Cause: cause}
}
