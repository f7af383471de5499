package domain

import (
	"errors"
)

// Ошибки уровня репозитория.
var (
	ErrRecordNotFound    = errors.New("record not found")
	ErrPasswordMissMatch = errors.New("password mismatch")
	ErrDuplicateKey      = errors.New("duplicate key")
	ErrUnknown           = errors.New("unknown error")
)

// Виды ошибок сервисного слоя. Конкретные ошибки (*ReasonError) оборачивают один из них.
var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrInvalidState    = errors.New("invalid state")
	ErrStorage         = errors.New("storage error")
	ErrForbidden       = errors.New("forbidden")
)

var (
	ErrMerchantNotFound   = NewReasonError(ErrNotFound, "merchant not found")
	ErrNoPointsOnRecord   = NewReasonError(ErrInvalidState, "no points on record with this merchant")
	ErrInsufficientPoints = NewReasonError(ErrInvalidArgument, "insufficient points")
	ErrAmountUnderflow    = NewReasonError(ErrInvalidArgument, "amount is less than points used")
	ErrAmountOverflow     = NewReasonError(ErrInvalidArgument, "amount is out of range")
	ErrNotMerchantOwner   = NewReasonError(ErrForbidden, "merchant does not belong to you")

	ErrUserNotFound        = NewReasonError(ErrNotFound, "user not found")
	ErrTransactionNotFound = NewReasonError(ErrNotFound, "transaction not found")
	ErrBalanceNotFound     = NewReasonError(ErrNotFound, "no points on record with this merchant")
	ErrEmailTaken          = NewReasonError(ErrInvalidState, "user with this email already exists")
	ErrInvalidRole         = NewReasonError(ErrInvalidArgument, "unknown role")
	ErrWrongPassword       = NewReasonError(ErrForbidden, "old password is incorrect")
	ErrPageOutOfRange      = NewReasonError(ErrInvalidArgument, "page is out of range")
)

// ReasonError ошибка с понятной человеку причиной. Kind - один из видов ошибок (ErrNotFound, ErrInvalidArgument,
// ErrInvalidState, ErrStorage, ErrForbidden), Err - исходная ошибка, если есть.
type ReasonError struct {
	Kind   error
	Reason string
	Err    error
}

func NewReasonError(kind error, reason string) *ReasonError {
	return &ReasonError{Kind: kind, Reason: reason}
}

// NewStorageError оборачивает ошибку хранилища. Если err уже является *ReasonError, он возвращается как есть.
func NewStorageError(reason string, err error) error {
	var reasonErr *ReasonError
	if errors.As(err, &reasonErr) {
		return err
	}
	return &ReasonError{Kind: ErrStorage, Reason: reason, Err: err}
}

func (e *ReasonError) Error() string {
	if e.Err != nil {
		return e.Reason + ": " + e.Err.Error()
	}
	return e.Reason
}

// Unwrap позволяет проверять через errors.Is как вид ошибки, так и исходную ошибку.
func (e *ReasonError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
