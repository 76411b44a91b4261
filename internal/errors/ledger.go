package errors

var (
	ErrInsufficientBalance = &DomainError{
		Code:    CodeInsufficientFunds,
		Message: "insufficient points balance",
	}
	ErrInvalidAmount = &DomainError{
		Code:    CodeValidation,
		Message: "invalid amount",
	}
	ErrInvalidTransactionType = &DomainError{
		Code:    CodeValidation,
		Message: "unrecognized transaction type",
	}
	ErrAccountNotFound = &DomainError{
		Code:    CodeNotFound,
		Message: "points account not found",
	}
	ErrUnauthorized = &DomainError{
		Code:    CodeUnauthorized,
		Message: "caller lacks the required role",
	}
)
