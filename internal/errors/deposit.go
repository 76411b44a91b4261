package errors

var (
	ErrMerchantNotFound = &DomainError{
		Code:    CodeNotFound,
		Message: "merchant not found",
	}
	ErrApplicationNotFound = &DomainError{
		Code:    CodeNotFound,
		Message: "application not found",
	}
	ErrPendingApplicationExists = &DomainError{
		Code:    CodeConflictingPending,
		Message: "a pending application of this kind already exists",
	}
	ErrStaleApplication = &DomainError{
		Code:    CodeInvalidTransition,
		Message: "application is no longer pending",
	}
)
