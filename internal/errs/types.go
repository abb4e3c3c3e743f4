package errs

type ErrorMessage struct {
	Message string
}

func (e *ErrorMessage) Error() string { return e.Message }

type NotFoundError struct {
	ErrorMessage
}

type AlreadyExistsError struct {
	ErrorMessage
}

type ValidationError struct {
	ErrorMessage
}

type DatabaseError struct {
	ErrorMessage
	Operation string
}

// ExternalServiceError covers transport-level failures talking to a data
// provider: fetch errors and non-2xx statuses. Transient errors are retryable.
type ExternalServiceError struct {
	ErrorMessage
	Service   string
	Transient bool
}

// ProviderError is an in-band provider error: a 2xx response whose body
// carries the provider's own error or rate-limit message.
type ProviderError struct {
	ErrorMessage
	Provider string
}

// CredentialNotFoundError means a provider-specific widget references a
// credential that does not resolve to a key of the right provider. No
// network call was attempted.
type CredentialNotFoundError struct {
	ErrorMessage
}

type ParseError struct {
	ErrorMessage
}

// NotSupportedError means a widget requested a capability its provider
// adapter does not implement.
type NotSupportedError struct {
	ErrorMessage
}

type EncryptionError struct {
	ErrorMessage
}

func NewNotFoundError(message string) *NotFoundError {
	return &NotFoundError{
		ErrorMessage: ErrorMessage{Message: message},
	}
}

func NewAlreadyExistsError(message string) *AlreadyExistsError {
	return &AlreadyExistsError{
		ErrorMessage: ErrorMessage{Message: message},
	}
}

func NewValidationError(message string) *ValidationError {
	return &ValidationError{
		ErrorMessage: ErrorMessage{Message: message},
	}
}

func NewDatabaseError(operation, message string, err error) *DatabaseError {
	if err != nil {
		message = message + ": " + err.Error()
	}
	return &DatabaseError{
		ErrorMessage: ErrorMessage{Message: message},
		Operation:    operation,
	}
}

func NewExternalServiceError(service, message string, transient bool) *ExternalServiceError {
	return &ExternalServiceError{
		ErrorMessage: ErrorMessage{Message: message},
		Service:      service,
		Transient:    transient,
	}
}

func NewProviderError(provider, message string) *ProviderError {
	return &ProviderError{
		ErrorMessage: ErrorMessage{Message: message},
		Provider:     provider,
	}
}

func NewCredentialNotFoundError(message string) *CredentialNotFoundError {
	return &CredentialNotFoundError{
		ErrorMessage: ErrorMessage{Message: message},
	}
}

func NewParseError(message string) *ParseError {
	return &ParseError{
		ErrorMessage: ErrorMessage{Message: message},
	}
}

func NewNotSupportedError(message string) *NotSupportedError {
	return &NotSupportedError{
		ErrorMessage: ErrorMessage{Message: message},
	}
}

func NewEncryptionError(message string) *EncryptionError {
	return &EncryptionError{
		ErrorMessage: ErrorMessage{Message: message},
	}
}
