package reporter

// InputError carries a client-facing validation message and matches
// ErrInvalidInput under errors.Is.
type InputError struct {
	Message string
}

// InvalidInput builds an InputError with msg.
func InvalidInput(msg string) error {
	return &InputError{Message: msg}
}

func (e *InputError) Error() string {
	return e.Message
}

// Is matches ErrInvalidInput.
func (e *InputError) Is(target error) bool {
	return target == ErrInvalidInput
}
