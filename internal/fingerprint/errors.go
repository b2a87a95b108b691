package fingerprint

// MissingFieldError reports a required header field that was not supplied.
// The generator never substitutes a default for a missing field.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return "fingerprint: missing required header field: " + e.Field
}
