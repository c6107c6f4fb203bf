package errors

// ValidationError is a specialized error type for caller-side problems:
// configuration that fails its constraints, a transaction naming no tree or
// the same tree twice, or a transaction indexing a tree it never named.
type ValidationError struct {
	*coreError
	field    string // Which field or argument failed validation.
	rule     string // The rule that was violated ("required", "range", ...).
	provided any    // The value the caller actually supplied.
}

// NewValidationError creates a new validation-specific error.
func NewValidationError(err error, code ErrorCode, msg string) *ValidationError {
	return &ValidationError{coreError: newCoreError(code, msg, err)}
}

// WithField records which field or argument failed.
func (ve *ValidationError) WithField(field string) *ValidationError {
	ve.field = field
	return ve
}

// WithRule records the rule that was violated.
func (ve *ValidationError) WithRule(rule string) *ValidationError {
	ve.rule = rule
	return ve
}

// WithProvided captures the offending value for diagnostics.
func (ve *ValidationError) WithProvided(value any) *ValidationError {
	ve.provided = value
	return ve
}

// Field returns the field or argument that failed validation.
func (ve *ValidationError) Field() string {
	return ve.field
}

// Rule returns the rule that was violated.
func (ve *ValidationError) Rule() string {
	return ve.rule
}

// Provided returns the value the caller supplied.
func (ve *ValidationError) Provided() any {
	return ve.provided
}

// NewRequiredFieldError builds the common "required field missing" validation error.
func NewRequiredFieldError(fieldName string) *ValidationError {
	return NewValidationError(nil, ErrorCodeInvalidInput, "Required field is missing").
		WithField(fieldName).
		WithRule("required")
}
