package ledger

import "fmt"

// ErrorKind identifies one validation failure class. The set is fixed so
// callers (form handlers, CSV import) can map an error to a specific field
// instead of showing a generic message.
type ErrorKind string

const (
	KindMissingRequiredField     ErrorKind = "missing_required_field"
	KindFieldNotAllowed          ErrorKind = "field_not_allowed"
	KindInvalidAmount            ErrorKind = "invalid_amount"
	KindSameAccountTransfer      ErrorKind = "same_account_transfer"
	KindCategoryTypeMismatch     ErrorKind = "category_type_mismatch"
	KindReferentialDeleteBlocked ErrorKind = "referential_delete_blocked"
)

// ValidationError carries the failure kind and, when relevant, the field it
// concerns (JSON field name, e.g. "category_id").
type ValidationError struct {
	Kind  ErrorKind `json:"kind"`
	Field string    `json:"field,omitempty"`
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Field)
	}
	return string(e.Kind)
}

func missing(field string) *ValidationError {
	return &ValidationError{Kind: KindMissingRequiredField, Field: field}
}

func notAllowed(field string) *ValidationError {
	return &ValidationError{Kind: KindFieldNotAllowed, Field: field}
}
