package models

const (
	ReasonNoLink = "no_link"
	ReasonNoRole = "no_role"
)

// ValidationResult is the answer given to a gameserver. Reason is only set
// when Valid is false.
type ValidationResult struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

func Allowed() ValidationResult {
	return ValidationResult{Valid: true}
}

func Denied(reason string) ValidationResult {
	return ValidationResult{Valid: false, Reason: reason}
}
