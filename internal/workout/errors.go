package workout

import (
	"fmt"
	"strings"
)

type Reason string

const (
	ReasonMissing     Reason = "missing"
	ReasonNonFinite   Reason = "non-finite"
	ReasonNonPositive Reason = "non-positive"
	ReasonOutOfRange  Reason = "out-of-range"
	ReasonUnsupported Reason = "unsupported"
)

type FieldError struct {
	Field  string `json:"field"`
	Reason Reason `json:"reason"`
}

func (f FieldError) String() string {
	switch f.Reason {
	case ReasonMissing:
		return f.Field + " is required"
	case ReasonNonFinite:
		return f.Field + " must be a finite number"
	case ReasonNonPositive:
		return f.Field + " must be a positive number"
	case ReasonOutOfRange:
		return f.Field + " is out of range"
	case ReasonUnsupported:
		return f.Field + " is not supported"
	}
	return fmt.Sprintf("%s is invalid (%s)", f.Field, f.Reason)
}

// InvalidInputError lists every form field that failed validation.
type InvalidInputError struct {
	Fields []FieldError
}

func (e *InvalidInputError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.String())
	}
	return "invalid input: " + strings.Join(msgs, "; ")
}

// Reason reports why field failed, if it did.
func (e *InvalidInputError) Reason(field string) (Reason, bool) {
	for _, f := range e.Fields {
		if f.Field == field {
			return f.Reason, true
		}
	}
	return "", false
}
