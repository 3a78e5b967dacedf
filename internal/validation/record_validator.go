package validation

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"tripreport/pkg/contracts/domain"
)

// RecordValidator checks projected trips for required values. A value
// made only of whitespace counts as missing.
type RecordValidator struct {
	validate *validator.Validate
}

// NewRecordValidator creates a validator for domain.Trip
func NewRecordValidator() *RecordValidator {
	v := validator.New()
	_ = v.RegisterValidation("notblank", notBlank)
	return &RecordValidator{validate: v}
}

// notBlank rejects strings made only of whitespace.
func notBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// MissingFields returns the column names of the required fields trip
// lacks, or nil when the trip is complete.
func (r *RecordValidator) MissingFields(trip domain.Trip) []string {
	err := r.validate.Struct(trip)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []string{err.Error()}
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fieldName(fe.StructField()))
	}
	return fields
}

func fieldName(structField string) string {
	switch structField {
	case "RideID":
		return domain.ColRideID
	case "StartedAt":
		return domain.ColStartedAt
	case "EndedAt":
		return domain.ColEndedAt
	case "MemberCasual":
		return domain.ColMemberCasual
	default:
		return structField
	}
}
