package validation

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/benvon/mindful-harmony/internal/models"
	"github.com/go-playground/validator/v10"
)

// MaxMoodLabelLength bounds mood labels accepted from clients and catalogs.
const MaxMoodLabelLength = 64

var (
	// Validate is a shared validator instance
	Validate *validator.Validate
)

func init() {
	Validate = validator.New()

	if err := Validate.RegisterValidation("energy", validateEnergy); err != nil {
		panic(fmt.Sprintf("failed to register energy validator: %v", err))
	}
	if err := Validate.RegisterValidation("risk", validateRisk); err != nil {
		panic(fmt.Sprintf("failed to register risk validator: %v", err))
	}
	if err := Validate.RegisterValidation("mood_label", validateMoodLabel); err != nil {
		panic(fmt.Sprintf("failed to register mood_label validator: %v", err))
	}
}

func validateEnergy(fl validator.FieldLevel) bool {
	return ValidateEnergy(fl.Field().String()) == nil
}

func validateRisk(fl validator.FieldLevel) bool {
	_, ok := models.ParseRisk(fl.Field().String())
	return ok
}

func validateMoodLabel(fl validator.FieldLevel) bool {
	v := strings.TrimSpace(fl.Field().String())
	return v != "" && utf8.RuneCountInString(v) <= MaxMoodLabelLength
}

// ValidateEnergy checks that value is one of low, med or high.
func ValidateEnergy(value string) error {
	switch models.Energy(value) {
	case models.EnergyLow, models.EnergyMed, models.EnergyHigh:
		return nil
	default:
		return fmt.Errorf("invalid energy: %q (must be 'low', 'med', or 'high')", value)
	}
}

// ValidEmail reports whether s parses as a bare address.
func ValidEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s && strings.Contains(s, ".")
}

// SanitizeText trims whitespace and removes control characters other than newline and tab.
func SanitizeText(text string) string {
	text = strings.TrimSpace(text)

	var sanitized strings.Builder
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sanitized.WriteRune(r)
	}

	return sanitized.String()
}

// FirstError renders the first field error of a validator failure as a
// short client-facing message.
func FirstError(err error) string {
	var verrs validator.ValidationErrors
	if ok := asValidationErrors(err, &verrs); !ok || len(verrs) == 0 {
		return err.Error()
	}
	fe := verrs[0]
	field := toSnake(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

func asValidationErrors(err error, target *validator.ValidationErrors) bool {
	v, ok := err.(validator.ValidationErrors)
	if ok {
		*target = v
	}
	return ok
}

func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}
