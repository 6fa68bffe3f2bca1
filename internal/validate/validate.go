package validate

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"cafestock/internal/domain"
)

var (
	reUsername = regexp.MustCompile(`^[A-Za-z0-9._-]{1,50}$`)
	// NUMERIC(10,2)
	maxPrice = decimal.New(1, 8)
)

var v = validator.New()

func init() {
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return reUsername.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("price", func(fl validator.FieldLevel) bool {
		_, ok := Price(fl.Field().String())
		return ok
	})
}

type FieldError struct {
	Field string
	Tag   string
}

// Struct validates the tagged fields of a form. Values are trimmed by the caller.
func Struct(form any) []FieldError {
	err := v.Struct(form)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Field: "form", Tag: err.Error()}}
	}
	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: strings.ToLower(fe.Field()), Tag: fe.Tag()})
	}
	return out
}

// Err folds field errors into ErrMissingField when a required field is blank
// and ErrInvalidInput otherwise.
func Err(errs []FieldError) error {
	if len(errs) == 0 {
		return nil
	}
	names := make([]string, 0, len(errs))
	missing := false
	for _, e := range errs {
		names = append(names, e.Field)
		if e.Tag == "required" {
			missing = true
		}
	}
	if missing {
		return fmt.Errorf("%w: %s", domain.ErrMissingField, strings.Join(names, ", "))
	}
	return fmt.Errorf("%w: %s", domain.ErrInvalidInput, strings.Join(names, ", "))
}

// Fields lists the field names, for log lines.
func Fields(errs []FieldError) []string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Field)
	}
	return out
}

// ID parses a positive numeric resource identifier.
func ID(s string) (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// Qty parses a non-negative quantity.
func Qty(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// Price parses a non-negative amount with at most two decimal places.
func Price(s string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil || d.IsNegative() || d.GreaterThanOrEqual(maxPrice) {
		return decimal.Decimal{}, false
	}
	if !d.Equal(d.Round(2)) {
		return decimal.Decimal{}, false
	}
	return d, true
}
