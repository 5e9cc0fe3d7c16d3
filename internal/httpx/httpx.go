// Package httpx holds the JSON request and response plumbing shared by
// the HTTP handlers.
package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"worklog-auth/internal/domain"
)

const MaxBodyBytes = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// WriteJSON writes body with the given status. A nil body writes headers only.
func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

// Bind decodes a JSON body into dst and validates its struct tags. Every
// failure wraps domain.ErrInvalidRequest.
func Bind(w http.ResponseWriter, r *http.Request, dst any) error {
	if err := Decode(w, r, dst); err != nil {
		return err
	}
	return Validate(dst)
}

// Decode reads a JSON body without validating it. An empty body leaves dst
// untouched.
func Decode(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%w: malformed json body", domain.ErrInvalidRequest)
	}
	return nil
}

func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Errorf("%w: %s is %s", domain.ErrInvalidRequest, fe.Field(), describe(fe))
	}
	return fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "email":
		return "not a valid email address"
	case "min":
		return "shorter than " + fe.Param() + " characters"
	case "max":
		return "longer than " + fe.Param() + " characters"
	default:
		return "invalid"
	}
}
