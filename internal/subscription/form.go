package subscription

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidForm wraps every decode failure.  A field given twice is
// rejected rather than resolved to one of its values.
var ErrInvalidForm = errors.New("invalid subscription form")

var validate = validator.New()

// Form is the expected body shape.  Presence and non-emptiness are the
// only checks; email syntax is deliberately not validated.
type Form struct {
	Name  string `validate:"required"`
	Email string `validate:"required"`
}

// DecodeForm reads a form-encoded body from r.
func DecodeForm(r *http.Request) (Form, error) {
	if err := r.ParseForm(); err != nil {
		return Form{}, fmt.Errorf("%w: %w", ErrInvalidForm, err)
	}

	for _, field := range []string{"name", "email"} {
		if n := len(r.PostForm[field]); n > 1 {
			return Form{}, fmt.Errorf("%w: %q given %d times", ErrInvalidForm, field, n)
		}
	}

	f := Form{
		Name:  r.PostForm.Get("name"),
		Email: r.PostForm.Get("email"),
	}
	if err := validate.Struct(f); err != nil {
		return Form{}, fmt.Errorf("%w: %w", ErrInvalidForm, err)
	}
	return f, nil
}
