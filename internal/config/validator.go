// internal/config/validator.go
//
// Thin wrapper around go-playground/validator.
//
// Context
// -------
// `LoadFrom` calls `validateStruct` immediately after it unmarshals the
// merged Koanf tree.  Any validation error aborts startup, so the binary
// never runs with partial or malformed configuration.

package config

import "github.com/go-playground/validator/v10"

var v = validator.New()

// validateStruct returns the validation errors for s, or nil on success.
func validateStruct(s *Settings) error {
	return v.Struct(s)
}
