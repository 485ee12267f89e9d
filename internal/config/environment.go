package config

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedEnvironment is returned by ParseEnvironment for names
// outside the closed set below.
var ErrUnsupportedEnvironment = errors.New("unsupported environment")

// Environment selects the overlay file loaded on top of base.yaml.
type Environment int

const (
	Local Environment = iota
	Production
)

// DefaultEnvironment applies when APP_ENVIRONMENT is unset.
const DefaultEnvironment = Local

func (e Environment) String() string {
	switch e {
	case Local:
		return "local"
	case Production:
		return "production"
	default:
		return fmt.Sprintf("environment(%d)", int(e))
	}
}

// ParseEnvironment maps a case-insensitive name to an Environment.
func ParseEnvironment(s string) (Environment, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "local":
		return Local, nil
	case "production":
		return Production, nil
	default:
		return 0, fmt.Errorf("%w: %q, use 'local' or 'production'", ErrUnsupportedEnvironment, s)
	}
}
