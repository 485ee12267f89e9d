package config

import (
	"encoding/json"

	"go.uber.org/zap/zapcore"
)

const redacted = "[REDACTED]"

// Secret holds a credential.  Every printing path (fmt verbs, JSON, text,
// and zap fields) yields a placeholder.  Call Expose at the single point
// where the raw value is handed to a driver.
type Secret string

// Expose returns the raw value.
func (s Secret) Expose() string { return string(s) }

// IsZero reports whether no value was configured.
func (s Secret) IsZero() bool { return s == "" }

func (s Secret) String() string { return redacted }
func (s Secret) GoString() string { return redacted }

func (s Secret) MarshalText() ([]byte, error) { return []byte(redacted), nil }

func (s Secret) MarshalJSON() ([]byte, error) { return json.Marshal(redacted) }

// UnmarshalText accepts the raw value so koanf's decode hook can fill it.
func (s *Secret) UnmarshalText(b []byte) error {
	*s = Secret(b)
	return nil
}

// MarshalLogObject keeps zap.Any / zap.Object from dumping the value.
func (s Secret) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("value", redacted)
	return nil
}
