// internal/config/loader.go
//
// Layered configuration loader.
//
/*
Context
--------
`Load()` builds one immutable `Settings` struct from these layers (highest
precedence last):

  1. `configuration/base.yaml`.
  2. `configuration/<environment>.yaml`, where the environment comes from
     `APP_ENVIRONMENT` and defaults to `local`.
  3. Optional `configuration/.env`.  It is read, never exported into the
     process environment.
  4. Environment variables prefixed `APP_`, where `__` maps to “.”
     (e.g., `APP_DATABASE__PORT → database.port`).

The environment name is parsed before any YAML is opened, so a typo in
`APP_ENVIRONMENT` fails fast.  After merging, `vault:` references are
resolved, the tree is unmarshalled into strongly-typed structs, and the
result is validated.

Instrumentation
---------------
  • DEBUG spans: directory discovery, YAML reads, env overlay.
  • ERROR spans: every failure path.
  • INFO  span:  final “config loaded” with key highlights (no secrets).
  • Logs use the global *sugared* logger (`zap.S()`) so early boot issues
    surface even before the file logger is installed.
*/
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

const (
	envPrefix      = "APP_"
	envSeparator   = "__"
	envEnvironment = "APP_ENVIRONMENT"
	envConfigDir   = "APP_CONFIG_DIR"

	dirName  = "configuration"
	baseFile = "base.yaml"
	dotEnv   = ".env"
)

// ErrConfig wraps every failure returned by Load and LoadFrom.
var ErrConfig = errors.New("config")

/*──────────────────────────── dir discovery ────────────────────────────────*/

// configDir resolves APP_CONFIG_DIR or climbs directories until
// configuration/base.yaml is found.  Falls back to ./configuration.
func configDir() string {
	if d := os.Getenv(envConfigDir); d != "" {
		return d
	}

	wd, _ := os.Getwd()
	dir := wd
	for {
		candidate := filepath.Join(dir, dirName)
		if _, err := os.Stat(filepath.Join(candidate, baseFile)); err == nil {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir { // reached filesystem root
			break
		}
		dir = parent
	}
	return filepath.Join(wd, dirName)
}

/*─────────────────────────────── loader ───────────────────────────────────*/

// Load resolves Settings from the discovered configuration directory.
func Load(ctx context.Context) (*Settings, error) {
	return LoadFrom(ctx, configDir(), nil)
}

// LoadFrom resolves Settings from dir.  secrets resolves `vault:`
// references; when nil a Vault client is created on first need.
func LoadFrom(ctx context.Context, dir string, secrets SecretResolver) (*Settings, error) {
	zap.S().Debugw("config dir resolved", "dir", dir)

	dot, err := readDotEnv(filepath.Join(dir, dotEnv))
	if err != nil {
		zap.S().Errorw("config .env read failed", "err", err)
		return nil, fmt.Errorf("%w: read .env: %w", ErrConfig, err)
	}

	envName, ok := os.LookupEnv(envEnvironment)
	if !ok {
		envName, ok = dot[envEnvironment]
	}
	environment := DefaultEnvironment
	if ok {
		if environment, err = ParseEnvironment(envName); err != nil {
			zap.S().Errorw("config environment parse failed", "err", err)
			return nil, fmt.Errorf("%w: %s: %w", ErrConfig, envEnvironment, err)
		}
	}

	k := koanf.New(".")

	for _, name := range []string{baseFile, environment.String() + ".yaml"} {
		path := filepath.Join(dir, name)
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			zap.S().Errorw("config yaml load failed", "file", path, "err", err)
			return nil, fmt.Errorf("%w: load %s: %w", ErrConfig, name, err)
		}
		zap.S().Debugw("config yaml loaded", "file", path)
	}

	// .env entries sit below the real process environment.
	for key, val := range dot {
		if path := envKey(key); path != "" {
			if err := k.Set(path, val); err != nil {
				return nil, fmt.Errorf("%w: .env %s: %w", ErrConfig, key, err)
			}
		}
	}

	// Env overrides: APP_DATABASE__PORT → database.port
	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		zap.S().Errorw("config env overlay failed", "err", err)
		return nil, fmt.Errorf("%w: env overlay: %w", ErrConfig, err)
	}

	if err := resolveSecrets(ctx, k, secrets); err != nil {
		zap.S().Errorw("config secret resolution failed", "err", err)
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}

	var s Settings
	if err := k.UnmarshalWithConf("", &s, koanf.UnmarshalConf{DecoderConfig: decoderConfig(&s)}); err != nil {
		zap.S().Errorw("config unmarshal failed", "err", err)
		return nil, fmt.Errorf("%w: unmarshal: %w", ErrConfig, err)
	}
	s.Environment = environment

	if err := validateStruct(&s); err != nil {
		zap.S().Errorw("config validation failed", "err", err)
		return nil, fmt.Errorf("%w: validate: %w", ErrConfig, err)
	}

	zap.S().Infow("config loaded",
		"environment", s.Environment.String(),
		"listen", fmt.Sprintf("%s:%d", s.Application.Host, s.Application.Port),
		"db_driver", s.Database.Driver,
		"db_host", s.Database.Host,
		"db_name", s.Database.DatabaseName,
		"require_ssl", s.Database.RequireSSL,
	)
	return &s, nil
}

/*──────────────────────────── helpers ─────────────────────────────────────*/

// envKey maps APP_SECTION__FIELD to section.field.  Selector variables and
// anything without the prefix map to "", which koanf skips.
func envKey(s string) string {
	if !strings.HasPrefix(s, envPrefix) || s == envEnvironment || s == envConfigDir {
		return ""
	}
	s = strings.TrimPrefix(s, envPrefix)
	return strings.ToLower(strings.ReplaceAll(s, envSeparator, "."))
}

// readDotEnv returns the .env entries, or an empty map when the file is
// absent.
func readDotEnv(path string) (map[string]string, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	return godotenv.Read(path)
}
