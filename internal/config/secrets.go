package config

import (
	"context"
	"fmt"
	"strings"

	koanf "github.com/knadh/koanf/v2"
	"go.uber.org/zap"

	"github.com/sangkhuudev/newsletter/internal/vault"
)

// vaultPrefix marks a value as a Vault reference, e.g.
// `vault:secret/newsletter/db#password`.
const vaultPrefix = "vault:"

// SecretResolver fetches one key of a KV-v2 secret.  *vault.Client
// satisfies it.
type SecretResolver interface {
	GetKV(ctx context.Context, secretPath, key string) (string, error)
}

// resolveSecrets replaces every `vault:` string in k with the value it
// points at.  No client is built when the tree holds no references.
func resolveSecrets(ctx context.Context, k *koanf.Koanf, r SecretResolver) error {
	for path, raw := range k.All() {
		ref, ok := raw.(string)
		if !ok || !strings.HasPrefix(ref, vaultPrefix) {
			continue
		}

		secretPath, key, ok := strings.Cut(strings.TrimPrefix(ref, vaultPrefix), "#")
		if !ok || secretPath == "" || key == "" {
			return fmt.Errorf("%s: malformed vault reference, want vault:<path>#<key>", path)
		}

		if r == nil {
			cli, err := vault.New(ctx, zap.S().Infof)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			r = cli
		}

		val, err := r.GetKV(ctx, secretPath, key)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if err := k.Set(path, val); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		zap.S().Debugw("config secret resolved", "key", path)
	}
	return nil
}
