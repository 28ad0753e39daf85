package credentials

import (
	"context"
	"strings"

	"github.com/AndresestradaR/estrategas-landing-generator-sub001/internal/providers"
)

// Static serves fixed keys regardless of caller, for single-tenant deploys
// seeded from env config and for tests.
type Static struct {
	secrets map[providers.Kind]string
}

// NewStatic copies the given secret map; empty values are ignored.
func NewStatic(secrets map[providers.Kind]string) *Static {
	copied := make(map[providers.Kind]string, len(secrets))
	for kind, secret := range secrets {
		if s := strings.TrimSpace(secret); s != "" {
			copied[kind] = s
		}
	}
	return &Static{secrets: copied}
}

// Resolve returns the configured key for the provider, ignoring the caller.
func (s *Static) Resolve(ctx context.Context, kind providers.Kind, callerID string) (providers.Credential, bool, error) {
	secret, ok := s.secrets[kind]
	if !ok {
		return providers.Credential{}, false, nil
	}
	return providers.Credential{Secret: secret}, true, nil
}
