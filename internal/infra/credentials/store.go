// Package credentials resolves decrypted provider API keys per caller. The
// orchestrator only sees the resolver contract; encryption at rest and key
// management UI live elsewhere.
package credentials

import (
	"context"
	"fmt"
	"strings"

	"github.com/AndresestradaR/estrategas-landing-generator-sub001/internal/infra"
	"github.com/AndresestradaR/estrategas-landing-generator-sub001/internal/providers"
)

const (
	qSelectProviderKey = `SELECT secret FROM provider_credentials WHERE provider = $1 AND owner_id = $2`
	qUpsertProviderKey = `INSERT INTO provider_credentials (provider, owner_id, secret)
VALUES ($1, $2, $3)
ON CONFLICT (provider, owner_id) DO UPDATE SET secret = EXCLUDED.secret, updated_at = now()`
)

// Store resolves per-caller provider keys from the database.
type Store struct {
	sql infra.SQLExecutor
}

// NewStore wires a credential store over a SQL executor.
func NewStore(sql infra.SQLExecutor) *Store {
	return &Store{sql: sql}
}

// Resolve fetches the decrypted secret for one provider and caller. A missing
// row is the first-class absence case, not an error.
func (s *Store) Resolve(ctx context.Context, kind providers.Kind, callerID string) (providers.Credential, bool, error) {
	owner := strings.TrimSpace(callerID)
	if owner == "" {
		owner = "default"
	}
	row := s.sql.QueryRow(ctx, qSelectProviderKey, string(kind), owner)
	var secret string
	if err := row.Scan(&secret); err != nil {
		if infra.IsNoRows(err) {
			return providers.Credential{}, false, nil
		}
		return providers.Credential{}, false, fmt.Errorf("credentials: lookup %s: %w", kind, err)
	}
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return providers.Credential{}, false, nil
	}
	return providers.Credential{Secret: secret}, true, nil
}

// Set stores or replaces a caller's key for a provider.
func (s *Store) Set(ctx context.Context, kind providers.Kind, callerID, secret string) error {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return fmt.Errorf("credentials: %s key is required", kind)
	}
	owner := strings.TrimSpace(callerID)
	if owner == "" {
		owner = "default"
	}
	_, err := s.sql.Exec(ctx, qUpsertProviderKey, string(kind), owner, secret)
	if err != nil {
		return fmt.Errorf("credentials: store %s: %w", kind, err)
	}
	return nil
}
