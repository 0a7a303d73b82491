package credentials

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	dbgen "github.com/chino-hash/turnero-padel/internal/db/generated"
)

// Source identifies where a resolved credential set came from.
type Source string

const (
	SourceTenant  Source = "tenant"
	SourceDefault Source = "default"
	SourceNone    Source = "none"
)

// Credentials is the decrypted secret material for payment-provider calls
// and webhook validation. Each field is independently optional.
type Credentials struct {
	AccessToken   string
	PublicKey     string
	WebhookSecret string
	Source        Source
}

func (c Credentials) Empty() bool {
	return c.AccessToken == "" && c.PublicKey == "" && c.WebhookSecret == ""
}

// Vault resolves tenant credentials through an ordered list of strategies:
// the tenant's own encrypted fields first, then the process-wide defaults.
// A failed decrypt is treated as "credential absent" and logged, never as a
// fatal error for the caller.
type Vault struct {
	queries   *dbgen.Queries
	key       *[keySize]byte
	defaults  Credentials
	resolvers []resolver
}

type resolver func(ctx context.Context, tenantID int64) (Credentials, bool, error)

// NewVault builds a vault over the given query layer. defaults holds the
// environment-level credentials used when a tenant has none of its own.
func NewVault(queries *dbgen.Queries, key *[keySize]byte, defaults Credentials) *Vault {
	defaults.Source = SourceDefault
	v := &Vault{
		queries:  queries,
		key:      key,
		defaults: defaults,
	}
	v.resolvers = []resolver{v.resolveTenant, v.resolveDefault}
	return v
}

// Resolve returns the first applicable credential set for the tenant. When
// nothing is configured anywhere the result has Source == SourceNone.
func (v *Vault) Resolve(ctx context.Context, tenantID int64) (Credentials, error) {
	for _, resolve := range v.resolvers {
		creds, ok, err := resolve(ctx, tenantID)
		if err != nil {
			return Credentials{Source: SourceNone}, err
		}
		if ok {
			return creds, nil
		}
	}
	return Credentials{Source: SourceNone}, nil
}

// WebhookSecret resolves just the webhook signing secret, preserving the
// tenant-then-default order. An empty secret with SourceNone means no secret
// is configured anywhere.
func (v *Vault) WebhookSecret(ctx context.Context, tenantID int64) (string, Source, error) {
	creds, err := v.Resolve(ctx, tenantID)
	if err != nil {
		return "", SourceNone, err
	}
	if creds.WebhookSecret == "" {
		// Tenant rows may carry only an access token; fall through to the
		// default secret before giving up.
		if creds.Source == SourceTenant && v.defaults.WebhookSecret != "" {
			return v.defaults.WebhookSecret, SourceDefault, nil
		}
		return "", SourceNone, nil
	}
	return creds.WebhookSecret, creds.Source, nil
}

func (v *Vault) resolveTenant(ctx context.Context, tenantID int64) (Credentials, bool, error) {
	row, err := v.queries.GetTenantCredentials(ctx, tenantID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Credentials{}, false, nil
		}
		return Credentials{}, false, fmt.Errorf("fetch tenant credentials: %w", err)
	}

	creds := Credentials{
		AccessToken:   v.decryptField(tenantID, "access_token", row.AccessToken),
		PublicKey:     v.decryptField(tenantID, "public_key", row.PublicKey),
		WebhookSecret: v.decryptField(tenantID, "webhook_secret", row.WebhookSecret),
		Source:        SourceTenant,
	}
	if creds.Empty() {
		return Credentials{}, false, nil
	}
	return creds, true, nil
}

func (v *Vault) resolveDefault(_ context.Context, _ int64) (Credentials, bool, error) {
	if v.defaults.Empty() {
		return Credentials{}, false, nil
	}
	return v.defaults, true, nil
}

// decryptField opens one stored credential. Decrypt failures are logged and
// collapse to absent so one corrupt field cannot abort tenant operations.
func (v *Vault) decryptField(tenantID int64, field string, value sql.NullString) string {
	if !value.Valid || value.String == "" {
		return ""
	}
	plaintext, err := Decrypt(v.key, value.String)
	if err != nil {
		log.Warn().
			Err(err).
			Int64("tenant_id", tenantID).
			Str("field", field).
			Msg("Failed to decrypt tenant credential, treating as absent")
		return ""
	}
	return plaintext
}

// Store encrypts and upserts a tenant's credentials. Empty fields are stored
// as NULL; values already carrying the encryption tag are kept as-is.
func (v *Vault) Store(ctx context.Context, tenantID int64, creds Credentials) error {
	accessToken, err := v.sealField(creds.AccessToken)
	if err != nil {
		return fmt.Errorf("encrypt access token: %w", err)
	}
	publicKey, err := v.sealField(creds.PublicKey)
	if err != nil {
		return fmt.Errorf("encrypt public key: %w", err)
	}
	webhookSecret, err := v.sealField(creds.WebhookSecret)
	if err != nil {
		return fmt.Errorf("encrypt webhook secret: %w", err)
	}

	_, err = v.queries.UpsertTenantCredentials(ctx, dbgen.UpsertTenantCredentialsParams{
		TenantID:      tenantID,
		AccessToken:   accessToken,
		PublicKey:     publicKey,
		WebhookSecret: webhookSecret,
	})
	if err != nil {
		return fmt.Errorf("store tenant credentials: %w", err)
	}
	return nil
}

func (v *Vault) sealField(plaintext string) (sql.NullString, error) {
	if plaintext == "" {
		return sql.NullString{}, nil
	}
	sealed, err := Encrypt(v.key, plaintext)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: sealed, Valid: true}, nil
}
