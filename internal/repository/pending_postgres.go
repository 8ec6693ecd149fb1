package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"tiergate/internal/models"

	"github.com/google/uuid"
)

const (
	authCodeConstraint = "pending_authorisations_auth_code_key"
	maxCodeAttempts    = 3
)

type PendingAuthorizationPostgres struct {
	db      dbtx
	ttl     time.Duration
	newCode func() string
	now     func() time.Time
}

func NewPendingAuthorizationPostgres(db dbtx, ttl time.Duration) *PendingAuthorizationPostgres {
	return &PendingAuthorizationPostgres{
		db:      db,
		ttl:     ttl,
		newCode: generateCode,
		now:     time.Now,
	}
}

func (r *PendingAuthorizationPostgres) LookupByMinecraftID(ctx context.Context, minecraftID string) (*models.PendingAuthorization, error) {
	return r.scanOne(r.db.QueryRowContext(ctx, `
		SELECT mc_id, auth_code, issued_at FROM pending_authorisations
		WHERE mc_id = $1 AND issued_at > $2
	`, minecraftID, r.cutoff()))
}

func (r *PendingAuthorizationPostgres) LookupByCode(ctx context.Context, code string) (*models.PendingAuthorization, error) {
	return r.scanOne(r.db.QueryRowContext(ctx, `
		SELECT mc_id, auth_code, issued_at FROM pending_authorisations
		WHERE auth_code = $1 AND issued_at > $2
	`, code, r.cutoff()))
}

// IssueOrRefresh stores a fresh code for minecraftID, replacing any code the
// player already had.
func (r *PendingAuthorizationPostgres) IssueOrRefresh(ctx context.Context, minecraftID string) (*models.PendingAuthorization, error) {
	var lastErr error
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		var p models.PendingAuthorization
		err := r.db.QueryRowContext(ctx, `
			INSERT INTO pending_authorisations (mc_id, auth_code)
			VALUES ($1, $2)
			ON CONFLICT (mc_id) DO UPDATE SET
				auth_code = EXCLUDED.auth_code,
				issued_at = NOW()
			RETURNING mc_id, auth_code, issued_at
		`, minecraftID, r.newCode()).Scan(&p.MinecraftID, &p.AuthCode, &p.IssuedAt)

		if err == nil {
			return &p, nil
		}
		if !isUniqueViolation(err, authCodeConstraint) {
			return nil, fmt.Errorf("failed to issue auth code: %w", err)
		}
		lastErr = err
	}
	return nil, fmt.Errorf("failed to issue auth code after %d attempts: %w", maxCodeAttempts, lastErr)
}

// Consume deletes the pending authorization holding code and returns it. Only
// one caller can consume a given row; the others get nil.
func (r *PendingAuthorizationPostgres) Consume(ctx context.Context, code string) (*models.PendingAuthorization, error) {
	return r.scanOne(r.db.QueryRowContext(ctx, `
		DELETE FROM pending_authorisations
		WHERE auth_code = $1 AND issued_at > $2
		RETURNING mc_id, auth_code, issued_at
	`, code, r.cutoff()))
}

func (r *PendingAuthorizationPostgres) PurgeExpired(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM pending_authorisations WHERE issued_at <= $1`, r.cutoff())
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired codes: %w", err)
	}
	return result.RowsAffected()
}

func (r *PendingAuthorizationPostgres) scanOne(row *sql.Row) (*models.PendingAuthorization, error) {
	var p models.PendingAuthorization
	err := row.Scan(&p.MinecraftID, &p.AuthCode, &p.IssuedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pending authorization: %w", err)
	}
	return &p, nil
}

func (r *PendingAuthorizationPostgres) cutoff() time.Time {
	if r.ttl <= 0 {
		return time.Time{}
	}
	return r.now().Add(-r.ttl)
}

// generateCode returns the first segment of a random UUID: 8 hex characters.
func generateCode() string {
	return strings.SplitN(uuid.NewString(), "-", 2)[0]
}
