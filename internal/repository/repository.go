package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"tiergate/internal/models"
)

type Link interface {
	ResolveDiscordID(ctx context.Context, minecraftID string) (string, bool, error)
	ResolveMinecraftID(ctx context.Context, discordID string) (string, error)
	Create(ctx context.Context, link models.Link) error
	DeleteByDiscordID(ctx context.Context, discordID string) (bool, error)
	DeleteByMinecraftID(ctx context.Context, minecraftID string) (bool, error)
	ListDiscordIDs(ctx context.Context) ([]string, error)
	List(ctx context.Context) ([]models.Link, error)
}

type PendingAuthorization interface {
	LookupByMinecraftID(ctx context.Context, minecraftID string) (*models.PendingAuthorization, error)
	LookupByCode(ctx context.Context, code string) (*models.PendingAuthorization, error)
	IssueOrRefresh(ctx context.Context, minecraftID string) (*models.PendingAuthorization, error)
	Consume(ctx context.Context, code string) (*models.PendingAuthorization, error)
	PurgeExpired(ctx context.Context) (int64, error)
}

// TxFunc runs against stores bound to a single transaction.
type TxFunc func(links Link, pending PendingAuthorization) error

type Repository struct {
	Link
	PendingAuthorization
	db      *sql.DB
	codeTTL time.Duration
}

func NewRepository(cfg *Config, db *sql.DB) *Repository {
	return &Repository{
		Link:                 NewLinkPostgres(db),
		PendingAuthorization: NewPendingAuthorizationPostgres(db, cfg.CodeTTL),
		db:                   db,
		codeTTL:              cfg.CodeTTL,
	}
}

// WithinTx runs fn in a transaction, committing when fn returns nil and
// rolling back otherwise.
func (r *Repository) WithinTx(ctx context.Context, fn TxFunc) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
		if err != nil {
			tx.Rollback()
		}
	}()

	if err = fn(NewLinkPostgres(tx), NewPendingAuthorizationPostgres(tx, r.codeTTL)); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
