package repository

import (
	"context"
	"database/sql"
	"fmt"

	"tiergate/internal/models"
)

type LinkPostgres struct {
	db dbtx
}

func NewLinkPostgres(db dbtx) *LinkPostgres {
	return &LinkPostgres{db: db}
}

// ResolveDiscordID returns the Discord id linked to minecraftID. A missing
// link is reported with found=false and no error.
func (r *LinkPostgres) ResolveDiscordID(ctx context.Context, minecraftID string) (string, bool, error) {
	var discordID string
	err := r.db.QueryRowContext(ctx,
		`SELECT discord FROM account_links WHERE minecraft = $1`, minecraftID,
	).Scan(&discordID)

	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve discord id: %w", err)
	}
	return discordID, true, nil
}

func (r *LinkPostgres) ResolveMinecraftID(ctx context.Context, discordID string) (string, error) {
	var minecraftID string
	err := r.db.QueryRowContext(ctx,
		`SELECT minecraft FROM account_links WHERE discord = $1`, discordID,
	).Scan(&minecraftID)

	if err == sql.ErrNoRows {
		return "", models.ErrNoMinecraftAccount
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve minecraft id: %w", err)
	}
	return minecraftID, nil
}

// Create inserts link, failing with *models.AlreadyLinkedError when either
// identifier already belongs to a link.
func (r *LinkPostgres) Create(ctx context.Context, link models.Link) error {
	side, err := r.conflictSide(ctx, link)
	if err != nil {
		return err
	}
	if side != "" {
		return &models.AlreadyLinkedError{Side: side}
	}

	result, err := r.db.ExecContext(ctx, `
		INSERT INTO account_links (discord, minecraft)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, link.DiscordID, link.MinecraftID)
	if err != nil {
		return fmt.Errorf("failed to create link: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows > 0 {
		return nil
	}

	// A concurrent insert won between the check and the insert.
	side, err = r.conflictSide(ctx, link)
	if err != nil {
		return err
	}
	if side == "" {
		return fmt.Errorf("failed to create link: conflicting row vanished")
	}
	return &models.AlreadyLinkedError{Side: side}
}

func (r *LinkPostgres) conflictSide(ctx context.Context, link models.Link) (models.LinkSide, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT discord, minecraft FROM account_links
		WHERE discord = $1 OR minecraft = $2
	`, link.DiscordID, link.MinecraftID)
	if err != nil {
		return "", fmt.Errorf("failed to check existing links: %w", err)
	}
	defer rows.Close()

	var existing []models.Link
	for rows.Next() {
		var l models.Link
		if err := rows.Scan(&l.DiscordID, &l.MinecraftID); err != nil {
			return "", fmt.Errorf("failed to scan link: %w", err)
		}
		existing = append(existing, l)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("failed to check existing links: %w", err)
	}

	return classifyConflict(link, existing), nil
}

// classifyConflict compares each colliding row's columns to the requested
// identifiers independently. An empty side means no collision.
func classifyConflict(requested models.Link, existing []models.Link) models.LinkSide {
	var discordTaken, minecraftTaken bool
	for _, l := range existing {
		if l.DiscordID == requested.DiscordID {
			discordTaken = true
		}
		if l.MinecraftID == requested.MinecraftID {
			minecraftTaken = true
		}
	}

	switch {
	case discordTaken && minecraftTaken:
		return models.SideBoth
	case discordTaken:
		return models.SideDiscord
	case minecraftTaken:
		return models.SideMinecraft
	default:
		return ""
	}
}

func (r *LinkPostgres) DeleteByDiscordID(ctx context.Context, discordID string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM account_links WHERE discord = $1`, discordID)
	if err != nil {
		return false, fmt.Errorf("failed to delete link: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}

func (r *LinkPostgres) DeleteByMinecraftID(ctx context.Context, minecraftID string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM account_links WHERE minecraft = $1`, minecraftID)
	if err != nil {
		return false, fmt.Errorf("failed to delete link: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}

func (r *LinkPostgres) ListDiscordIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT discord FROM account_links ORDER BY discord`)
	if err != nil {
		return nil, fmt.Errorf("failed to list discord ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan discord id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *LinkPostgres) List(ctx context.Context) ([]models.Link, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT discord, minecraft FROM account_links ORDER BY linked_at, discord`)
	if err != nil {
		return nil, fmt.Errorf("failed to list links: %w", err)
	}
	defer rows.Close()

	var links []models.Link
	for rows.Next() {
		var l models.Link
		if err := rows.Scan(&l.DiscordID, &l.MinecraftID); err != nil {
			return nil, fmt.Errorf("failed to scan link: %w", err)
		}
		links = append(links, l)
	}
	return links, rows.Err()
}
