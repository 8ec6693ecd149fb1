package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tiergate/internal/models"
	"tiergate/internal/repository"
)

type LinkServiceImpl struct {
	links   repository.Link
	pending repository.PendingAuthorization
	tx      Transactor
	logger  Logger
}

func NewLinkServiceImpl(links repository.Link, pending repository.PendingAuthorization, tx Transactor, logger Logger) *LinkServiceImpl {
	return &LinkServiceImpl{
		links:   links,
		pending: pending,
		tx:      tx,
		logger:  logger,
	}
}

// RequestCode issues a code for minecraftID. Existing links are not checked
// here; conflicts surface when the code is redeemed.
func (s *LinkServiceImpl) RequestCode(ctx context.Context, minecraftID string) (string, error) {
	if minecraftID == "" {
		return "", fmt.Errorf("%w: empty minecraft id", models.ErrMalformedRequest)
	}

	if purged, err := s.pending.PurgeExpired(ctx); err != nil {
		s.logger.Warn("Failed to purge expired codes: %v", err)
	} else if purged > 0 {
		s.logger.Debug("Purged %d expired codes", purged)
	}

	live, err := s.pending.LookupByMinecraftID(ctx, minecraftID)
	if err != nil {
		return "", err
	}
	if live != nil {
		s.logger.Info("Replacing live auth code for minecraft id %s issued at %s", minecraftID, live.IssuedAt.Format(time.RFC3339))
	}

	p, err := s.pending.IssueOrRefresh(ctx, minecraftID)
	if err != nil {
		return "", err
	}

	s.logger.Info("Issued auth code for minecraft id %s", minecraftID)
	return p.AuthCode, nil
}

// Redeem consumes code and links its player to discordID. The consume and the
// insert share a transaction, so a failed link leaves the code usable and two
// concurrent redemptions cannot both succeed.
func (s *LinkServiceImpl) Redeem(ctx context.Context, code, discordID string) (*models.Link, error) {
	code = normalizeCode(code)
	if code == "" {
		return nil, models.ErrInvalidCode
	}
	if discordID == "" {
		return nil, fmt.Errorf("%w: empty discord id", models.ErrMalformedRequest)
	}

	var link models.Link
	err := s.tx.WithinTx(ctx, func(links repository.Link, pending repository.PendingAuthorization) error {
		p, err := pending.Consume(ctx, code)
		if err != nil {
			return err
		}
		if p == nil {
			return models.ErrInvalidCode
		}

		link = models.Link{DiscordID: discordID, MinecraftID: p.MinecraftID}
		return links.Create(ctx, link)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Linked discord %s to minecraft %s", link.DiscordID, link.MinecraftID)
	return &link, nil
}

// Unlink removes a link by exactly one of its identifiers.
func (s *LinkServiceImpl) Unlink(ctx context.Context, discordID, minecraftID string) (bool, error) {
	var (
		deleted bool
		err     error
	)
	switch {
	case discordID != "" && minecraftID == "":
		deleted, err = s.links.DeleteByDiscordID(ctx, discordID)
	case minecraftID != "" && discordID == "":
		deleted, err = s.links.DeleteByMinecraftID(ctx, minecraftID)
	default:
		return false, models.ErrUnlinkTarget
	}
	if err != nil {
		return false, err
	}

	if deleted {
		s.logger.Info("Unlinked discord=%q minecraft=%q", discordID, minecraftID)
	}
	return deleted, nil
}

func (s *LinkServiceImpl) ResolveMinecraftID(ctx context.Context, discordID string) (string, error) {
	return s.links.ResolveMinecraftID(ctx, discordID)
}

func (s *LinkServiceImpl) ListLinks(ctx context.Context) ([]models.Link, error) {
	return s.links.List(ctx)
}

func (s *LinkServiceImpl) ListDiscordIDs(ctx context.Context) ([]string, error) {
	return s.links.ListDiscordIDs(ctx)
}

// Codes are typed by hand, so surrounding space and case are forgiven.
func normalizeCode(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}
