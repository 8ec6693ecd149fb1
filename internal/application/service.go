package application

import (
	"context"
	"time"

	"tiergate/internal/models"
	"tiergate/internal/repository"
)

type Logger interface {
	Error(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Info(format string, v ...interface{})
	Debug(format string, v ...interface{})
}

// RoleOracle answers whether a Discord user holds the tier three role. A
// user unknown to Discord is reported as models.ErrNoDiscordAccount.
type RoleOracle interface {
	IsTierThree(ctx context.Context, discordID string) (bool, error)
}

// Transactor runs a unit of work against stores sharing one transaction.
type Transactor interface {
	WithinTx(ctx context.Context, fn repository.TxFunc) error
}

type LinkService interface {
	RequestCode(ctx context.Context, minecraftID string) (string, error)
	Redeem(ctx context.Context, code, discordID string) (*models.Link, error)
	Unlink(ctx context.Context, discordID, minecraftID string) (bool, error)
	ResolveMinecraftID(ctx context.Context, discordID string) (string, error)
	ListLinks(ctx context.Context) ([]models.Link, error)
	ListDiscordIDs(ctx context.Context) ([]string, error)
}

type ValidationService interface {
	Validate(ctx context.Context, playerID string) (models.ValidationResult, error)
	HasTierThree(ctx context.Context, discordID string) (bool, error)
}

type ExportService interface {
	ExportLinks(ctx context.Context) ([]byte, error)
}

type Service struct {
	LinkService       LinkService
	ValidationService ValidationService
	ExportService     ExportService
}

func NewService(repos *repository.Repository, oracle RoleOracle, oracleTimeout time.Duration, logger Logger) *Service {
	links := NewLinkServiceImpl(repos.Link, repos.PendingAuthorization, repos, logger)
	return &Service{
		LinkService:       links,
		ValidationService: NewValidationServiceImpl(repos.Link, oracle, oracleTimeout, logger),
		ExportService:     NewExportServiceImpl(links, logger),
	}
}
