package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tiergate/internal/models"
	"tiergate/internal/repository"
)

type ValidationServiceImpl struct {
	links   repository.Link
	oracle  RoleOracle
	timeout time.Duration
	logger  Logger
}

func NewValidationServiceImpl(links repository.Link, oracle RoleOracle, timeout time.Duration, logger Logger) *ValidationServiceImpl {
	if timeout <= 0 {
		timeout = defaultOracleTimeout
	}
	return &ValidationServiceImpl{
		links:   links,
		oracle:  oracle,
		timeout: timeout,
		logger:  logger,
	}
}

// Validate decides whether playerID may join. A non-nil error always comes
// with a denied result.
func (s *ValidationServiceImpl) Validate(ctx context.Context, playerID string) (models.ValidationResult, error) {
	discordID, found, err := s.links.ResolveDiscordID(ctx, playerID)
	if err != nil {
		return models.ValidationResult{}, err
	}
	if !found {
		s.logger.Debug("Player %s has no linked account", playerID)
		return models.Denied(models.ReasonNoLink), nil
	}

	ok, err := s.HasTierThree(ctx, discordID)
	switch {
	case errors.Is(err, models.ErrNoDiscordAccount):
		s.logger.Debug("Player %s is linked to unknown discord account %s", playerID, discordID)
		return models.Denied(models.ReasonNoRole), nil
	case err != nil:
		return models.ValidationResult{}, err
	case !ok:
		return models.Denied(models.ReasonNoRole), nil
	}

	return models.Allowed(), nil
}

// HasTierThree asks the oracle with an upper bound on latency. Anything other
// than an answer or ErrNoDiscordAccount is reported as ErrOracleFailure.
func (s *ValidationServiceImpl) HasTierThree(ctx context.Context, discordID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	type answer struct {
		ok  bool
		err error
	}
	done := make(chan answer, 1)
	go func() {
		ok, err := s.oracle.IsTierThree(ctx, discordID)
		done <- answer{ok: ok, err: err}
	}()

	var a answer
	select {
	case a = <-done:
	case <-ctx.Done():
		a.err = ctx.Err()
	}

	switch {
	case a.err == nil:
		return a.ok, nil
	case errors.Is(a.err, models.ErrNoDiscordAccount), errors.Is(a.err, models.ErrOracleFailure):
		return false, a.err
	default:
		s.logger.Error("Role check for discord %s failed: %v", discordID, a.err)
		return false, fmt.Errorf("%w: %v", models.ErrOracleFailure, a.err)
	}
}
