package models

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrMalformedRequest   = errors.New("malformed request")
	ErrNoLinkedAccount    = errors.New("no linked account")
	ErrNoMinecraftAccount = errors.New("no minecraft account linked")
	ErrNoDiscordAccount   = errors.New("no such discord account")
	ErrAlreadyLinked      = errors.New("already linked")
	ErrInvalidCode        = errors.New("invalid or expired code")
	ErrOracleFailure      = errors.New("role check failed")
	ErrUnlinkTarget       = errors.New("exactly one of discord id or minecraft id is required")
)

// AlreadyLinkedError reports which side of a requested link is already taken.
type AlreadyLinkedError struct {
	Side LinkSide
}

func (e *AlreadyLinkedError) Error() string {
	return fmt.Sprintf("already linked (%s)", e.Side)
}

func (e *AlreadyLinkedError) Is(target error) bool {
	return target == ErrAlreadyLinked
}

// AlreadyLinkedSide extracts the conflicting side from err, if any.
func AlreadyLinkedSide(err error) (LinkSide, bool) {
	var linked *AlreadyLinkedError
	if errors.As(err, &linked) {
		return linked.Side, true
	}
	return "", false
}
