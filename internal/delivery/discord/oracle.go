package discord

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"tiergate/internal/models"

	"github.com/bwmarrin/discordgo"
)

type memberFetcher interface {
	GuildMember(guildID, userID string, options ...discordgo.RequestOption) (*discordgo.Member, error)
	GuildMembers(guildID, after string, limit int, options ...discordgo.RequestOption) ([]*discordgo.Member, error)
}

// RoleOracle checks role membership in one guild through the Discord REST
// API. Results are never cached.
type RoleOracle struct {
	members memberFetcher
	guildID string
	roleID  string
}

func NewRoleOracle(session *discordgo.Session, guildID, roleID string) *RoleOracle {
	return &RoleOracle{
		members: session,
		guildID: guildID,
		roleID:  roleID,
	}
}

func (o *RoleOracle) IsTierThree(ctx context.Context, discordID string) (bool, error) {
	member, err := o.members.GuildMember(o.guildID, discordID, discordgo.WithContext(ctx))
	if err != nil {
		if isUnknownMember(err) {
			return false, models.ErrNoDiscordAccount
		}
		return false, fmt.Errorf("%w: %v", models.ErrOracleFailure, err)
	}
	if member == nil {
		return false, models.ErrNoDiscordAccount
	}
	return slices.Contains(member.Roles, o.roleID), nil
}

// RoleHolders pages through the whole guild and reports, per member id,
// whether the member holds the role. Users absent from the map are not in
// the guild.
func (o *RoleOracle) RoleHolders(ctx context.Context) (map[string]bool, error) {
	holders := make(map[string]bool)
	after := ""
	for {
		page, err := o.members.GuildMembers(o.guildID, after, memberPageSize, discordgo.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", models.ErrOracleFailure, err)
		}

		last := after
		for _, member := range page {
			if member == nil || member.User == nil {
				continue
			}
			holders[member.User.ID] = slices.Contains(member.Roles, o.roleID)
			last = member.User.ID
		}
		if len(page) < memberPageSize || last == after {
			return holders, nil
		}
		after = last
	}
}

// isUnknownMember reports whether Discord said the user is not in the guild.
// Other 404s, such as an unknown guild, are configuration faults.
func isUnknownMember(err error) bool {
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) || restErr.Message == nil {
		return false
	}
	switch restErr.Message.Code {
	case discordgo.ErrCodeUnknownMember, discordgo.ErrCodeUnknownUser:
		return true
	}
	return false
}
