package discord

import (
	"context"
	"fmt"
	"strings"

	"tiergate/internal/application"

	"github.com/bwmarrin/discordgo"
)

// responder is the part of *discordgo.Session the command handlers use.
type responder interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	InteractionResponseEdit(interaction *discordgo.Interaction, newresp *discordgo.WebhookEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// roleRoster lists role holders for the whole guild in bulk.
type roleRoster interface {
	RoleHolders(ctx context.Context) (map[string]bool, error)
}

type Bot struct {
	session  *discordgo.Session
	services *application.Service
	logger   application.Logger
	roster   roleRoster

	guildID  string
	adminIDs map[string]struct{}
	commands []*discordgo.ApplicationCommand
}

func NewBot(session *discordgo.Session, guildID string, adminUserIDs []string, services *application.Service, roster roleRoster, logger application.Logger) *Bot {
	admins := make(map[string]struct{})
	for _, id := range adminUserIDs {
		cleanID := strings.TrimSpace(id)
		if cleanID != "" {
			admins[cleanID] = struct{}{}
		}
	}

	b := &Bot{
		session:  session,
		services: services,
		logger:   logger,
		roster:   roster,
		guildID:  guildID,
		adminIDs: admins,
	}
	b.addCommands(
		b.newLinkCommand(),
		b.newUnlinkCommand(),
		b.newStatusCommand(),
		b.newUnlinkPlayerCommand(),
		b.newExportLinksCommand(),
		b.newAuditLinksCommand(),
	)
	return b
}

func (b *Bot) Init() error {
	if b.guildID == "" {
		return fmt.Errorf("discord: guild id is not configured")
	}
	b.session.Identify.Intents |= discordgo.IntentsGuilds | discordgo.IntentsGuildMembers
	b.session.AddHandler(b.onInteraction)
	return nil
}

func (b *Bot) Run(ctx context.Context) error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open discord session: %w", err)
	}

	b.logger.Info("Discord Bot Started. Registering slash commands...")

	_, err := b.session.ApplicationCommandBulkOverwrite(b.session.State.User.ID, b.guildID, b.commands, discordgo.WithContext(ctx))
	if err != nil {
		b.logger.Error("Failed to register commands: %v", err)
	} else {
		b.logger.Info("Slash commands registered successfully")
	}

	<-ctx.Done()
	return nil
}

func (b *Bot) Stop() {
	if err := b.session.Close(); err != nil {
		b.logger.Warn("Discord session close: %v", err)
	}
}

func (b *Bot) onInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	b.dispatch(s, i.Interaction)
}

func (b *Bot) dispatch(s responder, i *discordgo.Interaction) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	switch i.ApplicationCommandData().Name {
	case cmdLink:
		b.handleLink(s, i)
	case cmdUnlink:
		b.handleUnlink(s, i)
	case cmdStatus:
		b.handleStatus(s, i)
	case cmdUnlinkPlayer:
		b.ensureAdmin(s, i, b.handleUnlinkPlayer)
	case cmdExportLinks:
		b.ensureAdmin(s, i, b.handleExportLinks)
	case cmdAuditLinks:
		b.ensureAdmin(s, i, b.handleAuditLinks)
	}
}
