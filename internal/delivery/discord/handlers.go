package discord

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"tiergate/internal/models"

	"github.com/bwmarrin/discordgo"
)

func (b *Bot) handleLink(s responder, i *discordgo.Interaction) {
	userID := interactionUserID(i)
	code := optionString(i, optCode)

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	link, err := b.services.LinkService.Redeem(ctx, code, userID)
	if err != nil {
		if !errors.Is(err, models.ErrInvalidCode) && !errors.Is(err, models.ErrAlreadyLinked) {
			b.logger.Error("Redeem for discord %s failed: %v", userID, err)
		}
		b.respondMessage(s, i, redeemErrorMessage(err), true)
		return
	}

	b.logger.Info("Discord %s linked to minecraft %s", link.DiscordID, link.MinecraftID)
	b.respondMessage(s, i, fmt.Sprintf("Linked to Minecraft account `%s`.", link.MinecraftID), true)
}

func (b *Bot) handleUnlink(s responder, i *discordgo.Interaction) {
	userID := interactionUserID(i)

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	deleted, err := b.services.LinkService.Unlink(ctx, userID, "")
	if err != nil {
		b.logger.Error("Unlink for discord %s failed: %v", userID, err)
		b.respondMessage(s, i, "Could not unlink, try again later.", true)
		return
	}
	if !deleted {
		b.respondMessage(s, i, "Your Discord account is not linked.", true)
		return
	}
	b.respondMessage(s, i, "Your accounts are no longer linked.", true)
}

func (b *Bot) handleStatus(s responder, i *discordgo.Interaction) {
	userID := interactionUserID(i)
	b.deferResponse(s, i)

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	minecraftID, err := b.services.LinkService.ResolveMinecraftID(ctx, userID)
	if errors.Is(err, models.ErrNoMinecraftAccount) {
		b.editMessage(s, i, &discordgo.WebhookEdit{Content: strPtr("Your Discord account is not linked. Join the server to get a code, then use `/link`.")})
		return
	}
	if err != nil {
		b.logger.Error("Status lookup for discord %s failed: %v", userID, err)
		b.editMessage(s, i, &discordgo.WebhookEdit{Content: strPtr("Could not load your status, try again later.")})
		return
	}

	access, color := "Allowed", colorTierThree
	ok, err := b.services.ValidationService.HasTierThree(ctx, userID)
	switch {
	case errors.Is(err, models.ErrNoDiscordAccount):
		access, color = "Not a member of the server", colorNoRole
	case err != nil:
		access, color = "Unknown, role check failed", colorUnknown
	case !ok:
		access, color = "Missing required role", colorNoRole
	}

	embed := &discordgo.MessageEmbed{
		Title: "Link status",
		Color: color,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Minecraft", Value: fmt.Sprintf("`%s`", minecraftID), Inline: true},
			{Name: "Access", Value: access, Inline: true},
		},
	}
	b.editMessage(s, i, &discordgo.WebhookEdit{Embeds: &[]*discordgo.MessageEmbed{embed}})
}

func (b *Bot) handleUnlinkPlayer(s responder, i *discordgo.Interaction) {
	minecraftID := strings.ReplaceAll(strings.TrimSpace(optionString(i, optMinecraftID)), "-", "")

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	deleted, err := b.services.LinkService.Unlink(ctx, "", minecraftID)
	if err != nil {
		b.logger.Error("Admin unlink of minecraft %s failed: %v", minecraftID, err)
		b.respondMessage(s, i, "Unlink failed: "+err.Error(), true)
		return
	}
	if !deleted {
		b.respondMessage(s, i, fmt.Sprintf("No link found for `%s`.", minecraftID), true)
		return
	}

	b.logger.Info("Admin %s unlinked minecraft %s", interactionUserID(i), minecraftID)
	b.respondMessage(s, i, fmt.Sprintf("Minecraft account `%s` unlinked.", minecraftID), true)
}

func (b *Bot) handleExportLinks(s responder, i *discordgo.Interaction) {
	b.deferResponse(s, i)

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	data, err := b.services.ExportService.ExportLinks(ctx)
	if err != nil {
		b.logger.Error("Export error: %v", err)
		b.editMessage(s, i, &discordgo.WebhookEdit{Content: strPtr("Export failed: " + err.Error())})
		return
	}

	b.editMessage(s, i, &discordgo.WebhookEdit{
		Content: strPtr("Your export is ready."),
		Files: []*discordgo.File{
			{Name: exportFileName, ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", Reader: bytes.NewReader(data)},
		},
	})
}

// handleAuditLinks re-checks every linked member against the role with one
// paged walk over the guild.
func (b *Bot) handleAuditLinks(s responder, i *discordgo.Interaction) {
	b.deferResponse(s, i)

	ctx, cancel := context.WithTimeout(context.Background(), auditTimeout)
	defer cancel()

	ids, err := b.services.LinkService.ListDiscordIDs(ctx)
	if err != nil {
		b.logger.Error("Audit listing failed: %v", err)
		b.editMessage(s, i, &discordgo.WebhookEdit{Content: strPtr("Audit failed: " + err.Error())})
		return
	}

	holders, err := b.roster.RoleHolders(ctx)
	if err != nil {
		b.logger.Error("Audit member listing failed: %v", err)
		b.editMessage(s, i, &discordgo.WebhookEdit{Content: strPtr("Audit failed: could not list server members.")})
		return
	}

	var missing, departed []string
	for _, id := range ids {
		hasRole, member := holders[id]
		switch {
		case !member:
			departed = append(departed, id)
		case !hasRole:
			missing = append(missing, id)
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Checked %d linked accounts.\n", len(ids))
	if len(missing) == 0 && len(departed) == 0 {
		sb.WriteString("Every linked member holds the role.\n")
	}
	if len(missing) > 0 {
		fmt.Fprintf(&sb, "Without the role (%d):\n", len(missing))
		for _, id := range missing {
			fmt.Fprintf(&sb, "<@%s> `%s`\n", id, id)
		}
	}
	if len(departed) > 0 {
		fmt.Fprintf(&sb, "No longer in the server (%d):\n", len(departed))
		for _, id := range departed {
			fmt.Fprintf(&sb, "`%s`\n", id)
		}
	}

	b.editMessage(s, i, &discordgo.WebhookEdit{Content: strPtr(truncate(sb.String()))})
}
