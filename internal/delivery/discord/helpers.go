package discord

import (
	"errors"
	"fmt"

	"tiergate/internal/models"

	"github.com/bwmarrin/discordgo"
)

func (b *Bot) respondMessage(s responder, i *discordgo.Interaction, msg string, ephemeral bool) {
	flags := discordgo.MessageFlags(0)
	if ephemeral {
		flags = discordgo.MessageFlagsEphemeral
	}
	err := s.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: msg,
			Flags:   flags,
		},
	})
	if err != nil {
		b.logger.Error("Failed to respond to interaction: %v", err)
	}
}

func (b *Bot) deferResponse(s responder, i *discordgo.Interaction) {
	err := s.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	})
	if err != nil {
		b.logger.Error("Failed to defer interaction: %v", err)
	}
}

func (b *Bot) editMessage(s responder, i *discordgo.Interaction, edit *discordgo.WebhookEdit) {
	if _, err := s.InteractionResponseEdit(i, edit); err != nil {
		b.logger.Error("Failed to edit interaction response: %v", err)
	}
}

// interactionUserID returns the invoking user for both guild and DM
// interactions.
func interactionUserID(i *discordgo.Interaction) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

func optionString(i *discordgo.Interaction, name string) string {
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == name && opt.Type == discordgo.ApplicationCommandOptionString {
			return opt.StringValue()
		}
	}
	return ""
}

func redeemErrorMessage(err error) string {
	if side, ok := models.AlreadyLinkedSide(err); ok {
		switch side {
		case models.SideDiscord:
			return "Your Discord account is already linked to a Minecraft account. Use `/unlink` first."
		case models.SideMinecraft:
			return "That Minecraft account is already linked to another Discord account."
		default:
			return "These accounts are already linked to each other."
		}
	}

	switch {
	case errors.Is(err, models.ErrInvalidCode):
		return "That code is invalid or has expired. Join the server again to get a new one."
	case errors.Is(err, models.ErrMalformedRequest):
		return "Could not read your Discord account, try again."
	default:
		return "Something went wrong while linking, try again later."
	}
}

func truncate(msg string) string {
	if len(msg) <= maxMessageLength {
		return msg
	}
	return fmt.Sprintf("%s\n...", msg[:maxMessageTruncation])
}

func strPtr(s string) *string {
	return &s
}
