package discord

import "github.com/bwmarrin/discordgo"

func (b *Bot) isAdmin(userID string) bool {
	_, ok := b.adminIDs[userID]
	return ok
}

func (b *Bot) ensureAdmin(s responder, i *discordgo.Interaction, handler func(responder, *discordgo.Interaction)) {
	if !b.isAdmin(interactionUserID(i)) {
		b.respondMessage(s, i, "You are not allowed to use this command.", true)
		return
	}
	handler(s, i)
}
