package discord

import "github.com/bwmarrin/discordgo"

func (b *Bot) addCommands(commands ...*discordgo.ApplicationCommand) {
	b.commands = append(b.commands, commands...)
}

func (b *Bot) newLinkCommand() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        cmdLink,
		Description: "Link your Minecraft account with the code shown in game",
		Options: []*discordgo.ApplicationCommandOption{
			{Type: discordgo.ApplicationCommandOptionString, Name: optCode, Description: "Auth code from the server", Required: true},
		},
	}
}

func (b *Bot) newUnlinkCommand() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        cmdUnlink,
		Description: "Remove the link between your Discord and Minecraft accounts",
	}
}

func (b *Bot) newStatusCommand() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        cmdStatus,
		Description: "Show your linked Minecraft account and access status",
	}
}

func (b *Bot) newUnlinkPlayerCommand() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        cmdUnlinkPlayer,
		Description: "Unlink a Minecraft account (admins only)",
		Options: []*discordgo.ApplicationCommandOption{
			{Type: discordgo.ApplicationCommandOptionString, Name: optMinecraftID, Description: "Minecraft UUID without dashes", Required: true},
		},
	}
}

func (b *Bot) newExportLinksCommand() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        cmdExportLinks,
		Description: "Export all account links to Excel (admins only)",
	}
}

func (b *Bot) newAuditLinksCommand() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        cmdAuditLinks,
		Description: "List linked members without the required role (admins only)",
	}
}
