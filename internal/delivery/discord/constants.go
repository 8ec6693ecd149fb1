package discord

import "time"

const (
	cmdLink         = "link"
	cmdUnlink       = "unlink"
	cmdStatus       = "status"
	cmdUnlinkPlayer = "unlink_player"
	cmdExportLinks  = "export_links"
	cmdAuditLinks   = "audit_links"

	optCode        = "code"
	optMinecraftID = "minecraft_id"

	// Display limits
	maxMessageLength     = 2000
	maxMessageTruncation = 1990

	exportFileName = "links.xlsx"

	// discord caps a member list page at 1000
	memberPageSize = 1000

	// slash command handlers must answer within discord's interaction window
	commandTimeout = 10 * time.Second
	auditTimeout   = 2 * time.Minute

	colorTierThree = 0x2ECC71
	colorNoRole    = 0xE74C3C
	colorUnknown   = 0x95A5A6
)
