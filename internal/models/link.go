package models

import "time"

// Link is a confirmed one-to-one association between a Discord account and a
// Minecraft account.
type Link struct {
	MinecraftID string `json:"minecraft_id" db:"minecraft"`
	DiscordID   string `json:"discord_id" db:"discord"`
}

// PendingAuthorization is an in-flight linking attempt keyed by Minecraft id.
type PendingAuthorization struct {
	MinecraftID string    `json:"mc_id" db:"mc_id"`
	AuthCode    string    `json:"auth_code" db:"auth_code"`
	IssuedAt    time.Time `json:"issued_at" db:"issued_at"`
}

// LinkSide names which requested identifier already belongs to a link.
type LinkSide string

const (
	SideDiscord   LinkSide = "discord"
	SideMinecraft LinkSide = "minecraft"
	SideBoth      LinkSide = "both"
)
