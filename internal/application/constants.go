package application

import "time"

const (
	defaultOracleTimeout = 5 * time.Second

	// Link export
	exportSheetName      = "Links"
	exportHeaderColor    = "5865F2" // Discord blurple
	exportDiscordWidth   = 30
	exportMinecraftWidth = 36
)
