// Copyright (c) 2026 BVK Chaitanya

package gobs

// ServerState remembers the daemon's scan configuration across restarts.
type ServerState struct {
	// Games are the game identifiers the scanner cycles over.
	Games []string

	// Tiers are the enabled tier numbers, 1 through 5. Empty means all.
	Tiers []int

	// LowBalanceLimit is the balance threshold in minor units below
	// which the daemon pushes an alert. Zero disables the alert.
	LowBalanceLimit int64
}

// TelegramState remembers the chat ids of users who have talked to the bot,
// so notifications can be pushed without waiting for a new message.
type TelegramState struct {
	UserChatIDMap map[string]int64
}
