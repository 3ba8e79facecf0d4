package config

const (
	// MaxChatTitleLength is the maximum length for chat titles.
	// Limited to 255 to keep titles short and descriptive in listings.
	MaxChatTitleLength = 255

	// MaxMessageLength is the maximum length, in characters, of a single
	// message: the generate prompt or one stored turn.
	MaxMessageLength = 32 * 1024

	// MaxHistoryTurns caps the history accepted by generate and the
	// message list accepted by a chat update.
	MaxHistoryTurns = 500
)
