package model

// EvictionMode selects how the conversation memory decides to drop old turns.
type EvictionMode string

const (
	// EvictByTokens evicts when the usage reported for the last exchange
	// exceeds the token budget.
	EvictByTokens EvictionMode = "tokens"

	// EvictByMessageCount evicts when the history holds more turns than the
	// message budget, regardless of reported usage.
	EvictByMessageCount EvictionMode = "messages"
)

// Profile holds the static facts about a backend that the exchange engine
// depends on. It is selected once at startup and never changes.
type Profile struct {
	// TokenUsage is true when the backend reports token counts. Otherwise the
	// usage metric of an exchange is its elapsed time in seconds.
	TokenUsage bool

	Eviction EvictionMode
}

// TokenMetered is the profile of backends that report token usage.
var TokenMetered = Profile{TokenUsage: true, Eviction: EvictByTokens}

// MessageCounted is the profile of backends without usable token metering.
var MessageCounted = Profile{TokenUsage: false, Eviction: EvictByMessageCount}
