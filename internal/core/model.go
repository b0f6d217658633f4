package core

// Tier is the discrete priority classification of a message.
type Tier string

const (
	// TierRed marks messages the recipient must act on urgently.
	TierRed Tier = "red"
	// TierBlue marks messages worth a look soon.
	TierBlue Tier = "blue"
	// TierNone leaves the message unflagged. Every failure in the pipeline
	// also degrades to this tier.
	TierNone Tier = "none"
)

// SentinelScore marks a care score that could not be obtained.
const SentinelScore = -1.0

// ExtractedMessage is the bounded snippet pulled out of one message file.
// Text is the subject plus the best-effort plain-text body, truncated to the
// configured budget.
type ExtractedMessage struct {
	Sender  string
	Subject string
	Text    string
}

// Result is the outcome of classifying one message file.
type Result struct {
	Tier  Tier
	Score float64
}

// Entry is one structured classifier log record.
type Entry struct {
	TS             string  `json:"ts"`
	Score          float64 `json:"score"`
	Classification string  `json:"classification"`
	Subject        string  `json:"subject"`
	Sender         string  `json:"sender"`
}
