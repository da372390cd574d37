package domain

import "time"

// DefaultSessionTTL bounds durable session state. Matches the 24h expiry
// applied to both the raw context tier and the Q&A history.
const DefaultSessionTTL = 24 * time.Hour

// QAEntry is one question/answer exchange, append-only and ordered by time.
type QAEntry struct {
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Timestamp time.Time `json:"timestamp"`
}

// Answer is the result of running a question through the answer cascade.
type Answer struct {
	Text       string   `json:"answer"`
	Sources    []string `json:"sources"`
	SessionID  string   `json:"session_id"`
	Confidence float64  `json:"confidence"`
	Strategy   string   `json:"strategy,omitempty"`
}

// SessionStats summarizes indexed state for a session.
type SessionStats struct {
	SessionID   string   `json:"session_id"`
	TotalChunks int      `json:"total_chunks"`
	URLs        []string `json:"urls"`
}
