package database

import "time"

// User is a dashboard account. Company is the tenant the account may
// analyse.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	Company      string
	CreatedAt    *string
}

// Session is a login session keyed by an opaque token.
type Session struct {
	Token     string
	UserID    int64
	ExpiresAt time.Time
	CreatedAt *string
}

// TopicScore is one topic's probability in a logged inference.
type TopicScore struct {
	Label       string  `json:"label"`
	Probability float64 `json:"probability"`
}

// InferenceRecord is a logged free-text classification.
type InferenceRecord struct {
	ID            string
	Company       string
	InputText     string
	ProcessedText string
	TopLabel      string
	Scores        []TopicScore
	CreatedAt     *string
}

// Stats holds aggregate counts for the status command.
type Stats struct {
	Reviews        int
	Companies      int
	Provinces      int
	Topics         int
	Users          int
	ActiveSessions int
	Inferences     int
}
