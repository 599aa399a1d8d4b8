package model

import "time"

// ModerationStatus is the visibility of a chat message.
type ModerationStatus string

const (
	ModerationVisible     ModerationStatus = "VISIBLE"
	ModerationHiddenAuto  ModerationStatus = "HIDDEN_AUTO"
	ModerationHiddenAdmin ModerationStatus = "HIDDEN_ADMIN"
)

// ParseModerationStatus converts a case-insensitive name into a ModerationStatus.
func ParseModerationStatus(s string) (ModerationStatus, error) {
	m := ModerationStatus(normalizeEnum(s))
	switch m {
	case ModerationVisible, ModerationHiddenAuto, ModerationHiddenAdmin:
		return m, nil
	}
	return "", &EnumError{Kind: "moderation status", Value: s}
}

// Message is a single chat message.
type Message struct {
	ID               string           `json:"_id" yaml:"id"`
	ChatID           string           `json:"chatID" yaml:"chat_id"`
	Sender           Ref              `json:"senderID" yaml:"sender"`
	Content          string           `json:"content" yaml:"content"`
	RawContent       string           `json:"rawContent,omitempty" yaml:"raw_content,omitempty"`
	Type             string           `json:"type,omitempty" yaml:"type,omitempty"`
	DateTime         string           `json:"dateTime,omitempty" yaml:"date_time,omitempty"`
	CreatedAt        time.Time        `json:"createdAt" yaml:"created_at"`
	UpdatedAt        *time.Time       `json:"updatedAt,omitempty" yaml:"updated_at,omitempty"`
	ToxicityScore    *float64         `json:"toxicityScore,omitempty" yaml:"toxicity_score,omitempty"`
	ModerationStatus ModerationStatus `json:"moderationStatus,omitempty" yaml:"moderation_status,omitempty"`
}

// Chat is a conversation between members.
type Chat struct {
	ID        string    `json:"_id" yaml:"id"`
	Members   []Ref     `json:"members" yaml:"members"`
	CreatedAt time.Time `json:"createdAt" yaml:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" yaml:"updated_at"`
}
