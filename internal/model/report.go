package model

import "time"

// ReportStatus is the review state of a report. The backend only stores an
// isResolved flag; OPEN and RESOLVED are derived from it on load, REJECTED
// exists only locally.
type ReportStatus string

const (
	ReportStatusOpen        ReportStatus = "OPEN"
	ReportStatusUnderReview ReportStatus = "UNDER_REVIEW"
	ReportStatusResolved    ReportStatus = "RESOLVED"
	ReportStatusRejected    ReportStatus = "REJECTED"
)

// Valid reports whether s is a known report status.
func (s ReportStatus) Valid() bool {
	switch s {
	case ReportStatusOpen, ReportStatusUnderReview, ReportStatusResolved, ReportStatusRejected:
		return true
	}
	return false
}

// IsOpen reports whether the report still needs attention.
func (s ReportStatus) IsOpen() bool {
	return s == ReportStatusOpen || s == ReportStatusUnderReview
}

// ParseReportStatus converts a case-insensitive name into a ReportStatus.
func ParseReportStatus(s string) (ReportStatus, error) {
	st := ReportStatus(normalizeEnum(s))
	if !st.Valid() {
		return "", &EnumError{Kind: "report status", Value: s}
	}
	return st, nil
}

// TargetType is the kind of entity a report is filed against.
type TargetType string

const (
	TargetTypeUser    TargetType = "USER"
	TargetTypeMessage TargetType = "MESSAGE"
)

// ParseTargetType converts a case-insensitive name into a TargetType.
func ParseTargetType(s string) (TargetType, error) {
	t := TargetType(normalizeEnum(s))
	if t != TargetTypeUser && t != TargetTypeMessage {
		return "", &EnumError{Kind: "target type", Value: s}
	}
	return t, nil
}

// ReasonCode classifies why a report was filed.
type ReasonCode string

const (
	ReasonHarassment ReasonCode = "HARASSMENT"
	ReasonSpam       ReasonCode = "SPAM"
	ReasonHate       ReasonCode = "HATE"
	ReasonScam       ReasonCode = "SCAM"
	ReasonViolence   ReasonCode = "VIOLENCE"
	ReasonOther      ReasonCode = "OTHER"
)

// ParseReasonCode converts a case-insensitive name into a ReasonCode.
func ParseReasonCode(s string) (ReasonCode, error) {
	r := ReasonCode(normalizeEnum(s))
	switch r {
	case ReasonHarassment, ReasonSpam, ReasonHate, ReasonScam, ReasonViolence, ReasonOther:
		return r, nil
	}
	return "", &EnumError{Kind: "reason code", Value: s}
}

// Report is a complaint filed by one user against another.
type Report struct {
	ID                string       `json:"_id" yaml:"id"`
	Reporter          Ref          `json:"senderID" yaml:"reporter"`
	Target            Ref          `json:"targetID" yaml:"target"`
	Content           string       `json:"content" yaml:"content"`
	Evidence          string       `json:"evidence,omitempty" yaml:"evidence,omitempty"`
	IsDeleted         bool         `json:"isDeleted" yaml:"is_deleted"`
	IsResolved        bool         `json:"isResolved" yaml:"is_resolved"`
	CreatedAt         time.Time    `json:"createdAt" yaml:"created_at"`
	UpdatedAt         time.Time    `json:"updatedAt" yaml:"updated_at"`
	Status            ReportStatus `json:"status,omitempty" yaml:"status,omitempty"`
	TargetType        TargetType   `json:"targetType,omitempty" yaml:"target_type,omitempty"`
	ReasonCode        ReasonCode   `json:"reasonCode,omitempty" yaml:"reason_code,omitempty"`
	ResolutionNote    string       `json:"resolutionNote,omitempty" yaml:"resolution_note,omitempty"`
	ResolvedByAdminID string       `json:"resolvedByAdminId,omitempty" yaml:"resolved_by_admin_id,omitempty"`
	TargetMessageID   string       `json:"targetMessageId,omitempty" yaml:"target_message_id,omitempty"`
}

// NewReport is the request body for filing a report.
type NewReport struct {
	SenderID string `json:"senderID"`
	TargetID string `json:"targetID"`
	Content  string `json:"content"`
	Evidence string `json:"evidence,omitempty"`
}
