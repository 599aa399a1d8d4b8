package model

// User is a platform account as returned by the backend. The backend owns
// these records; the moderation cache holds read-only copies keyed by ID.
type User struct {
	ID          string   `json:"_id" yaml:"id"`
	Username    string   `json:"username" yaml:"username"`
	Email       string   `json:"email" yaml:"email"`
	PhoneNumber string   `json:"phoneNumber,omitempty" yaml:"phone_number,omitempty"`
	Avatar      string   `json:"avatar,omitempty" yaml:"avatar,omitempty"`
	Description []string `json:"description,omitempty" yaml:"description,omitempty"`
	Skill       []string `json:"skill,omitempty" yaml:"skill,omitempty"`
	BirthDay    string   `json:"birthDay,omitempty" yaml:"birth_day,omitempty"`
	RankElo     *float64 `json:"rankElo,omitempty" yaml:"rank_elo,omitempty"`
	IsDeleted   bool     `json:"isDelete,omitempty" yaml:"is_deleted"`
	IsAdmin     bool     `json:"isAdmin,omitempty" yaml:"is_admin"`
	Banned      bool     `json:"banned,omitempty" yaml:"banned"`
	BanReason   string   `json:"banReason,omitempty" yaml:"ban_reason,omitempty"`
	CreatedAt   string   `json:"createdAt,omitempty" yaml:"created_at,omitempty"`
	UpdatedAt   string   `json:"updatedAt,omitempty" yaml:"updated_at,omitempty"`
}

// UserStatus is the moderation state of an account. The backend has no
// first-class status field, so it is approximated from the delete and ban
// flags.
type UserStatus string

const (
	UserStatusActive    UserStatus = "ACTIVE"
	UserStatusSuspended UserStatus = "SUSPENDED"
	UserStatusBanned    UserStatus = "BANNED"
	UserStatusDeleted   UserStatus = "DELETED"
)

// Valid reports whether s is a known user status.
func (s UserStatus) Valid() bool {
	switch s {
	case UserStatusActive, UserStatusSuspended, UserStatusBanned, UserStatusDeleted:
		return true
	}
	return false
}

// ParseUserStatus converts a case-insensitive name into a UserStatus.
func ParseUserStatus(s string) (UserStatus, error) {
	st := UserStatus(normalizeEnum(s))
	if !st.Valid() {
		return "", &EnumError{Kind: "user status", Value: s}
	}
	return st, nil
}

// StatusOf derives the moderation status of u from its flags.
func StatusOf(u User) UserStatus {
	switch {
	case u.IsDeleted:
		return UserStatusDeleted
	case u.Banned:
		return UserStatusBanned
	default:
		return UserStatusActive
	}
}
