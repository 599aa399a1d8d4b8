package model

// Session is the persisted admin session blob. The same JSON is written to
// the session cookie and, when RememberMe is set, to local storage.
type Session struct {
	Email        string `json:"email"`
	User         *User  `json:"user"`
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
	RememberMe   bool   `json:"rememberMe"`
}
