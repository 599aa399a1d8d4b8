package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/skillexchange/modpanel/internal/model"
)

func decode[T any](raw json.RawMessage) (T, error) {
	var out T
	if len(raw) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, networkError(err)
	}
	return out, nil
}

func get[T any](ctx context.Context, c *Client, endpoint string) (T, error) {
	raw, err := c.Do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		var zero T
		return zero, err
	}
	return decode[T](raw)
}

func path(prefix, id string) string {
	return prefix + url.PathEscape(id)
}

// ---------------------------------------------------------------------------
// Auth
// ---------------------------------------------------------------------------

// Login exchanges credentials for an access/refresh token pair.
func (c *Client) Login(ctx context.Context, email, password string) (*model.LoginResponse, error) {
	raw, err := c.Do(ctx, http.MethodPost, "/user/login", map[string]string{
		"email":    email,
		"password": password,
	}, WithoutRefresh())
	if err != nil {
		return nil, err
	}
	resp, err := decode[model.LoginResponse](raw)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Logout revokes the given refresh token.
func (c *Client) Logout(ctx context.Context, refreshToken string) error {
	_, err := c.Do(ctx, http.MethodPost, "/user/logout", map[string]string{"token": refreshToken}, WithoutRefresh())
	return err
}

// RefreshToken trades a refresh token for a new access token. The refresh
// token is sent as the bearer credential.
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (*model.TokenResponse, error) {
	raw, err := c.Do(ctx, http.MethodGet, "/token/refresh-token", nil, WithBearer(refreshToken))
	if err != nil {
		return nil, err
	}
	resp, err := decode[model.TokenResponse](raw)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

// GetAllUsers lists every account.
func (c *Client) GetAllUsers(ctx context.Context) ([]model.User, error) {
	return get[[]model.User](ctx, c, "/user/find")
}

// GetUserByID fetches a single account.
func (c *Client) GetUserByID(ctx context.Context, userID string) (*model.User, error) {
	u, err := get[model.User](ctx, c, path("/user/findbyid/", userID))
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateUser patches an account with the given fields.
func (c *Client) UpdateUser(ctx context.Context, userID string, fields map[string]interface{}) error {
	if fields == nil {
		fields = map[string]interface{}{}
	}
	_, err := c.Do(ctx, http.MethodPatch, path("/user/update/", userID), fields)
	return err
}

// DeleteUser soft-deletes an account.
func (c *Client) DeleteUser(ctx context.Context, userID string) error {
	_, err := c.Do(ctx, http.MethodDelete, path("/user/delete/", userID), nil)
	return err
}

// BanUser bans an account with the given reason.
func (c *Client) BanUser(ctx context.Context, userID, reason string) error {
	_, err := c.Do(ctx, http.MethodPatch, path("/user/ban/", userID), map[string]string{"banReason": reason})
	return err
}

// ---------------------------------------------------------------------------
// Reports
// ---------------------------------------------------------------------------

// GetAllReports lists every report.
func (c *Client) GetAllReports(ctx context.Context) ([]model.Report, error) {
	return get[[]model.Report](ctx, c, "/report/all")
}

// ResolveReport marks a report resolved on the backend.
func (c *Client) ResolveReport(ctx context.Context, reportID string) error {
	_, err := c.Do(ctx, http.MethodPut, path("/report/resolve/", reportID), nil)
	return err
}

// DeleteReport removes a report.
func (c *Client) DeleteReport(ctx context.Context, reportID string) error {
	_, err := c.Do(ctx, http.MethodDelete, path("/report/", reportID), nil)
	return err
}

// AddReport files a new report.
func (c *Client) AddReport(ctx context.Context, r model.NewReport) (*model.Report, error) {
	raw, err := c.Do(ctx, http.MethodPost, "/report/add", r)
	if err != nil {
		return nil, err
	}
	rep, err := decode[model.Report](raw)
	if err != nil {
		return nil, err
	}
	return &rep, nil
}

// ---------------------------------------------------------------------------
// Messages and chats
// ---------------------------------------------------------------------------

// GetMessagesByChatID lists the messages of a chat.
func (c *Client) GetMessagesByChatID(ctx context.Context, chatID string) ([]model.Message, error) {
	return get[[]model.Message](ctx, c, path("/message/find/", chatID))
}

// DeleteMessage deletes a message on behalf of its sender.
func (c *Client) DeleteMessage(ctx context.Context, messageID, senderID string) error {
	_, err := c.Do(ctx, http.MethodDelete, path("/message/delete/", messageID), map[string]string{"senderID": senderID})
	return err
}

// GetAllChats lists every chat.
func (c *Client) GetAllChats(ctx context.Context) ([]model.Chat, error) {
	return get[[]model.Chat](ctx, c, "/chat/find")
}

// GetChatsByUserID lists the chats a user is a member of.
func (c *Client) GetChatsByUserID(ctx context.Context, userID string) ([]model.Chat, error) {
	return get[[]model.Chat](ctx, c, path("/chat/find/", userID))
}
