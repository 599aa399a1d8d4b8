package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Ref points at a user either by bare ID or by an embedded (possibly
// partial) user document. The backend populates some references and not
// others, so every read goes through ResolveID.
type Ref struct {
	ID   string
	User *User
}

// IDRef returns a Ref holding a bare ID.
func IDRef(id string) Ref { return Ref{ID: id} }

// UserRef returns a Ref embedding u.
func UserRef(u User) Ref { return Ref{User: &u} }

// ResolveID returns the referenced user ID regardless of which form the
// reference arrived in.
func (r Ref) ResolveID() string {
	if r.User != nil {
		return r.User.ID
	}
	return r.ID
}

// IsEmbedded reports whether the reference carries a user document.
func (r Ref) IsEmbedded() bool { return r.User != nil }

// UnmarshalJSON accepts either a JSON string or a user object.
func (r *Ref) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*r = Ref{}
		return nil
	}
	switch data[0] {
	case '"':
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*r = Ref{ID: id}
		return nil
	case '{':
		var u User
		if err := json.Unmarshal(data, &u); err != nil {
			return err
		}
		*r = Ref{User: &u}
		return nil
	default:
		return fmt.Errorf("user reference: unexpected JSON %s", string(data))
	}
}

// MarshalJSON writes the reference back in the shape it was received.
func (r Ref) MarshalJSON() ([]byte, error) {
	if r.User != nil {
		return json.Marshal(r.User)
	}
	return json.Marshal(r.ID)
}

// MarshalYAML flattens the reference to its ID for human-readable output.
func (r Ref) MarshalYAML() (interface{}, error) {
	return r.ResolveID(), nil
}
