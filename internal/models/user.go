package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// User is an application account. Roles only drive UI capabilities; the
// backend enforces authorization.
type User struct {
	ID       uint    `gorm:"primaryKey" json:"id"`
	Username string  `gorm:"uniqueIndex;size:100;not null" json:"username"`
	Email    string  `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password string  `gorm:"size:255;not null" json:"-"`
	Roles    RoleSet `gorm:"type:text" json:"roles"`
	Enabled  bool    `gorm:"not null;default:true" json:"enabled"`
}

func (u *User) EntityID() uint { return u.ID }

// RoleSet is a list of role identifiers such as ROLE_ADMIN. It decodes
// either plain strings or {"name": ...} objects and is stored comma-separated.
type RoleSet []string

func (r RoleSet) Has(role string) bool {
	for _, x := range r {
		if x == role {
			return true
		}
	}
	return false
}

func (r RoleSet) MarshalJSON() ([]byte, error) {
	if r == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(r))
}

func (r *RoleSet) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*r = nil
		return nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("roles: %w", err)
	}
	out := make(RoleSet, 0, len(raw))
	for _, item := range raw {
		var name string
		if err := json.Unmarshal(item, &name); err == nil {
			out = append(out, name)
			continue
		}
		var obj struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(item, &obj); err != nil {
			return fmt.Errorf("roles: %w", err)
		}
		out = append(out, obj.Name)
	}
	*r = out
	return nil
}

func (r RoleSet) Value() (driver.Value, error) {
	return strings.Join(r, ","), nil
}

func (r *RoleSet) Scan(src any) error {
	var s string
	switch v := src.(type) {
	case nil:
		*r = nil
		return nil
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("cannot scan %T into RoleSet", src)
	}
	*r = nil
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			*r = append(*r, part)
		}
	}
	return nil
}
