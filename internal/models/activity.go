package models

import "gorm.io/gorm"

// Activity actions recorded by the backend. Other values may appear.
const (
	ActionCreate       = "CREATE"
	ActionUpdate       = "UPDATE"
	ActionDelete       = "DELETE"
	ActionLogin        = "LOGIN"
	ActionLogout       = "LOGOUT"
	ActionStatusChange = "STATUS_CHANGE"
)

// ActivityLog is an append-only audit entry.
type ActivityLog struct {
	ID         uint     `gorm:"primaryKey" json:"id"`
	Username   string   `gorm:"size:100;not null;index" json:"username"`
	UserRole   string   `gorm:"size:255;not null" json:"userRole"`
	Action     string   `gorm:"size:50;not null;index" json:"action"`
	EntityType string   `gorm:"size:50;not null;index" json:"entityType"`
	TargetID   *uint    `gorm:"column:entity_id" json:"entityId,omitempty"`
	Details    string   `gorm:"size:1000" json:"details,omitempty"`
	IPAddress  string   `gorm:"size:64;not null" json:"ipAddress"`
	CreatedAt  DateTime `gorm:"autoCreateTime:false;index" json:"createdAt"`
}

func (l *ActivityLog) EntityID() uint { return l.ID }

func (l *ActivityLog) BeforeCreate(*gorm.DB) error {
	if l.CreatedAt.IsZero() {
		l.CreatedAt = Now()
	}
	return nil
}

// ActivityFilterOptions lists the distinct values available for filtering.
type ActivityFilterOptions struct {
	Usernames   []string `json:"usernames"`
	EntityTypes []string `json:"entityTypes"`
	Actions     []string `json:"actions"`
}

// Page is one page of a paginated listing.
type Page[T any] struct {
	Content       []T   `json:"content"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
	Number        int   `json:"number"`
	Size          int   `json:"size"`
	First         bool  `json:"first"`
	Last          bool  `json:"last"`
}

// NewPage builds page metadata for content at index number.
func NewPage[T any](content []T, number, size int, total int64) Page[T] {
	pages := 0
	if size > 0 {
		pages = int((total + int64(size) - 1) / int64(size))
	}
	if content == nil {
		content = []T{}
	}
	return Page[T]{
		Content:       content,
		TotalElements: total,
		TotalPages:    pages,
		Number:        number,
		Size:          size,
		First:         number == 0,
		Last:          number >= pages-1,
	}
}
