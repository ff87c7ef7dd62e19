package domain

import "time"

// Record provides the identity and timestamp fields shared by catalog entities.
type Record struct {
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
	ID        string     `json:"id"`
}

// Touch updates the UpdatedAt timestamp to the current time.
func (r *Record) Touch() {
	r.UpdatedAt = time.Now().UTC()
}

// InitTimestamps sets both CreatedAt and UpdatedAt to now.
func (r *Record) InitTimestamps() {
	now := time.Now().UTC()
	r.CreatedAt = now
	r.UpdatedAt = now
}

// IsDeleted returns true if this entity has been soft-deleted.
func (r *Record) IsDeleted() bool {
	return r.DeletedAt != nil
}

// MarkDeleted soft-deletes the entity.
func (r *Record) MarkDeleted() {
	now := time.Now().UTC()
	r.DeletedAt = &now
	r.UpdatedAt = now
}
