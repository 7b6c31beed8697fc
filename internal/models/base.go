package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BaseModel provides shared columns for all tables. Timestamps are kept as
// LocalTime so they hit the wire as "YYYY-MM-DD HH:mm:ss" local time, the
// format the back-office SPA expects.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt LocalTime `gorm:"type:timestamp" json:"created_at"`
	UpdatedAt LocalTime `gorm:"type:timestamp" json:"updated_at"`
}

// BeforeCreate ensures UUIDs and creation timestamps are set for new records.
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	now := NewLocalTime(time.Now())
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now
	return nil
}

// BeforeSave refreshes the update timestamp on every write.
func (b *BaseModel) BeforeSave(tx *gorm.DB) error {
	b.UpdatedAt = NewLocalTime(time.Now())
	return nil
}
