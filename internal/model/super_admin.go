package model

import "time"

// SuperAdmin is a platform operator. Stored in its own table and
// authenticated against a separate signing secret; never interchangeable
// with a tenant user.
type SuperAdmin struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Email     string    `json:"email" gorm:"type:varchar(100);not null;uniqueIndex"`
	Password  string    `json:"-" gorm:"type:varchar(255);not null"`
	Name      string    `json:"name" gorm:"type:varchar(100);not null"`
	CreatedAt time.Time `json:"created_at"`
}
