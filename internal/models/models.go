package models

import "time"

type User struct {
	ID           uint    `gorm:"primaryKey"`
	Email        string  `gorm:"uniqueIndex;size:128;not null"`
	PasswordHash string  `gorm:"not null"`
	Token        *string `gorm:"uniqueIndex;size:64"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
