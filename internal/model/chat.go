package model

import "time"

// Chat is a Telegram chat that has talked to the bot and receives digests.
type Chat struct {
	ID        int64 `gorm:"primaryKey;autoIncrement:false"`
	Username  string
	FirstName string
	CreatedAt time.Time
	UpdatedAt time.Time
}
