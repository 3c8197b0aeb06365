package model

import (
	"time"
)

type Goal struct {
	ID        string     `db:"id" json:"id"`
	UserID    string     `db:"user_id" json:"user_id"`
	Content   string     `db:"content" json:"content"`
	Reason    *string    `db:"reason" json:"reason"`
	Timeline  *string    `db:"timeline" json:"timeline"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt *time.Time `db:"updated_at" json:"updated_at"`
}
