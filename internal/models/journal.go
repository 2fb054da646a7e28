package models

import "time"

// Journal is a reference row for scope validation and certificate
// rendering. The engine never mutates journals; they are synced from the
// publishing platform.
type Journal struct {
	ID         int64     `json:"id" db:"id"`
	Name       string    `json:"name" db:"name"`
	Discipline string    `json:"discipline" db:"discipline"`
	Country    string    `json:"country" db:"country"`
	IsActive   bool      `json:"is_active" db:"is_active"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
