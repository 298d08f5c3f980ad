package domain

import "time"

// Zone is the top scoping unit for both access control and aid
// distribution. This core reads zones but never mutates them.
type Zone struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// Village belongs to a zone; households and profiles hang off villages.
type Village struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	ZoneID    string    `json:"zoneId" db:"zone_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
