package model

import "time"

// IncidentArchive is the permanent record of resolved incidents. A single
// record accumulates one CSV row per resolution; it is never rotated,
// split, or truncated. Only the most recently created record is ever read
// or appended to.
type IncidentArchive struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	CreatedAt  time.Time `json:"created_at"`
	CSVContent string    `json:"csv_content" gorm:"type:longtext;not null;column:csv_content"`
}
