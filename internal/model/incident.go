package model

import "time"

// IncidentState is the lifecycle state derived from the persisted
// resolved/assigned_to pair. It is never stored as its own column.
type IncidentState string

const (
	IncidentStateOpen     IncidentState = "open"
	IncidentStateAssigned IncidentState = "assigned"
	IncidentStateResolved IncidentState = "resolved"
)

// Incident represents a reported neighborhood-safety issue and its
// lifecycle status.
type Incident struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	Title       string     `json:"title" gorm:"size:100;not null"`
	Description string     `json:"description" gorm:"type:text;not null"`
	Location    string     `json:"location" gorm:"size:1000;not null"`
	Lat         float64    `json:"lat" gorm:"not null"`
	Lng         float64    `json:"lng" gorm:"not null"`
	CreatedAt   time.Time  `json:"created_at"`
	Resolved    bool       `json:"resolved" gorm:"default:false;index"`
	ResolvedAt  *time.Time `json:"resolved_at"`
	// AssignedTo is a weak reference to users.username; lookup only.
	AssignedTo *string `json:"assigned_to" gorm:"size:100;index"`
}

// State derives the lifecycle tag on load. Resolved is terminal.
func (i *Incident) State() IncidentState {
	switch {
	case i.Resolved:
		return IncidentStateResolved
	case i.AssignedTo != nil:
		return IncidentStateAssigned
	default:
		return IncidentStateOpen
	}
}
