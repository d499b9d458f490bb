package models

import "time"

// Project is a portfolio entry stored in the projects data file.
type Project struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Image       string    `json:"image,omitempty"`
	Tags        []string  `json:"tags"`
	GitHub      string    `json:"github,omitempty"`
	Demo        string    `json:"demo,omitempty"`
	Featured    bool      `json:"featured"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
