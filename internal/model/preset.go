package model

import "time"

// Preset is a user-named grouping of categories and programs.
//
// CategoryIDs are weak references (ids of categories that existed at save
// time); Programs are plain names, as saved by the client. Neither list is
// kept referentially consistent by the store.
//
// Invariant: (Name, CreatedBy) is unique — creation and rename both fail
// with a conflict if violated.
type Preset struct {
	ID          string    `json:"id"          db:"id"`
	Name        string    `json:"name"        db:"name"`
	Description string    `json:"description" db:"description"`
	CategoryIDs []string  `json:"categoryIds" db:"category_ids"`
	Programs    []string  `json:"programs"    db:"programs"`
	CreatedBy   string    `json:"createdBy"   db:"created_by"`
	IsPublic    bool      `json:"isPublic"    db:"is_public"`
	CreatedAt   time.Time `json:"createdAt"   db:"created_at"`
}

// PresetPatch lists the optionally-settable fields of a preset update.
type PresetPatch struct {
	Name        *string   `json:"name"`
	Description *string   `json:"description"`
	CategoryIDs *[]string `json:"categoryIds"`
	Programs    *[]string `json:"programs"`
	IsPublic    *bool     `json:"isPublic"`
}
