package model

// Program belongs to at most one category via a weak string reference.
// An empty CategoryID means the program is pending reassignment to the
// owner's fallback category; dereferences must tolerate a missing target.
type Program struct {
	ID         string `json:"id"         db:"id"`
	Name       string `json:"name"       db:"name"`
	CategoryID string `json:"categoryId" db:"category_id"`
	CreatedBy  string `json:"createdBy"  db:"created_by"`
}

// ProgramPatch lists the optionally-settable fields of a program update.
type ProgramPatch struct {
	Name       *string `json:"name"`
	CategoryID *string `json:"categoryId"`
}
