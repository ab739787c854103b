package model

// DefaultCategoryName is the name of the lazily-created fallback category.
// Programs that lose their category (or never had one) are attached to the
// owner's category with this name.
const DefaultCategoryName = "uncategorized"

// Category groups programs. Names are free to collide; only the fallback
// category is unique per owner (one "uncategorized" row per created_by).
type Category struct {
	ID        string `json:"id"        db:"id"`
	Name      string `json:"name"      db:"name"`
	CreatedBy string `json:"createdBy" db:"created_by"`
}

// IsDefault reports whether this is the owner's fallback category.
func (c *Category) IsDefault() bool {
	return c.Name == DefaultCategoryName
}

// CategoryPatch lists the optionally-settable fields of a category update.
// Nil pointers mean "leave untouched".
type CategoryPatch struct {
	Name *string `json:"name"`
}
