package models

// Category is a catalog node. ParentID links to another category; deleting a
// parent does not touch its children.
type Category struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	ParentID *int64 `json:"parent_id"`
	IsActive bool   `json:"is_active"`
}

// CategoryView is the cached projection of a category.
type CategoryView struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	ParentID *int64 `json:"parent_id"`
	Slug     string `json:"slug"`
	IsActive bool   `json:"is_active"`
}

func (c *Category) View() CategoryView {
	return CategoryView{
		ID:       c.ID,
		Name:     c.Name,
		ParentID: c.ParentID,
		Slug:     c.Slug,
		IsActive: c.IsActive,
	}
}
