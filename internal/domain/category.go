package domain

// Category groups books for browsing. Slug is derived from Name and is unique.
type Category struct {
	Record
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
}
