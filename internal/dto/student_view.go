package dto

// StudentView is a student as shown on the directory page.
type StudentView struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Stream   string `json:"stream"`
	ImageURL string `json:"imageUrl"`
}
