package model

// Student is an enrolled person with exactly one reference image.
type Student struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Stream    string `json:"stream"` // Free-text group label, e.g. class or section
	ImagePath string `json:"image_path"`
}
