package core

// Identity identifies the author of snapshot commits.
type Identity struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}
