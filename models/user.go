package models

// User is the mock signed-in identity stored under the peachme-user key.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
