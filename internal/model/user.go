package model

// User is the authenticated caller, taken from the bearer token claims.
// Accounts live with the identity provider; nothing about them is stored here.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}
