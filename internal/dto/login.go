package dto

type LoginRequest struct {
	// Identifier is an email address or a phone number.
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}
