package dto

type RegisterRequest struct {
	FullName    string `json:"fullName"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	Password    string `json:"password"`
}

// AuthResponse is returned by register, login and refresh.
type AuthResponse struct {
	User   UserView  `json:"user"`
	Tokens TokenPair `json:"tokens"`
}
