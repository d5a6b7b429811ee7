package domain

// TokenVerification is the outcome of an explicit verify_token request
type TokenVerification struct {
	Valid   bool   `json:"valid"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// IssuedToken is returned by request_token
type IssuedToken struct {
	Message string `json:"message"`
	Email   string `json:"email"`
	Token   string `json:"token"`
}
