package domain

import "github.com/golang-jwt/jwt/v5"

// Credentials é o payload de login da API
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Claims são as claims do token JWT emitido pela API
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}
