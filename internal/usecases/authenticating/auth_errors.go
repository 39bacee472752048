package authenticating

import "errors"

// Erros de autenticação da API própria
var (
	ErrInvalidCredentials = errors.New("credenciais inválidas")
	ErrInvalidToken       = errors.New("token inválido")
	ErrExpiredToken       = errors.New("token expirado")
	ErrNotConfigured      = errors.New("credencial de operador não configurada")
)
