package metadomain

import "time"

// TokenRecord representa a resposta da API do Meta ao trocar um token
type TokenRecord struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// TokenInfo agrega o resultado da introspecção de um token via debug_token
type TokenInfo struct {
	IsValid   bool       `json:"is_valid"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Scopes    []string   `json:"scopes,omitempty"`
}

// CalculateTokenExpiration calcula a data de expiração do token com base no
// tempo de expiração em segundos, subtraindo 1 dia para renovar antes da
// expiração real
func CalculateTokenExpiration(expiresIn int64) time.Time {
	buffer := int64(24 * 60 * 60)
	safeExpiresIn := expiresIn - buffer

	if safeExpiresIn < 0 {
		safeExpiresIn = expiresIn / 2 // Se for muito curto, usamos metade do tempo
	}

	return time.Now().Add(time.Duration(safeExpiresIn) * time.Second)
}
