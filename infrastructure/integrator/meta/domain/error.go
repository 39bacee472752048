package metadomain

import (
	"errors"
	"fmt"
)

// ErrorResponse representa a estrutura de erro da API do Meta
type ErrorResponse struct {
	Error ErrorDetails `json:"error"`
}

// ErrorDetails contém os detalhes de erro da API do Meta
type ErrorDetails struct {
	Message      string      `json:"message"`
	Type         string      `json:"type"`
	Code         int         `json:"code"`
	ErrorSubcode int         `json:"error_subcode,omitempty"`
	FBTraceID    string      `json:"fbtrace_id"`
	ErrorData    interface{} `json:"error_data,omitempty"`
}

// IsTokenExpired verifica se o erro é de token expirado
func (e *ErrorResponse) IsTokenExpired() bool {
	// O código 190 representa "token expirado" nas respostas da API do Meta
	// Possíveis subcódigos relacionados a problemas de token: 460, 463, 467
	return e.Error.Code == 190 ||
		(e.Error.Type == "OAuthException" && (e.Error.ErrorSubcode == 460 || e.Error.ErrorSubcode == 463 || e.Error.ErrorSubcode == 467))
}

// IsRateLimited verifica se o erro indica limitação de chamadas pela API.
// Códigos conhecidos: 4 (nível de app), 17 (nível de usuário), 32 (nível de
// página) e 613 (limite customizado)
func (e *ErrorResponse) IsRateLimited() bool {
	switch e.Error.Code {
	case 4, 17, 32, 613:
		return true
	}
	return false
}

// AuthError indica credencial ausente, inválida ou expirada
type AuthError struct {
	Message string
	Cause   error
}

func (e *AuthError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("erro de autenticação: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("erro de autenticação: %s", e.Message)
}

func (e *AuthError) Unwrap() error { return e.Cause }

func NewAuthError(message string, cause error) *AuthError {
	return &AuthError{Message: message, Cause: cause}
}

// ThrottleError indica que a API limitou a taxa de chamadas. É tratado
// internamente pelo orquestrador de requisições e só vaza para o chamador
// convertido em ProviderError quando as tentativas se esgotam
type ThrottleError struct {
	StatusCode int
	Response   *ErrorResponse
}

func (e *ThrottleError) Error() string {
	if e.Response != nil {
		return fmt.Sprintf("limite de chamadas atingido (code %d): %s", e.Response.Error.Code, e.Response.Error.Message)
	}
	return fmt.Sprintf("limite de chamadas atingido (status %d)", e.StatusCode)
}

// ProviderError representa qualquer outro erro 4xx/5xx retornado pela API,
// preservando a mensagem e os códigos originais para diagnóstico
type ProviderError struct {
	StatusCode int
	Response   *ErrorResponse
	Body       string
}

func (e *ProviderError) Error() string {
	if e.Response != nil {
		return fmt.Sprintf("erro na resposta da API. Status: %d, Code: %d, Mensagem: %s",
			e.StatusCode, e.Response.Error.Code, e.Response.Error.Message)
	}
	return fmt.Sprintf("erro na resposta da API. Status: %d, Corpo: %s", e.StatusCode, e.Body)
}

// NetworkError representa falha de transporte ou timeout antes de qualquer
// resposta da API
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("erro de comunicação com a API: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// IsThrottle reporta se o erro (em qualquer nível da cadeia) é de rate limit
func IsThrottle(err error) bool {
	var throttle *ThrottleError
	return errors.As(err, &throttle)
}
