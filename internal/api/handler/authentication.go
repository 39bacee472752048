package handler

import (
	"net/http"

	"github.com/pkg/errors"
	"github.com/vfg2006/warroom-ads-api/internal/usecases/authenticating"
	"github.com/vfg2006/warroom-ads-api/pkg/apiErrors"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func Login(service authenticating.Authenticator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest

		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Formato de requisição inválido", nil)
			return
		}

		token, err := service.LoginUser(req.Email, req.Password)
		if err != nil {
			handleLoginError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"token": token,
		})
	}
}

// handleLoginError converte erros de autenticação em respostas padronizadas
func handleLoginError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, authenticating.ErrInvalidCredentials):
		apiErrors.WriteError(w, apiErrors.ErrInvalidCredentials, "Credenciais inválidas", nil)
	case errors.Is(err, authenticating.ErrNotConfigured):
		apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Autenticação não configurada", nil)
	default:
		apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao realizar login", nil)
	}
}
