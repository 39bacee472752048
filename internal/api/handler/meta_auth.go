package handler

import (
	"net/http"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	metadomain "github.com/vfg2006/warroom-ads-api/infrastructure/integrator/meta/domain"
	"github.com/vfg2006/warroom-ads-api/infrastructure/integrator/meta/metaclient"
	"github.com/vfg2006/warroom-ads-api/pkg/apiErrors"
)

type ExchangeTokenRequest struct {
	Code string `json:"code"`
}

type SetTokenRequest struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in,omitempty"`
}

type RevokeTokenRequest struct {
	AccessToken string `json:"access_token,omitempty"`
}

// MetaAuthorizationURL retorna a URL de autorização OAuth2 do provedor para o
// frontend redirecionar o usuário
func MetaAuthorizationURL(tokens *metaclient.TokenManager) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		state := r.URL.Query().Get("state")

		var scopes []string
		if raw := r.URL.Query().Get("scopes"); raw != "" {
			if err := json.Unmarshal([]byte(raw), &scopes); err != nil {
				apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "Lista de escopos inválida", nil)
				return
			}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"authorization_url": tokens.BuildAuthorizationURL(state, scopes),
		})
	})
}

// MetaExchangeToken troca o código de autorização pelo token de acesso e em
// seguida pelo token de longa duração
func MetaExchangeToken(tokens *metaclient.TokenManager) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ExchangeTokenRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Formato de requisição inválido", nil)
			return
		}

		if req.Code == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "Código de autorização é obrigatório", nil)
			return
		}

		token, err := tokens.ExchangeCodeForToken(r.Context(), req.Code)
		if err != nil {
			handleMetaAuthError(w, err)
			return
		}

		longLived, err := tokens.ExchangeForLongLivedToken(r.Context(), token.AccessToken)
		if err != nil {
			// O token de curta duração já está armazenado e utilizável
			logrus.WithError(err).Warn("auth: falha ao trocar por token de longa duração")
			longLived = token
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"token_type": longLived.TokenType,
			"expires_in": longLived.ExpiresIn,
			"expires_at": tokens.ExpiresAt(),
		})
	})
}

// MetaSetToken define manualmente a credencial corrente, para restaurar uma
// sessão obtida fora do fluxo OAuth
func MetaSetToken(tokens *metaclient.TokenManager) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req SetTokenRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Formato de requisição inválido", nil)
			return
		}

		if req.AccessToken == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "Token de acesso é obrigatório", nil)
			return
		}

		tokens.SetToken(&metadomain.TokenRecord{
			AccessToken: req.AccessToken,
			TokenType:   "bearer",
			ExpiresIn:   req.ExpiresIn,
		})

		w.WriteHeader(http.StatusNoContent)
	})
}

// MetaVerifyToken consulta a validade do token corrente junto ao provedor
func MetaVerifyToken(tokens *metaclient.TokenManager) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		current := tokens.CurrentToken()
		if current == nil || current.AccessToken == "" {
			apiErrors.WriteError(w, apiErrors.ErrInvalidToken, "Nenhum token de acesso configurado", nil)
			return
		}

		info := tokens.VerifyToken(r.Context(), current.AccessToken)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(info)
	})
}

// MetaRefreshToken renova a credencial corrente via troca de longa duração
func MetaRefreshToken(tokens *metaclient.TokenManager) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := tokens.Refresh(r.Context(), "")
		if err != nil {
			handleMetaAuthError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"token_type": token.TokenType,
			"expires_in": token.ExpiresIn,
			"expires_at": tokens.ExpiresAt(),
		})
	})
}

// MetaRevokeToken revoga as permissões do token e descarta a credencial
func MetaRevokeToken(tokens *metaclient.TokenManager) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req RevokeTokenRequest
		// Corpo vazio revoga o token corrente
		_ = json.NewDecoder(r.Body).Decode(&req)

		token := req.AccessToken
		if token == "" {
			current := tokens.CurrentToken()
			if current == nil || current.AccessToken == "" {
				apiErrors.WriteError(w, apiErrors.ErrInvalidToken, "Nenhum token de acesso configurado", nil)
				return
			}
			token = current.AccessToken
		}

		revoked := tokens.Revoke(r.Context(), token)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]bool{
			"revoked": revoked,
		})
	})
}

func handleMetaAuthError(w http.ResponseWriter, err error) {
	var authErr *metadomain.AuthError
	if errors.As(err, &authErr) {
		apiErrors.WriteError(w, apiErrors.ErrInvalidCredentials, authErr.Message, nil)
		return
	}

	var netErr *metadomain.NetworkError
	if errors.As(err, &netErr) {
		apiErrors.WriteError(w, apiErrors.ErrCommunication, "Falha de comunicação com o provedor", nil)
		return
	}

	logrus.WithError(err).Error("auth: erro inesperado no fluxo OAuth")
	apiErrors.WriteError(w, apiErrors.ErrExternalService, "Erro no provedor de autenticação", nil)
}
