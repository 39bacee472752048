package handler

import (
	"net/http"

	"github.com/vfg2006/warroom-ads-api/infrastructure/integrator/meta/metaclient"
)

// StatusResponse consolida o diagnóstico da integração num único payload
type StatusResponse struct {
	Token     TokenStatus            `json:"token"`
	RateLimit metaclient.QuotaStatus `json:"rate_limit"`
	Cache     metaclient.CacheStats  `json:"cache"`
}

type TokenStatus struct {
	Configured bool   `json:"configured"`
	ExpiresAt  string `json:"expires_at,omitempty"`
}

// MetaStatus reporta o estado do token, da quota e do cache
func MetaStatus(client metaclient.Client, tokens *metaclient.TokenManager) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		status := StatusResponse{
			RateLimit: client.RateLimitStatus(),
			Cache:     client.CacheStats(),
		}

		if current := tokens.CurrentToken(); current != nil && current.AccessToken != "" {
			status.Token.Configured = true
			if expiresAt := tokens.ExpiresAt(); !expiresAt.IsZero() {
				status.Token.ExpiresAt = expiresAt.Format("2006-01-02T15:04:05Z07:00")
			}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(status)
	})
}

// MetaRequestLogs retorna o log das últimas requisições feitas ao provedor
func MetaRequestLogs(client metaclient.Client) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(client.RequestLogs())
	})
}

// MetaClearRequestLogs descarta o log de requisições
func MetaClearRequestLogs(client metaclient.Client) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		client.ClearLogs()
		w.WriteHeader(http.StatusNoContent)
	})
}

// MetaClearCache limpa o cache de respostas. Com o parâmetro pattern, remove
// apenas as entradas que casam com a expressão regular
func MetaClearCache(client metaclient.Client) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if pattern := r.URL.Query().Get("pattern"); pattern != "" {
			if err := client.InvalidateCache(pattern); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			w.WriteHeader(http.StatusNoContent)
			return
		}

		client.ClearCache()
		w.WriteHeader(http.StatusNoContent)
	})
}
