package metaclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metadomain "github.com/vfg2006/warroom-ads-api/infrastructure/integrator/meta/domain"
	"github.com/vfg2006/warroom-ads-api/internal/config"
)

func tokenTestConfig(serverURL string) *config.Config {
	return &config.Config{
		Meta: config.Meta{
			URL:                serverURL,
			AuthBaseURL:        "https://www.facebook.com",
			Version:            "v19.0",
			AppID:              "app-id",
			AppSecret:          "app-secret",
			RedirectURI:        "http://localhost:3000/auth/meta/callback",
			RequestTimeoutSecs: 5,
		},
	}
}

func TestTokenManager_BuildAuthorizationURL(t *testing.T) {
	tm := NewTokenManager(tokenTestConfig("http://unused"))

	rawURL := tm.BuildAuthorizationURL("estado-xyz", []string{"ads_read", "email"})

	parsed, err := url.Parse(rawURL)
	require.NoError(t, err)

	assert.Equal(t, "www.facebook.com", parsed.Host)
	assert.Equal(t, "/v19.0/dialog/oauth", parsed.Path)

	query := parsed.Query()
	assert.Equal(t, "app-id", query.Get("client_id"))
	assert.Equal(t, "estado-xyz", query.Get("state"))
	assert.Equal(t, "code", query.Get("response_type"))

	scopes := strings.Split(query.Get("scope"), ",")
	assert.Contains(t, scopes, "ads_management")
	assert.Contains(t, scopes, "email")

	// Escopos repetidos não devem ser duplicados
	count := 0
	for _, s := range scopes {
		if s == "ads_read" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestTokenManager_ExchangeCodeForToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/oauth/access_token", r.URL.Path)
		assert.Equal(t, "codigo-abc", r.URL.Query().Get("code"))
		assert.Equal(t, "app-id", r.URL.Query().Get("client_id"))

		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "token-curto",
			"token_type":   "bearer",
			"expires_in":   5184000,
		})
	}))
	defer server.Close()

	tm := NewTokenManager(tokenTestConfig(server.URL))

	token, err := tm.ExchangeCodeForToken(context.Background(), "codigo-abc")
	require.NoError(t, err)
	assert.Equal(t, "token-curto", token.AccessToken)

	// A credencial trocada vira a corrente
	current := tm.CurrentToken()
	require.NotNil(t, current)
	assert.Equal(t, "token-curto", current.AccessToken)
	assert.False(t, tm.ExpiresAt().IsZero())
}

func TestTokenManager_ExchangeForLongLivedToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "fb_exchange_token", r.URL.Query().Get("grant_type"))
		assert.Equal(t, "token-curto", r.URL.Query().Get("fb_exchange_token"))

		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "token-longo",
			"token_type":   "bearer",
			"expires_in":   5184000,
		})
	}))
	defer server.Close()

	tm := NewTokenManager(tokenTestConfig(server.URL))

	token, err := tm.ExchangeForLongLivedToken(context.Background(), "token-curto")
	require.NoError(t, err)
	assert.Equal(t, "token-longo", token.AccessToken)
}

func TestTokenManager_ExchangeForLongLivedToken_TokenVazio(t *testing.T) {
	tm := NewTokenManager(tokenTestConfig("http://unused"))

	_, err := tm.ExchangeForLongLivedToken(context.Background(), "")

	var authErr *metadomain.AuthError
	assert.ErrorAs(t, err, &authErr)
}

func TestTokenManager_FetchTokenPreservaMensagemDoProvedor(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{
				"message": "Invalid verification code format.",
				"type":    "OAuthException",
				"code":    100,
			},
		})
	}))
	defer server.Close()

	tm := NewTokenManager(tokenTestConfig(server.URL))

	_, err := tm.ExchangeCodeForToken(context.Background(), "codigo-invalido")

	var authErr *metadomain.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Contains(t, authErr.Message, "Invalid verification code format")
}

func TestTokenManager_Refresh_SemRefreshTokenUsaTrocaDeLongaDuracao(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "fb_exchange_token", r.URL.Query().Get("grant_type"))

		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "token-renovado",
			"token_type":   "bearer",
			"expires_in":   5184000,
		})
	}))
	defer server.Close()

	tm := NewTokenManager(tokenTestConfig(server.URL))
	tm.SetToken(&metadomain.TokenRecord{AccessToken: "token-atual", ExpiresIn: 3600})

	token, err := tm.Refresh(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "token-renovado", token.AccessToken)
}

func TestTokenManager_Refresh_SemTokenDisponivel(t *testing.T) {
	tm := NewTokenManager(tokenTestConfig("http://unused"))

	_, err := tm.Refresh(context.Background(), "")

	var authErr *metadomain.AuthError
	assert.ErrorAs(t, err, &authErr)
}

func TestTokenManager_VerifyToken(t *testing.T) {
	t.Run("Token válido - retorna escopos e expiração", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/debug_token", r.URL.Path)
			assert.Equal(t, "token-teste", r.URL.Query().Get("input_token"))
			assert.Equal(t, "app-id|app-secret", r.URL.Query().Get("access_token"))

			json.NewEncoder(w).Encode(map[string]any{
				"data": map[string]any{
					"is_valid":   true,
					"expires_at": 1750000000,
					"scopes":     []string{"ads_read", "read_insights"},
				},
			})
		}))
		defer server.Close()

		tm := NewTokenManager(tokenTestConfig(server.URL))

		info := tm.VerifyToken(context.Background(), "token-teste")
		assert.True(t, info.IsValid)
		assert.Equal(t, []string{"ads_read", "read_insights"}, info.Scopes)
		require.NotNil(t, info.ExpiresAt)
	})

	t.Run("Falha na consulta - reporta inválido sem erro", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		tm := NewTokenManager(tokenTestConfig(server.URL))

		info := tm.VerifyToken(context.Background(), "token-teste")
		assert.False(t, info.IsValid)
	})
}

func TestTokenManager_Revoke(t *testing.T) {
	t.Run("Revogação com sucesso descarta a credencial", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodDelete, r.Method)
			assert.Equal(t, "/me/permissions", r.URL.Path)
			assert.Equal(t, "Bearer token-teste", r.Header.Get("Authorization"))

			json.NewEncoder(w).Encode(map[string]bool{"success": true})
		}))
		defer server.Close()

		tm := NewTokenManager(tokenTestConfig(server.URL))
		tm.SetToken(&metadomain.TokenRecord{AccessToken: "token-teste"})

		assert.True(t, tm.Revoke(context.Background(), "token-teste"))
		assert.Nil(t, tm.CurrentToken())
	})

	t.Run("Falha na revogação mantém a credencial", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
		}))
		defer server.Close()

		tm := NewTokenManager(tokenTestConfig(server.URL))
		tm.SetToken(&metadomain.TokenRecord{AccessToken: "token-teste"})

		assert.False(t, tm.Revoke(context.Background(), "token-teste"))
		assert.NotNil(t, tm.CurrentToken())
	})
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "60 dias, 0 horas e 0 minutos", FormatDuration(5184000))
	assert.Equal(t, "0 dias, 1 horas e 30 minutos", FormatDuration(5400))
}
