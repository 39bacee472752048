package metaclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metadomain "github.com/vfg2006/warroom-ads-api/infrastructure/integrator/meta/domain"
	"github.com/vfg2006/warroom-ads-api/internal/config"
)

func clientTestConfig(serverURL string) *config.Config {
	return &config.Config{
		Meta: config.Meta{
			URL:                 serverURL,
			QuotaMaxCalls:       200,
			QuotaWindowMinutes:  60,
			BackoffBaseMs:       1000,
			BackoffMaxMs:        60000,
			CacheTTLSeconds:     300,
			CacheMaxEntries:     100,
			MaxRetryAttempts:    3,
			MaxPagesPerPaginate: 10,
			RequestLogSize:      5,
			RequestTimeoutSecs:  5,
		},
	}
}

// newTestClient monta um orquestrador com relógio e espera controlados,
// apontando para o servidor de teste
func newTestClient(t *testing.T, serverURL string) *MetaClient {
	t.Helper()

	cfg := clientTestConfig(serverURL)

	tokens := NewTokenManager(cfg)
	tokens.SetToken(&metadomain.TokenRecord{AccessToken: "token-teste", TokenType: "bearer"})

	guard := NewQuotaGuard(cfg)
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	guard.windowStart = now
	guard.now = func() time.Time { return now }
	guard.sleep = func(ctx context.Context, d time.Duration) error {
		now = now.Add(d)
		return nil
	}

	return NewClient(cfg, tokens, guard, NewResponseCache(cfg))
}

func TestMetaClient_Request_GET(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/me/adaccounts", r.URL.Path)
		assert.Equal(t, "token-teste", r.URL.Query().Get("access_token"))
		assert.Equal(t, "id,name", r.URL.Query().Get("fields"))

		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]string{{"id": "act_1", "name": "Conta 1"}},
		})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	params := url.Values{}
	params.Set("fields", "id,name")

	resp, err := client.Request(context.Background(), "me/adaccounts", &RequestOptions{Params: params})
	require.NoError(t, err)
	require.NotNil(t, resp)

	var accounts []map[string]string
	require.NoError(t, json.Unmarshal(resp.Data, &accounts))
	assert.Len(t, accounts, 1)
	assert.Equal(t, "act_1", accounts[0]["id"])
}

func TestMetaClient_Request_SemTokenNaoChamaAPI(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	client.Tokens.ClearTokens()

	_, err := client.Request(context.Background(), "me", nil)

	var authErr *metadomain.AuthError
	assert.ErrorAs(t, err, &authErr)
	assert.Equal(t, int32(0), hits.Load())
}

func TestMetaClient_Request_CacheHitNaoConsomeQuota(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		json.NewEncoder(w).Encode(map[string]any{"data": []map[string]string{{"id": "1"}}})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	ctx := context.Background()

	_, err := client.Request(ctx, "me/adaccounts", nil)
	require.NoError(t, err)

	remainingAfterFirst := client.RateLimitStatus().RequestsRemaining

	// Segunda chamada idêntica deve vir do cache sem tocar a API
	_, err = client.Request(ctx, "me/adaccounts", nil)
	require.NoError(t, err)

	assert.Equal(t, int32(1), hits.Load())
	assert.Equal(t, remainingAfterFirst, client.RateLimitStatus().RequestsRemaining)
}

func TestMetaClient_Request_SkipCache(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		json.NewEncoder(w).Encode(map[string]any{"data": []map[string]string{}})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	ctx := context.Background()

	_, err := client.Request(ctx, "me/adaccounts", &RequestOptions{SkipCache: true})
	require.NoError(t, err)
	_, err = client.Request(ctx, "me/adaccounts", &RequestOptions{SkipCache: true})
	require.NoError(t, err)

	assert.Equal(t, int32(2), hits.Load())
}

func TestMetaClient_Request_POSTEnviaTokenNoCorpo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		var payload map[string]any
		require.NoError(t, json.Unmarshal(body, &payload))
		assert.Equal(t, "token-teste", payload["access_token"])
		assert.Equal(t, "Nova Campanha", payload["name"])

		// O token não deve aparecer na query de escritas
		assert.Empty(t, r.URL.Query().Get("access_token"))

		json.NewEncoder(w).Encode(map[string]string{"id": "123"})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	resp, err := client.Request(context.Background(), "act_1/campaigns", &RequestOptions{
		Method: http.MethodPost,
		Body:   map[string]interface{}{"name": "Nova Campanha"},
	})
	require.NoError(t, err)

	var created map[string]string
	require.NoError(t, json.Unmarshal(resp.Data, &created))
	assert.Equal(t, "123", created["id"])
}

func TestMetaClient_Request_RetryAposThrottle(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) <= 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]any{
					"message": "User request limit reached, please try again in 5 seconds",
					"code":    17,
				},
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"data": []map[string]string{{"id": "1"}}})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	resp, err := client.Request(context.Background(), "me/adaccounts", nil)
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, int32(3), hits.Load())
}

func TestMetaClient_Request_ThrottlePersistenteViraProviderError(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "too many calls", "code": 4},
		})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.Request(context.Background(), "me/adaccounts", nil)

	// Esgotadas as tentativas, o erro terminal não é mais de throttle
	var providerErr *metadomain.ProviderError
	require.ErrorAs(t, err, &providerErr)
	assert.False(t, metadomain.IsThrottle(err))
	assert.Equal(t, int32(3), hits.Load())
}

func TestMetaClient_Request_TokenExpiradoViraAuthError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{
				"message": "Error validating access token: Session has expired",
				"type":    "OAuthException",
				"code":    190,
			},
		})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.Request(context.Background(), "me", nil)

	var authErr *metadomain.AuthError
	assert.ErrorAs(t, err, &authErr)
}

func TestMetaClient_Request_UsaTokenRenovadoAposTroca(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/oauth/access_token" {
			assert.Equal(t, "fb_exchange_token", r.URL.Query().Get("grant_type"))
			assert.Equal(t, "token-teste", r.URL.Query().Get("fb_exchange_token"))

			json.NewEncoder(w).Encode(map[string]any{
				"access_token": "token-longo",
				"token_type":   "bearer",
				"expires_in":   5184000,
			})
			return
		}

		// Depois da troca, toda chamada sai com a credencial nova
		assert.Equal(t, "/me", r.URL.Path)
		assert.Equal(t, "token-longo", r.URL.Query().Get("access_token"))

		json.NewEncoder(w).Encode(map[string]string{"id": "999"})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	ctx := context.Background()

	renewed, err := client.Tokens.ExchangeForLongLivedToken(ctx, "token-teste")
	require.NoError(t, err)
	assert.Equal(t, "token-longo", renewed.AccessToken)

	_, err = client.Request(ctx, "me", nil)
	require.NoError(t, err)
}

func TestMetaClient_Request_FalhaDeLeituraEntraNoLog(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Declara mais bytes do que envia para derrubar a conexão no meio
		// da leitura do corpo
		w.Header().Set("Content-Length", "1000")
		w.Write([]byte(`{"data":`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.Request(context.Background(), "me/adaccounts", nil)

	var netErr *metadomain.NetworkError
	require.ErrorAs(t, err, &netErr)

	logs := client.RequestLogs()
	require.Len(t, logs, 1)
	assert.Equal(t, "me/adaccounts", logs[0].Endpoint)
	assert.Equal(t, http.StatusOK, logs[0].StatusCode)
	assert.NotEmpty(t, logs[0].Error)
}

func TestMetaClient_Request_ErroDeRedeViraNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // Servidor fechado força falha de conexão

	client := newTestClient(t, server.URL)

	_, err := client.Request(context.Background(), "me", nil)

	var netErr *metadomain.NetworkError
	assert.ErrorAs(t, err, &netErr)
}

func TestMetaClient_Paginate(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")

		switch page {
		case "":
			json.NewEncoder(w).Encode(map[string]any{
				"data":   []map[string]string{{"id": "1"}, {"id": "2"}},
				"paging": map[string]any{"next": server.URL + "/act_1/campaigns?page=2"},
			})
		case "2":
			json.NewEncoder(w).Encode(map[string]any{
				"data":   []map[string]string{{"id": "3"}},
				"paging": map[string]any{"next": server.URL + "/act_1/campaigns?page=3"},
			})
		default:
			json.NewEncoder(w).Encode(map[string]any{
				"data": []map[string]string{{"id": "4"}},
			})
		}
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	var ids []string
	pager := client.Paginate("act_1/campaigns", nil, 0)
	for pager.Next(context.Background()) {
		var rows []map[string]string
		require.NoError(t, json.Unmarshal(pager.Page().Data, &rows))
		for _, row := range rows {
			ids = append(ids, row["id"])
		}
	}

	require.NoError(t, pager.Err())
	assert.Equal(t, []string{"1", "2", "3", "4"}, ids)
}

func TestMetaClient_Paginate_RespeitaLimiteDePaginas(t *testing.T) {
	var hits atomic.Int32
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := hits.Add(1)
		// Sempre aponta para uma próxima página
		json.NewEncoder(w).Encode(map[string]any{
			"data":   []map[string]string{{"id": fmt.Sprintf("%d", n)}},
			"paging": map[string]any{"next": fmt.Sprintf("%s/act_1/campaigns?page=%d", server.URL, n+1)},
		})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	pages := 0
	pager := client.Paginate("act_1/campaigns", nil, 3)
	for pager.Next(context.Background()) {
		pages++
	}

	require.NoError(t, pager.Err())
	assert.Equal(t, 3, pages)
	assert.Equal(t, int32(3), hits.Load())
}

func TestMetaClient_Paginate_PropagaErro(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "internal", "code": 1},
		})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	pager := client.Paginate("act_1/campaigns", nil, 0)
	assert.False(t, pager.Next(context.Background()))
	assert.Error(t, pager.Err())
}

func TestMetaClient_Batch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		var payload map[string]any
		require.NoError(t, json.Unmarshal(body, &payload))

		var requests []BatchRequest
		require.NoError(t, json.Unmarshal([]byte(payload["batch"].(string)), &requests))
		require.Len(t, requests, 2)
		assert.Equal(t, "act_1/insights", requests[0].RelativeURL)

		// A resposta de batch é um array na raiz, sem envelope
		json.NewEncoder(w).Encode([]map[string]any{
			{"code": 200, "body": `{"data":[]}`},
			{"code": 400, "body": `{"error":{"message":"bad"}}`},
		})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	results, err := client.Batch(context.Background(), []BatchRequest{
		{Method: http.MethodGet, RelativeURL: "act_1/insights"},
		{Method: http.MethodGet, RelativeURL: "act_2/insights"},
	})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, 200, results[0].Code)
	assert.Equal(t, 400, results[1].Code)
}

func TestMetaClient_RequestLogs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"data": []map[string]string{}})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	ctx := context.Background()

	// O ring guarda apenas as últimas RequestLogSize (5) entradas
	for i := 0; i < 7; i++ {
		_, err := client.Request(ctx, fmt.Sprintf("endpoint-%d", i), &RequestOptions{SkipCache: true})
		require.NoError(t, err)
	}

	logs := client.RequestLogs()
	require.Len(t, logs, 5)
	assert.Equal(t, "endpoint-2", logs[0].Endpoint)
	assert.Equal(t, "endpoint-6", logs[4].Endpoint)
	assert.NotEmpty(t, logs[0].ID)
	assert.Equal(t, http.StatusOK, logs[0].StatusCode)

	client.ClearLogs()
	assert.Empty(t, client.RequestLogs())
}

func TestMetaClient_ClearCacheEInvalidate(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		json.NewEncoder(w).Encode(map[string]any{"data": []map[string]string{}})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	ctx := context.Background()

	_, err := client.Request(ctx, "me/adaccounts", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, client.CacheStats().Size)

	client.ClearCache()
	assert.Equal(t, 0, client.CacheStats().Size)

	_, err = client.Request(ctx, "me/adaccounts", nil)
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load())

	require.NoError(t, client.InvalidateCache("adaccounts"))
	assert.Equal(t, 0, client.CacheStats().Size)

	assert.Error(t, client.InvalidateCache("[inválido"))
}
