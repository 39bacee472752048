package metaclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	metadomain "github.com/vfg2006/warroom-ads-api/infrastructure/integrator/meta/domain"
	"github.com/vfg2006/warroom-ads-api/internal/config"
)

// defaultScopes são os escopos mínimos para ler contas, campanhas e insights
var defaultScopes = []string{
	"ads_management",
	"ads_read",
	"business_management",
	"pages_read_engagement",
	"read_insights",
}

// TokenManager gerencia o ciclo de vida do token de acesso da API do Meta.
// Guarda uma única credencial corrente por sessão, protegida por mutex;
// o token não é persistido entre reinícios do processo
type TokenManager struct {
	cfg        *config.Config
	mu         sync.Mutex
	current    *metadomain.TokenRecord
	expiresAt  time.Time
	httpClient *http.Client
}

// NewTokenManager cria uma nova instância do gerenciador de tokens
func NewTokenManager(cfg *config.Config) *TokenManager {
	return &TokenManager{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Meta.RequestTimeoutSecs) * time.Second,
		},
	}
}

// BuildAuthorizationURL monta a URL de autorização OAuth2 do provedor.
// Escopos do chamador são mesclados com os padrões e deduplicados. Função
// pura dos argumentos mais a configuração
func (tm *TokenManager) BuildAuthorizationURL(state string, scopes []string) string {
	seen := make(map[string]bool)
	all := make([]string, 0, len(defaultScopes)+len(scopes))

	for _, scope := range append(append([]string{}, defaultScopes...), scopes...) {
		if scope == "" || seen[scope] {
			continue
		}
		seen[scope] = true
		all = append(all, scope)
	}

	params := url.Values{}
	params.Set("client_id", tm.cfg.Meta.AppID)
	params.Set("redirect_uri", tm.cfg.Meta.RedirectURI)
	params.Set("state", state)
	params.Set("scope", strings.Join(all, ","))
	params.Set("response_type", "code")

	return fmt.Sprintf("%s/%s/dialog/oauth?%s", tm.cfg.Meta.AuthBaseURL, tm.cfg.Meta.Version, params.Encode())
}

// ExchangeCodeForToken troca o código de autorização por um token de acesso
// e o armazena como credencial corrente
func (tm *TokenManager) ExchangeCodeForToken(ctx context.Context, code string) (*metadomain.TokenRecord, error) {
	params := url.Values{}
	params.Set("client_id", tm.cfg.Meta.AppID)
	params.Set("client_secret", tm.cfg.Meta.AppSecret)
	params.Set("redirect_uri", tm.cfg.Meta.RedirectURI)
	params.Set("code", code)

	token, err := tm.fetchToken(ctx, params)
	if err != nil {
		return nil, err
	}

	tm.SetToken(token)

	logrus.Info("auth: código de autorização trocado por token com sucesso")
	return token, nil
}

// ExchangeForLongLivedToken troca um token de curta duração por um de longa
// duração e substitui a credencial corrente. O Meta não usa refresh token
// convencional: a renovação é sempre uma nova troca fb_exchange_token
func (tm *TokenManager) ExchangeForLongLivedToken(ctx context.Context, shortLivedToken string) (*metadomain.TokenRecord, error) {
	if shortLivedToken == "" {
		return nil, metadomain.NewAuthError("token de acesso não pode ser vazio", nil)
	}

	params := url.Values{}
	params.Set("grant_type", "fb_exchange_token")
	params.Set("client_id", tm.cfg.Meta.AppID)
	params.Set("client_secret", tm.cfg.Meta.AppSecret)
	params.Set("fb_exchange_token", shortLivedToken)

	token, err := tm.fetchToken(ctx, params)
	if err != nil {
		return nil, err
	}

	tm.SetToken(token)

	logrus.Infof("auth: token de longa duração obtido com sucesso. Expira em %s",
		FormatDuration(token.ExpiresIn))

	return token, nil
}

// Refresh renova a credencial corrente. Sem refresh token explícito, faz
// fallback para trocar o token de acesso atual por um novo de longa duração
func (tm *TokenManager) Refresh(ctx context.Context, refreshToken string) (*metadomain.TokenRecord, error) {
	current := tm.CurrentToken()

	if refreshToken == "" && current != nil {
		refreshToken = current.RefreshToken
	}

	if refreshToken == "" {
		if current == nil || current.AccessToken == "" {
			return nil, metadomain.NewAuthError("nenhum token disponível para renovação", nil)
		}
		return tm.ExchangeForLongLivedToken(ctx, current.AccessToken)
	}

	// O provedor não implementa o grant refresh_token; mesmo com um refresh
	// token presente, a renovação passa pela troca de longa duração
	if current == nil || current.AccessToken == "" {
		return nil, metadomain.NewAuthError("nenhum token válido para renovar", nil)
	}

	return tm.ExchangeForLongLivedToken(ctx, current.AccessToken)
}

// VerifyToken consulta o endpoint debug_token e reporta validade, expiração
// e escopos. Qualquer falha é reportada como token inválido, nunca como erro
func (tm *TokenManager) VerifyToken(ctx context.Context, token string) *metadomain.TokenInfo {
	params := url.Values{}
	params.Set("input_token", token)
	params.Set("access_token", tm.cfg.Meta.AppID+"|"+tm.cfg.Meta.AppSecret)

	requestURL := fmt.Sprintf("%s/debug_token?%s", tm.cfg.Meta.URL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return &metadomain.TokenInfo{IsValid: false}
	}

	resp, err := tm.httpClient.Do(req)
	if err != nil {
		logrus.WithError(err).Warn("auth: falha ao consultar debug_token")
		return &metadomain.TokenInfo{IsValid: false}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &metadomain.TokenInfo{IsValid: false}
	}

	var response struct {
		Data struct {
			IsValid   bool     `json:"is_valid"`
			ExpiresAt int64    `json:"expires_at"`
			Scopes    []string `json:"scopes"`
		} `json:"data"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		logrus.WithError(err).Warn("auth: falha ao decodificar resposta do debug_token")
		return &metadomain.TokenInfo{IsValid: false}
	}

	info := &metadomain.TokenInfo{
		IsValid: response.Data.IsValid,
		Scopes:  response.Data.Scopes,
	}

	if response.Data.ExpiresAt > 0 {
		expiresAt := time.Unix(response.Data.ExpiresAt, 0)
		info.ExpiresAt = &expiresAt
	}

	return info
}

// Revoke revoga as permissões concedidas ao token. Em caso de sucesso a
// credencial corrente é descartada
func (tm *TokenManager) Revoke(ctx context.Context, token string) bool {
	requestURL := fmt.Sprintf("%s/me/permissions", tm.cfg.Meta.URL)

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, requestURL, nil)
	if err != nil {
		return false
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := tm.httpClient.Do(req)
	if err != nil {
		logrus.WithError(err).Warn("auth: falha ao revogar token")
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false
	}

	tm.ClearTokens()

	logrus.Info("auth: token revogado e credencial corrente descartada")
	return true
}

// CurrentToken retorna a credencial corrente, ou nil se não houver
func (tm *TokenManager) CurrentToken() *metadomain.TokenRecord {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	return tm.current
}

// SetToken define manualmente a credencial corrente (restauração de sessão
// ou testes)
func (tm *TokenManager) SetToken(token *metadomain.TokenRecord) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	tm.current = token
	tm.expiresAt = time.Time{}
	if token != nil && token.ExpiresIn > 0 {
		tm.expiresAt = metadomain.CalculateTokenExpiration(token.ExpiresIn)
	}
}

// ClearTokens descarta a credencial corrente
func (tm *TokenManager) ClearTokens() {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	tm.current = nil
	tm.expiresAt = time.Time{}
}

// ExpiresAt retorna a estimativa local de expiração da credencial corrente
func (tm *TokenManager) ExpiresAt() time.Time {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	return tm.expiresAt
}

// fetchToken chama oauth/access_token e decodifica a resposta. Em erro da
// API, a mensagem original do provedor é preservada num AuthError
func (tm *TokenManager) fetchToken(ctx context.Context, params url.Values) (*metadomain.TokenRecord, error) {
	requestURL := fmt.Sprintf("%s/oauth/access_token?%s", tm.cfg.Meta.URL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("erro ao criar a requisição: %w", err)
	}

	resp, err := tm.httpClient.Do(req)
	if err != nil {
		return nil, &metadomain.NetworkError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("erro ao ler resposta: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		message := "falha na troca de token"
		var errorResp metadomain.ErrorResponse
		if parseErr := json.Unmarshal(body, &errorResp); parseErr == nil && errorResp.Error.Message != "" {
			message = errorResp.Error.Message
		}

		logrus.WithFields(logrus.Fields{
			"status": resp.StatusCode,
			"body":   string(body),
		}).Error("auth: erro na troca de token")

		return nil, metadomain.NewAuthError(message, nil)
	}

	var token metadomain.TokenRecord
	if err := json.Unmarshal(body, &token); err != nil {
		return nil, fmt.Errorf("erro ao decodificar resposta: %w", err)
	}

	if token.AccessToken == "" {
		return nil, metadomain.NewAuthError("token retornado pela API é vazio", nil)
	}

	return &token, nil
}

// FormatDuration formata a duração em segundos para um formato legível
func FormatDuration(seconds int64) string {
	duration := time.Duration(seconds) * time.Second
	days := duration / (24 * time.Hour)
	hours := (duration % (24 * time.Hour)) / time.Hour
	minutes := (duration % time.Hour) / time.Minute

	return fmt.Sprintf("%d dias, %d horas e %d minutos", days, hours, minutes)
}
