package metaclient

import (
	"bytes"
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
	"github.com/vfg2006/warroom-ads-api/pkg/utils"
)

// Client é a superfície do orquestrador de requisições à Graph API
type Client interface {
	Request(ctx context.Context, endpoint string, opts *RequestOptions) (*metadomain.Envelope, error)
	Paginate(endpoint string, params url.Values, maxPages int) *Pager
	Batch(ctx context.Context, requests []BatchRequest) ([]BatchResult, error)

	RequestLogs() []RequestLogEntry
	ClearLogs()
	RateLimitStatus() QuotaStatus
	CacheStats() CacheStats
	ClearCache()
	InvalidateCache(pattern string) error
}

// RequestOptions controla método, parâmetros e comportamento de cache de uma
// chamada. Método vazio equivale a GET
type RequestOptions struct {
	Method    string
	Params    url.Values
	Body      map[string]interface{}
	SkipCache bool
	CacheTTL  time.Duration
}

// RequestLogEntry é o registro de diagnóstico de uma chamada
type RequestLogEntry struct {
	ID         string        `json:"id"`
	Timestamp  time.Time     `json:"timestamp"`
	Method     string        `json:"method"`
	Endpoint   string        `json:"endpoint"`
	Params     string        `json:"params"`
	StatusCode int           `json:"status_code,omitempty"`
	Error      string        `json:"error,omitempty"`
	Duration   time.Duration `json:"duration"`
}

// BatchRequest descreve uma sub-requisição de um batch
type BatchRequest struct {
	Method      string `json:"method"`
	RelativeURL string `json:"relative_url"`
	Body        string `json:"body,omitempty"`
}

// BatchResult é o resultado de uma sub-requisição, na ordem original
type BatchResult struct {
	Code int    `json:"code"`
	Body string `json:"body"`
}

// MetaClient compõe TokenManager, QuotaGuard e ResponseCache num único
// caminho de chamada autenticada: cache → quota → HTTP → retry de throttle →
// popular cache → log de diagnóstico
type MetaClient struct {
	cfg        *config.Config
	Tokens     *TokenManager
	quota      *QuotaGuard
	cache      *ResponseCache
	httpClient *http.Client

	logMu   sync.Mutex
	logs    []RequestLogEntry
	maxLogs int
}

// NewClient cria um orquestrador com as dependências explícitas, sem
// singletons de módulo: instâncias distintas nunca compartilham estado
func NewClient(cfg *config.Config, tokens *TokenManager, quota *QuotaGuard, cache *ResponseCache) *MetaClient {
	maxLogs := cfg.Meta.RequestLogSize
	if maxLogs <= 0 {
		maxLogs = 100
	}

	return &MetaClient{
		cfg:    cfg,
		Tokens: tokens,
		quota:  quota,
		cache:  cache,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Meta.RequestTimeoutSecs) * time.Second,
		},
		maxLogs: maxLogs,
	}
}

// Request executa uma chamada autenticada. Acerto de cache retorna imediato e
// não consome quota. Erros de throttle são tratados com um laço limitado de
// tentativas; esgotadas as tentativas, o erro vira ProviderError terminal
func (c *MetaClient) Request(ctx context.Context, endpoint string, opts *RequestOptions) (*metadomain.Envelope, error) {
	if opts == nil {
		opts = &RequestOptions{}
	}

	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	params := opts.Params
	if params == nil {
		params = url.Values{}
	}

	cacheKey := fmt.Sprintf("%s:%s:%s", method, endpoint, params.Encode())

	if method == http.MethodGet && !opts.SkipCache {
		if cached, ok := c.cache.Get(cacheKey); ok {
			if envelope, ok := cached.(*metadomain.Envelope); ok {
				logrus.WithField("endpoint", endpoint).Debug("meta: acerto de cache")
				return envelope, nil
			}
		}
	}

	maxAttempts := c.cfg.Meta.MaxRetryAttempts
	if maxAttempts <= 0 {
		maxAttempts = 3
	}

	var lastThrottle error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := c.quota.WaitForSlot(ctx); err != nil {
			return nil, err
		}

		envelope, err := c.do(ctx, method, endpoint, params, opts.Body)
		if err == nil {
			if method == http.MethodGet && !opts.SkipCache {
				c.cache.Set(cacheKey, envelope, opts.CacheTTL)
			}
			return envelope, nil
		}

		if !metadomain.IsThrottle(err) {
			return nil, err
		}

		lastThrottle = err
		c.quota.HandleThrottleError(err)

		logrus.WithFields(logrus.Fields{
			"endpoint": endpoint,
			"attempt":  attempt,
			"error":    err.Error(),
		}).Warn("meta: requisição limitada pela API, tentando novamente")
	}

	return nil, &metadomain.ProviderError{
		StatusCode: http.StatusTooManyRequests,
		Body:       fmt.Sprintf("tentativas esgotadas após %d erros de rate limit: %v", maxAttempts, lastThrottle),
	}
}

// do executa uma única tentativa HTTP: exige credencial corrente, anexa o
// token (query para leituras, corpo para escritas), interpreta o envelope e
// registra a chamada no log de diagnóstico
func (c *MetaClient) do(ctx context.Context, method, endpoint string, params url.Values, body map[string]interface{}) (*metadomain.Envelope, error) {
	startTime := time.Now()

	token := c.Tokens.CurrentToken()
	if token == nil || token.AccessToken == "" {
		return nil, metadomain.NewAuthError("nenhum token de acesso disponível", nil)
	}

	requestURL, err := c.buildURL(method, endpoint, params, token.AccessToken)
	if err != nil {
		return nil, err
	}

	var reqBody io.Reader
	if method == http.MethodPost {
		payload := make(map[string]interface{}, len(body)+1)
		for k, v := range body {
			payload[k] = v
		}
		payload["access_token"] = token.AccessToken

		encoded, marshalErr := json.Marshal(payload)
		if marshalErr != nil {
			return nil, fmt.Errorf("erro ao serializar corpo da requisição: %w", marshalErr)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, reqBody)
	if err != nil {
		return nil, fmt.Errorf("erro ao criar a requisição: %w", err)
	}

	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/json")
	}

	if method == http.MethodDelete {
		req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		netErr := &metadomain.NetworkError{Err: err}
		c.appendLog(method, endpoint, params, 0, netErr, time.Since(startTime))
		return nil, netErr
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		// Conexão interrompida no meio da leitura; registra como qualquer
		// outro desfecho para o ring nunca pular uma chamada
		netErr := &metadomain.NetworkError{Err: fmt.Errorf("erro ao ler resposta: %w", err)}
		c.appendLog(method, endpoint, params, resp.StatusCode, netErr, time.Since(startTime))
		return nil, netErr
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := c.classifyError(resp.StatusCode, respBody)
		c.appendLog(method, endpoint, params, resp.StatusCode, apiErr, time.Since(startTime))
		return nil, apiErr
	}

	envelope, err := decodeEnvelope(respBody)
	if err != nil {
		logrus.WithError(err).Error("meta: erro ao decodificar JSON")
		return nil, fmt.Errorf("erro ao decodificar resposta: %w", err)
	}

	c.quota.RecordSuccess(resp.Header)
	c.appendLog(method, endpoint, params, resp.StatusCode, nil, time.Since(startTime))

	return envelope, nil
}

// decodeEnvelope interpreta o corpo da resposta. Listagens vêm embrulhadas em
// {"data": [...], "paging": {...}}; leituras de nó e respostas de batch vêm
// sem envelope e o corpo inteiro vira o Data
func decodeEnvelope(body []byte) (*metadomain.Envelope, error) {
	trimmed := bytes.TrimSpace(body)

	if len(trimmed) > 0 && trimmed[0] == '[' {
		return &metadomain.Envelope{Data: json.RawMessage(trimmed)}, nil
	}

	var envelope metadomain.Envelope
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, err
	}

	if len(envelope.Data) == 0 {
		envelope.Data = json.RawMessage(trimmed)
	}

	return &envelope, nil
}

func (c *MetaClient) buildURL(method, endpoint string, params url.Values, accessToken string) (string, error) {
	// Endpoints absolutos vêm do cursor "next" da paginação e já carregam
	// seus próprios parâmetros
	var base string
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		base = endpoint
	} else {
		base = fmt.Sprintf("%s/%s", c.cfg.Meta.URL, strings.TrimPrefix(endpoint, "/"))
	}

	parsed, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("endpoint inválido: %w", err)
	}

	if method == http.MethodGet {
		query := parsed.Query()
		for key, values := range params {
			for _, value := range values {
				query.Set(key, value)
			}
		}
		query.Set("access_token", accessToken)
		parsed.RawQuery = query.Encode()
	}

	return parsed.String(), nil
}

// classifyError converte uma resposta não-2xx no erro tipado correspondente
func (c *MetaClient) classifyError(statusCode int, body []byte) error {
	var errorResp metadomain.ErrorResponse
	parseErr := json.Unmarshal(body, &errorResp)

	if parseErr == nil && errorResp.Error.Message != "" {
		if statusCode == http.StatusTooManyRequests || errorResp.IsRateLimited() {
			return &metadomain.ThrottleError{StatusCode: statusCode, Response: &errorResp}
		}

		if errorResp.IsTokenExpired() {
			return metadomain.NewAuthError(errorResp.Error.Message, nil)
		}

		return &metadomain.ProviderError{StatusCode: statusCode, Response: &errorResp}
	}

	if statusCode == http.StatusTooManyRequests {
		return &metadomain.ThrottleError{StatusCode: statusCode}
	}

	return &metadomain.ProviderError{StatusCode: statusCode, Body: string(body)}
}

func (c *MetaClient) appendLog(method, endpoint string, params url.Values, statusCode int, callErr error, duration time.Duration) {
	id, err := utils.GenerateID()
	if err != nil {
		id = "unknown"
	}

	entry := RequestLogEntry{
		ID:         id,
		Timestamp:  time.Now(),
		Method:     method,
		Endpoint:   endpoint,
		Params:     params.Encode(),
		StatusCode: statusCode,
		Duration:   duration,
	}
	if callErr != nil {
		entry.Error = callErr.Error()
	}

	c.logMu.Lock()
	defer c.logMu.Unlock()

	c.logs = append(c.logs, entry)
	if len(c.logs) > c.maxLogs {
		c.logs = c.logs[len(c.logs)-c.maxLogs:]
	}
}

// RequestLogs retorna uma cópia do ring de diagnóstico
func (c *MetaClient) RequestLogs() []RequestLogEntry {
	c.logMu.Lock()
	defer c.logMu.Unlock()

	out := make([]RequestLogEntry, len(c.logs))
	copy(out, c.logs)
	return out
}

// ClearLogs descarta o log de diagnóstico
func (c *MetaClient) ClearLogs() {
	c.logMu.Lock()
	defer c.logMu.Unlock()

	c.logs = nil
}

// RateLimitStatus expõe o estado do QuotaGuard
func (c *MetaClient) RateLimitStatus() QuotaStatus {
	return c.quota.Status()
}

// CacheStats expõe tamanho e limite do cache
func (c *MetaClient) CacheStats() CacheStats {
	return c.cache.Stats()
}

// ClearCache limpa o cache de respostas
func (c *MetaClient) ClearCache() {
	c.cache.Clear()
}

// InvalidateCache remove entradas que casam com o padrão
func (c *MetaClient) InvalidateCache(pattern string) error {
	return c.cache.InvalidatePattern(pattern)
}

// Paginate cria uma sequência preguiçosa e finita de páginas seguindo o
// cursor "next" de cada resposta. A sequência não é reiniciável
func (c *MetaClient) Paginate(endpoint string, params url.Values, maxPages int) *Pager {
	if maxPages <= 0 {
		maxPages = c.cfg.Meta.MaxPagesPerPaginate
	}

	return &Pager{
		client:   c,
		endpoint: endpoint,
		params:   params,
		maxPages: maxPages,
	}
}

// Batch serializa as sub-requisições num único POST e devolve os resultados
// na ordem original, trocando N viagens por uma
func (c *MetaClient) Batch(ctx context.Context, requests []BatchRequest) ([]BatchResult, error) {
	encoded, err := json.Marshal(requests)
	if err != nil {
		return nil, fmt.Errorf("erro ao serializar batch: %w", err)
	}

	envelope, err := c.Request(ctx, "", &RequestOptions{
		Method: http.MethodPost,
		Body:   map[string]interface{}{"batch": string(encoded)},
	})
	if err != nil {
		return nil, err
	}

	var results []BatchResult
	if err := json.Unmarshal(envelope.Data, &results); err != nil {
		return nil, fmt.Errorf("erro ao decodificar resultados do batch: %w", err)
	}

	return results, nil
}

// Pager itera páginas de uma listagem. Uso:
//
//	pager := client.Paginate("act_123/campaigns", params, 0)
//	for pager.Next(ctx) {
//		page := pager.Page()
//		...
//	}
//	if err := pager.Err(); err != nil { ... }
type Pager struct {
	client   *MetaClient
	endpoint string
	params   url.Values
	nextURL  string
	page     *metadomain.Envelope
	pages    int
	maxPages int
	done     bool
	err      error
}

// Next busca a próxima página. Retorna false quando o cursor acaba, o limite
// de páginas é atingido ou ocorre erro (consultável via Err)
func (p *Pager) Next(ctx context.Context) bool {
	if p.done || p.err != nil {
		return false
	}

	if p.pages >= p.maxPages {
		p.done = true
		return false
	}

	endpoint := p.endpoint
	params := p.params
	if p.pages > 0 {
		if p.nextURL == "" {
			p.done = true
			return false
		}
		// A URL do cursor já embute os parâmetros da consulta original
		endpoint = p.nextURL
		params = nil
	}

	envelope, err := p.client.Request(ctx, endpoint, &RequestOptions{Params: params})
	if err != nil {
		p.err = err
		return false
	}

	p.page = envelope
	p.pages++
	p.nextURL = ""
	if envelope.HasNextPage() {
		p.nextURL = envelope.Paging.Next
	}

	return true
}

// Page retorna a página corrente
func (p *Pager) Page() *metadomain.Envelope {
	return p.page
}

// Err retorna o erro que encerrou a iteração, se houver
func (p *Pager) Err() error {
	return p.err
}
