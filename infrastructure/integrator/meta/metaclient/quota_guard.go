package metaclient

import (
	"context"
	"encoding/json"
	"net/http"
	"regexp"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/warroom-ads-api/internal/config"
)

// retryAfterPattern extrai o hint "try again in N seconds" das mensagens de
// erro de rate limit. A API nem sempre envia o header Retry-After
var retryAfterPattern = regexp.MustCompile(`(?i)try again in (\d+) seconds`)

// BusinessUsage é o formato do header x-business-use-case-usage
type BusinessUsage struct {
	CallCount    int    `json:"call_count"`
	TotalTime    int    `json:"total_time"`
	TotalCPUTime int    `json:"total_cputime"`
	Type         string `json:"type"`
}

// QuotaStatus reporta o estado atual do guard, apenas para observabilidade
type QuotaStatus struct {
	RequestsRemaining int       `json:"requests_remaining"`
	ResetTime         time.Time `json:"reset_time"`
	InBackoff         bool      `json:"in_backoff"`
}

// QuotaGuard acompanha uma janela deslizante de chamadas contra a quota da
// API e aplica backoff exponencial quando a API sinaliza rate limit.
// Todas as operações são protegidas por mutex: diferente da referência
// single-threaded, aqui o guard é compartilhado entre goroutines
type QuotaGuard struct {
	mu sync.Mutex

	maxCalls    int
	window      time.Duration
	backoffBase time.Duration
	backoffMax  time.Duration

	windowStart       time.Time
	callCount         int
	retryAfter        time.Time
	backoffMultiplier int64

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewQuotaGuard cria um guard com os limites da configuração
func NewQuotaGuard(cfg *config.Config) *QuotaGuard {
	return &QuotaGuard{
		maxCalls:          cfg.Meta.QuotaMaxCalls,
		window:            cfg.Meta.QuotaWindow(),
		backoffBase:       time.Duration(cfg.Meta.BackoffBaseMs) * time.Millisecond,
		backoffMax:        time.Duration(cfg.Meta.BackoffMaxMs) * time.Millisecond,
		windowStart:       time.Now(),
		backoffMultiplier: 1,
		now:               time.Now,
		sleep:             sleepContext,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// CanProceed reinicia a janela se ela expirou e responde se há orçamento
// para mais uma chamada
func (g *QuotaGuard) CanProceed() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.canProceedLocked()
}

func (g *QuotaGuard) canProceedLocked() bool {
	g.resetWindowIfNeededLocked()

	if !g.retryAfter.IsZero() && g.now().Before(g.retryAfter) {
		return false
	}

	return g.callCount < g.maxCalls
}

// WaitForSlot suspende o chamador até haver orçamento disponível, ou até o
// contexto ser cancelado
func (g *QuotaGuard) WaitForSlot(ctx context.Context) error {
	for {
		g.mu.Lock()
		if g.canProceedLocked() {
			g.mu.Unlock()
			return nil
		}
		wait := g.waitTimeLocked()
		g.mu.Unlock()

		logrus.WithField("wait_ms", wait.Milliseconds()).
			Info("quota: limite de chamadas atingido, aguardando antes de continuar")

		if err := g.sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// RecordSuccess incrementa o contador e zera o backoff. Se a resposta trouxer
// o header de uso de negócio, refina a estimativa local (best-effort)
func (g *QuotaGuard) RecordSuccess(headers http.Header) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.callCount++
	g.backoffMultiplier = 1

	if headers == nil {
		return
	}

	if usage := headers.Get("x-business-use-case-usage"); usage != "" {
		g.refineFromBusinessUsageLocked(usage)
	}
}

// HandleThrottleError registra um erro de rate limit vindo da API: respeita
// o hint explícito de retry quando presente, senão aplica backoff exponencial
func (g *QuotaGuard) HandleThrottleError(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if seconds, ok := extractRetryAfter(err); ok {
		g.retryAfter = g.now().Add(time.Duration(seconds) * time.Second)

		logrus.WithField("retry_after_seconds", seconds).
			Warn("quota: API pediu espera explícita antes de nova tentativa")
		return
	}

	backoff := min(g.backoffBase*time.Duration(g.backoffMultiplier), g.backoffMax)
	g.retryAfter = g.now().Add(backoff)
	g.backoffMultiplier *= 2

	logrus.WithField("backoff_ms", backoff.Milliseconds()).
		Warn("quota: rate limit sem hint de retry, aplicando backoff exponencial")
}

// Status reporta orçamento restante, horário de reset e se há backoff ativo
func (g *QuotaGuard) Status() QuotaStatus {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.resetWindowIfNeededLocked()

	return QuotaStatus{
		RequestsRemaining: max(0, g.maxCalls-g.callCount),
		ResetTime:         g.windowStart.Add(g.window),
		InBackoff:         !g.retryAfter.IsZero() && g.now().Before(g.retryAfter),
	}
}

func (g *QuotaGuard) resetWindowIfNeededLocked() {
	now := g.now()
	if now.Sub(g.windowStart) >= g.window {
		g.callCount = 0
		g.windowStart = now
		g.retryAfter = time.Time{}
	}
}

func (g *QuotaGuard) waitTimeLocked() time.Duration {
	now := g.now()

	if !g.retryAfter.IsZero() && g.retryAfter.After(now) {
		return g.retryAfter.Sub(now)
	}

	windowEnd := g.windowStart.Add(g.window)
	if windowEnd.After(now) {
		return windowEnd.Sub(now)
	}

	return 0
}

// refineFromBusinessUsageLocked ajusta o contador local com base no uso
// reportado pela API. Falha de parse não é fatal: o header é informativo
func (g *QuotaGuard) refineFromBusinessUsageLocked(raw string) {
	var usage map[string][]BusinessUsage
	if err := json.Unmarshal([]byte(raw), &usage); err != nil {
		logrus.WithError(err).Debug("quota: não foi possível interpretar x-business-use-case-usage")
		return
	}

	for businessID, limits := range usage {
		for _, limit := range limits {
			if limit.Type != "ads_insights" {
				continue
			}

			logrus.WithFields(logrus.Fields{
				"business_id": businessID,
				"call_count":  limit.CallCount,
			}).Debug("quota: uso reportado pela API")

			if limit.CallCount > g.callCount {
				g.callCount = limit.CallCount
			}
		}
	}
}

func extractRetryAfter(err error) (int, bool) {
	if err == nil {
		return 0, false
	}

	matches := retryAfterPattern.FindStringSubmatch(err.Error())
	if len(matches) != 2 {
		return 0, false
	}

	seconds, convErr := strconv.Atoi(matches[1])
	if convErr != nil {
		return 0, false
	}

	return seconds, true
}
