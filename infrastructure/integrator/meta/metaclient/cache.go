package metaclient

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/vfg2006/warroom-ads-api/internal/config"
)

// CacheStats expõe tamanho e limite do cache para observabilidade
type CacheStats struct {
	Size    int `json:"size"`
	MaxSize int `json:"max_size"`
}

type cacheEntry struct {
	value      interface{}
	insertedAt time.Time
	ttl        time.Duration
}

// ResponseCache é um cache chave/valor com namespace e TTL por entrada.
// Quando cheio, descarta a entrada mais antiga por timestamp de inserção.
// A varredura linear é aceitável no tamanho limitado atual; se o limite
// crescer, trocar por uma estrutura ordenada por recência sem mudar o
// contrato externo
type ResponseCache struct {
	mu sync.Mutex

	entries    map[string]*cacheEntry
	defaultTTL time.Duration
	maxSize    int
	namespace  string

	now func() time.Time
}

// NewResponseCache cria um cache com os limites da configuração
func NewResponseCache(cfg *config.Config) *ResponseCache {
	return &ResponseCache{
		entries:    make(map[string]*cacheEntry),
		defaultTTL: cfg.Meta.CacheTTL(),
		maxSize:    cfg.Meta.CacheMaxEntries,
		namespace:  "meta-api",
		now:        time.Now,
	}
}

// Get retorna o valor armazenado enquanto dentro do TTL. Entrada expirada é
// removida na leitura
func (c *ResponseCache) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fullKey := c.fullKey(key)
	entry, ok := c.entries[fullKey]
	if !ok {
		return nil, false
	}

	if c.now().Sub(entry.insertedAt) > entry.ttl {
		delete(c.entries, fullKey)
		return nil, false
	}

	return entry.value, true
}

// Set armazena um valor com o TTL informado (ou o padrão quando zero). No
// limite de capacidade, a entrada mais antiga é descartada antes da inserção
func (c *ResponseCache) Set(key string, value interface{}, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	if len(c.entries) >= c.maxSize {
		if oldest := c.oldestKeyLocked(); oldest != "" {
			delete(c.entries, oldest)
		}
	}

	c.entries[c.fullKey(key)] = &cacheEntry{
		value:      value,
		insertedAt: c.now(),
		ttl:        ttl,
	}
}

// Invalidate remove uma entrada específica
func (c *ResponseCache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, c.fullKey(key))
}

// InvalidatePattern remove todas as entradas cuja chave casa com o padrão
func (c *ResponseCache) InvalidatePattern(pattern string) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return fmt.Errorf("padrão de invalidação inválido: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.entries {
		if re.MatchString(key) {
			delete(c.entries, key)
		}
	}

	return nil
}

// Clear remove todas as entradas
func (c *ResponseCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*cacheEntry)
}

// Stats retorna tamanho atual e máximo do cache
func (c *ResponseCache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return CacheStats{
		Size:    len(c.entries),
		MaxSize: c.maxSize,
	}
}

func (c *ResponseCache) fullKey(key string) string {
	return c.namespace + ":" + key
}

func (c *ResponseCache) oldestKeyLocked() string {
	var oldestKey string
	var oldestAt time.Time

	for key, entry := range c.entries {
		if oldestKey == "" || entry.insertedAt.Before(oldestAt) {
			oldestKey = key
			oldestAt = entry.insertedAt
		}
	}

	return oldestKey
}

// GenerateInsightKey monta uma chave canônica para consultas de insights:
// campos ordenados por nome garantem que duas consultas logicamente iguais
// produzam a mesma chave independente da ordem de construção
func GenerateInsightKey(accountID string, params map[string]string) string {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	pairs := make([]string, 0, len(names))
	for _, name := range names {
		pairs = append(pairs, name+":"+params[name])
	}

	return fmt.Sprintf("insights:%s:%s", accountID, strings.Join(pairs, "|"))
}
