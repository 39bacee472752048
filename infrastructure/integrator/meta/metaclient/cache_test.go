package metaclient

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/warroom-ads-api/internal/config"
)

func cacheTestConfig() *config.Config {
	return &config.Config{
		Meta: config.Meta{
			CacheTTLSeconds: 300,
			CacheMaxEntries: 3,
		},
	}
}

func newTestCache(t *testing.T) (*ResponseCache, *time.Time) {
	t.Helper()

	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	cache := NewResponseCache(cacheTestConfig())
	cache.now = func() time.Time { return now }

	return cache, &now
}

func TestResponseCache_SetGet(t *testing.T) {
	cache, _ := newTestCache(t)

	cache.Set("chave", "valor", 0)

	value, ok := cache.Get("chave")
	require.True(t, ok)
	assert.Equal(t, "valor", value)

	_, ok = cache.Get("inexistente")
	assert.False(t, ok)
}

func TestResponseCache_ExpiracaoPorTTL(t *testing.T) {
	cache, now := newTestCache(t)

	cache.Set("padrao", "a", 0)
	cache.Set("curto", "b", 10*time.Second)

	*now = now.Add(11 * time.Second)

	// A entrada com TTL curto expira, a com TTL padrão (300s) permanece
	_, ok := cache.Get("curto")
	assert.False(t, ok)

	_, ok = cache.Get("padrao")
	assert.True(t, ok)

	*now = now.Add(300 * time.Second)
	_, ok = cache.Get("padrao")
	assert.False(t, ok)
}

func TestResponseCache_EvictaMaisAntigaNoLimite(t *testing.T) {
	cache, now := newTestCache(t)

	cache.Set("primeira", 1, 0)
	*now = now.Add(time.Second)
	cache.Set("segunda", 2, 0)
	*now = now.Add(time.Second)
	cache.Set("terceira", 3, 0)
	*now = now.Add(time.Second)

	cache.Set("quarta", 4, 0)

	_, ok := cache.Get("primeira")
	assert.False(t, ok, "a entrada mais antiga deve ser descartada")

	for _, key := range []string{"segunda", "terceira", "quarta"} {
		_, ok := cache.Get(key)
		assert.True(t, ok, "entrada %s deveria permanecer", key)
	}
}

func TestResponseCache_Invalidate(t *testing.T) {
	cache, _ := newTestCache(t)

	cache.Set("manter", 1, 0)
	cache.Set("remover", 2, 0)

	cache.Invalidate("remover")

	_, ok := cache.Get("remover")
	assert.False(t, ok)

	_, ok = cache.Get("manter")
	assert.True(t, ok)
}

func TestResponseCache_InvalidatePattern(t *testing.T) {
	cache, _ := newTestCache(t)

	cache.Set("insights:act_1:a", 1, 0)
	cache.Set("insights:act_2:b", 2, 0)
	cache.Set("campaigns:act_1", 3, 0)

	err := cache.InvalidatePattern(`insights:act_\d+`)
	require.NoError(t, err)

	_, ok := cache.Get("insights:act_1:a")
	assert.False(t, ok)

	_, ok = cache.Get("insights:act_2:b")
	assert.False(t, ok)

	_, ok = cache.Get("campaigns:act_1")
	assert.True(t, ok)
}

func TestResponseCache_InvalidatePatternInvalido(t *testing.T) {
	cache, _ := newTestCache(t)

	err := cache.InvalidatePattern("[inválido")
	assert.Error(t, err)
}

func TestResponseCache_ClearEStats(t *testing.T) {
	cache, _ := newTestCache(t)

	cache.Set("a", 1, 0)
	cache.Set("b", 2, 0)

	stats := cache.Stats()
	assert.Equal(t, 2, stats.Size)
	assert.Equal(t, 3, stats.MaxSize)

	cache.Clear()

	stats = cache.Stats()
	assert.Equal(t, 0, stats.Size)
}

func TestGenerateInsightKey(t *testing.T) {
	tests := []struct {
		name     string
		params   map[string]string
		expected string
	}{
		{
			name: "Parâmetros em qualquer ordem produzem a mesma chave",
			params: map[string]string{
				"until":       "2025-05-31",
				"date_preset": "last_30d",
				"since":       "2025-05-01",
			},
			expected: "insights:act_123:date_preset:last_30d|since:2025-05-01|until:2025-05-31",
		},
		{
			name:     "Sem parâmetros",
			params:   map[string]string{},
			expected: "insights:act_123:",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GenerateInsightKey("act_123", tt.params))
		})
	}
}
