package metadomain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInsightRow_ConversaoDeMetricas(t *testing.T) {
	row := &InsightRow{
		Spend:       "123.45",
		Impressions: "10000",
		Clicks:      "500",
		Conversions: "",
		CPM:         "não numérico",
	}

	assert.Equal(t, 123.45, row.SpendValue())
	assert.Equal(t, int64(10000), row.ImpressionsValue())
	assert.Equal(t, int64(500), row.ClicksValue())

	// Campos vazios ou inválidos viram zero em vez de quebrar a agregação
	assert.Equal(t, int64(0), row.ConversionsValue())
	assert.Equal(t, 0.0, row.CPMValue())
}

func TestInsightParams_Values(t *testing.T) {
	params := &InsightParams{
		Level:      "campaign",
		Fields:     []string{"spend", "clicks"},
		DatePreset: "last_30d",
		TimeRange:  &TimeRange{Since: "2025-05-01", Until: "2025-05-31"},
		Filtering: []InsightFilter{
			{Field: "campaign.id", Operator: "IN", Value: []string{"c1", "c2"}},
		},
		Limit: 100,
	}

	values := params.Values()

	assert.Equal(t, "campaign", values.Get("level"))
	assert.Equal(t, "spend,clicks", values.Get("fields"))
	assert.Equal(t, "last_30d", values.Get("date_preset"))
	assert.JSONEq(t, `{"since":"2025-05-01","until":"2025-05-31"}`, values.Get("time_range"))
	assert.JSONEq(t, `[{"field":"campaign.id","operator":"IN","value":["c1","c2"]}]`, values.Get("filtering"))
	assert.Equal(t, "100", values.Get("limit"))
}

func TestInsightParams_HasTimeBreakdown(t *testing.T) {
	assert.False(t, (&InsightParams{}).HasTimeBreakdown())
	assert.False(t, (*InsightParams)(nil).HasTimeBreakdown())
	assert.True(t, (&InsightParams{Breakdowns: []string{TimeBreakdown}}).HasTimeBreakdown())
}

func TestErrorResponse_Classificacao(t *testing.T) {
	tests := []struct {
		name        string
		response    ErrorResponse
		tokenExpiry bool
		rateLimited bool
	}{
		{
			name:        "Código 190 - token expirado",
			response:    ErrorResponse{Error: ErrorDetails{Code: 190}},
			tokenExpiry: true,
		},
		{
			name: "OAuthException com subcódigo 460 - token expirado",
			response: ErrorResponse{Error: ErrorDetails{
				Type: "OAuthException", Code: 102, ErrorSubcode: 460,
			}},
			tokenExpiry: true,
		},
		{
			name:        "Código 4 - rate limit de aplicação",
			response:    ErrorResponse{Error: ErrorDetails{Code: 4}},
			rateLimited: true,
		},
		{
			name:        "Código 613 - rate limit customizado",
			response:    ErrorResponse{Error: ErrorDetails{Code: 613}},
			rateLimited: true,
		},
		{
			name:     "Código 100 - erro comum",
			response: ErrorResponse{Error: ErrorDetails{Code: 100}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.tokenExpiry, tt.response.IsTokenExpired())
			assert.Equal(t, tt.rateLimited, tt.response.IsRateLimited())
		})
	}
}

func TestIsThrottle(t *testing.T) {
	assert.True(t, IsThrottle(&ThrottleError{StatusCode: 429}))
	assert.False(t, IsThrottle(&ProviderError{StatusCode: 500}))
	assert.False(t, IsThrottle(nil))
}

func TestEnvelope_HasNextPage(t *testing.T) {
	assert.False(t, (&Envelope{}).HasNextPage())
	assert.False(t, (&Envelope{Paging: &Paging{}}).HasNextPage())
	assert.True(t, (&Envelope{Paging: &Paging{Next: "https://graph/api?after=x"}}).HasNextPage())
}
