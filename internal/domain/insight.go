package domain

// CampaignInsight é uma linha de métricas já convertida para tipos numéricos,
// pronta para agregação e exibição
type CampaignInsight struct {
	CampaignID        string  `json:"campaign_id,omitempty"`
	CampaignName      string  `json:"campaign_name,omitempty"`
	Spend             float64 `json:"spend"`
	Impressions       int64   `json:"impressions"`
	Clicks            int64   `json:"clicks"`
	Conversions       int64   `json:"conversions"`
	CPM               float64 `json:"cpm"`
	CPC               float64 `json:"cpc"`
	CTR               float64 `json:"ctr"`
	CostPerConversion float64 `json:"cost_per_conversion"`
	DateStart         string  `json:"date_start,omitempty"`
	DateStop          string  `json:"date_stop,omitempty"`
}

// AggregatedInsights consolida as métricas de várias campanhas num total
// geral, num mapa por campanha e, opcionalmente, num mapa por data
type AggregatedInsights struct {
	Total      CampaignInsight            `json:"total"`
	ByCampaign map[string]CampaignInsight `json:"by_campaign"`
	ByDate     map[string]CampaignInsight `json:"by_date,omitempty"`
}

// SpendTrendPoint é um ponto da série temporal de investimento
type SpendTrendPoint struct {
	Date  string  `json:"date"`
	Spend float64 `json:"spend"`
}

// InsightFilters são os filtros aceitos pelas consultas de insights expostas
// pela API própria
type InsightFilters struct {
	DatePreset  string   `json:"date_preset,omitempty"`
	Since       string   `json:"since,omitempty"`
	Until       string   `json:"until,omitempty"`
	CampaignIDs []string `json:"campaign_ids,omitempty"`
	Breakdowns  []string `json:"breakdowns,omitempty"`
}
