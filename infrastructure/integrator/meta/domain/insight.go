package metadomain

import (
	"encoding/json"
	"net/url"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// InsightRow representa um registro de métricas de performance como a API
// devolve: campos numéricos serializados como string
type InsightRow struct {
	AccountID         string `json:"account_id,omitempty"`
	CampaignID        string `json:"campaign_id,omitempty"`
	CampaignName      string `json:"campaign_name,omitempty"`
	Spend             string `json:"spend"`
	Impressions       string `json:"impressions"`
	Clicks            string `json:"clicks"`
	Conversions       string `json:"conversions,omitempty"`
	CPM               string `json:"cpm,omitempty"`
	CPC               string `json:"cpc,omitempty"`
	CTR               string `json:"ctr,omitempty"`
	CostPerConversion string `json:"cost_per_conversion,omitempty"`
	DateStart         string `json:"date_start"`
	DateStop          string `json:"date_stop"`
}

// SpendValue converte o campo spend para float64, com aviso em caso de
// valor inesperado
func (r *InsightRow) SpendValue() float64 {
	return parseFloatField("spend", r.Spend)
}

func (r *InsightRow) ImpressionsValue() int64 {
	return parseIntField("impressions", r.Impressions)
}

func (r *InsightRow) ClicksValue() int64 {
	return parseIntField("clicks", r.Clicks)
}

func (r *InsightRow) ConversionsValue() int64 {
	return parseIntField("conversions", r.Conversions)
}

func (r *InsightRow) CPMValue() float64 {
	return parseFloatField("cpm", r.CPM)
}

func (r *InsightRow) CPCValue() float64 {
	return parseFloatField("cpc", r.CPC)
}

func (r *InsightRow) CTRValue() float64 {
	return parseFloatField("ctr", r.CTR)
}

func (r *InsightRow) CostPerConversionValue() float64 {
	return parseFloatField("cost_per_conversion", r.CostPerConversion)
}

func parseFloatField(field, value string) float64 {
	if value == "" {
		return 0
	}

	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"field": field,
			"value": value,
		}).Warn("insights: erro ao converter métrica para float")
		return 0
	}

	return v
}

func parseIntField(field, value string) int64 {
	if value == "" {
		return 0
	}

	v, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"field": field,
			"value": value,
		}).Warn("insights: erro ao converter métrica para inteiro")
		return 0
	}

	return v
}

// TimeBreakdown é o valor de breakdown que ativa a agregação por data
const TimeBreakdown = "time_breakdown"

type TimeRange struct {
	Since string `json:"since"`
	Until string `json:"until"`
}

type InsightFilter struct {
	Field    string      `json:"field"`
	Operator string      `json:"operator"`
	Value    interface{} `json:"value"`
}

// InsightParams define os parâmetros de consulta de insights. Values()
// serializa no formato esperado pela Graph API
type InsightParams struct {
	Level      string
	Fields     []string
	DatePreset string
	TimeRange  *TimeRange
	Filtering  []InsightFilter
	Breakdowns []string
	Sort       []string
	Limit      int
}

// HasTimeBreakdown reporta se a consulta pede quebra por data
func (p *InsightParams) HasTimeBreakdown() bool {
	if p == nil {
		return false
	}

	for _, b := range p.Breakdowns {
		if b == TimeBreakdown {
			return true
		}
	}

	return false
}

// Values serializa os parâmetros no formato de query string da API
func (p *InsightParams) Values() url.Values {
	values := url.Values{}
	if p == nil {
		return values
	}

	if p.Level != "" {
		values.Set("level", p.Level)
	}

	if len(p.Fields) > 0 {
		values.Set("fields", strings.Join(p.Fields, ","))
	}

	if p.DatePreset != "" {
		values.Set("date_preset", p.DatePreset)
	}

	if p.TimeRange != nil {
		timeRange, err := json.Marshal(p.TimeRange)
		if err == nil {
			values.Set("time_range", string(timeRange))
		}
	}

	if len(p.Filtering) > 0 {
		filtering, err := json.Marshal(p.Filtering)
		if err == nil {
			values.Set("filtering", string(filtering))
		}
	}

	if len(p.Breakdowns) > 0 {
		values.Set("breakdowns", strings.Join(p.Breakdowns, ","))
	}

	if len(p.Sort) > 0 {
		values.Set("sort", strings.Join(p.Sort, ","))
	}

	if p.Limit > 0 {
		values.Set("limit", strconv.Itoa(p.Limit))
	}

	return values
}
