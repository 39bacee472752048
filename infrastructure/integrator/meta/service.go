package meta

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	metadomain "github.com/vfg2006/warroom-ads-api/infrastructure/integrator/meta/domain"
	"github.com/vfg2006/warroom-ads-api/infrastructure/integrator/meta/metaclient"
	"github.com/vfg2006/warroom-ads-api/internal/config"
	"github.com/vfg2006/warroom-ads-api/internal/domain"
	"github.com/vfg2006/warroom-ads-api/pkg/utils"
)

// insightFields são os campos pedidos nas consultas de métricas por campanha
var insightFields = []string{
	"campaign_id",
	"campaign_name",
	"spend",
	"impressions",
	"clicks",
	"conversions",
	"cpm",
	"cpc",
	"ctr",
	"cost_per_conversion",
	"date_start",
	"date_stop",
}

// Integrator é a fachada de alto nível sobre a Graph API de anúncios
type Integrator interface {
	GetMe(ctx context.Context) (*metadomain.MetaUser, error)
	GetAdAccounts(ctx context.Context) ([]*metadomain.AdAccount, error)
	GetAdAccount(ctx context.Context, accountID string) (*metadomain.AdAccount, error)
	GetCampaigns(ctx context.Context, accountID string) ([]*metadomain.Campaign, error)
	GetAccountInsights(ctx context.Context, accountID string, filters *domain.InsightFilters) ([]*metadomain.InsightRow, error)
	GetCampaignInsights(ctx context.Context, campaignID string, filters *domain.InsightFilters) ([]*metadomain.InsightRow, error)
	GetAggregatedInsights(ctx context.Context, accountID string, filters *domain.InsightFilters) (*domain.AggregatedInsights, error)
	GetSpendTrend(ctx context.Context, accountID string, days int) ([]domain.SpendTrendPoint, error)
}

type MetaIntegrator struct {
	cfg    *config.Config
	Client metaclient.Client
	cache  *metaclient.ResponseCache
}

func New(cfg *config.Config, client metaclient.Client, cache *metaclient.ResponseCache) *MetaIntegrator {
	return &MetaIntegrator{
		cfg:    cfg,
		Client: client,
		cache:  cache,
	}
}

// GetMe retorna o usuário dono do token corrente
func (s *MetaIntegrator) GetMe(ctx context.Context) (*metadomain.MetaUser, error) {
	params := url.Values{}
	params.Set("fields", "id,name,email")

	resp, err := s.Client.Request(ctx, "me", &metaclient.RequestOptions{Params: params})
	if err != nil {
		logrus.WithError(err).Error("meta: falha ao consultar o usuário corrente")
		return nil, err
	}

	var user metadomain.MetaUser
	if err := json.Unmarshal(resp.Data, &user); err != nil {
		return nil, fmt.Errorf("erro ao decodificar usuário: %w", err)
	}

	return &user, nil
}

// GetAdAccounts lista as contas de anúncio acessíveis pelo token corrente
func (s *MetaIntegrator) GetAdAccounts(ctx context.Context) ([]*metadomain.AdAccount, error) {
	params := url.Values{}
	params.Set("fields", "id,account_id,name,currency,timezone_name,account_status,business")
	params.Set("limit", "100")

	pager := s.Client.Paginate("me/adaccounts", params, 0)

	var accounts []*metadomain.AdAccount
	for pager.Next(ctx) {
		var page []*metadomain.AdAccount
		if err := json.Unmarshal(pager.Page().Data, &page); err != nil {
			return nil, fmt.Errorf("erro ao decodificar contas de anúncio: %w", err)
		}
		accounts = append(accounts, page...)
	}

	if err := pager.Err(); err != nil {
		logrus.WithError(err).Error("meta: falha ao listar contas de anúncio")
		return nil, err
	}

	logrus.WithField("count", len(accounts)).Debug("meta: contas de anúncio listadas")
	return accounts, nil
}

// GetAdAccount retorna os detalhes de uma conta de anúncios
func (s *MetaIntegrator) GetAdAccount(ctx context.Context, accountID string) (*metadomain.AdAccount, error) {
	params := url.Values{}
	params.Set("fields", "id,account_id,name,currency,timezone_name,account_status,business")

	resp, err := s.Client.Request(ctx, normalizeAccountID(accountID), &metaclient.RequestOptions{Params: params})
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"account_id": accountID,
			"error":      err.Error(),
		}).Error("meta: falha ao consultar conta de anúncios")
		return nil, err
	}

	var account metadomain.AdAccount
	if err := json.Unmarshal(resp.Data, &account); err != nil {
		return nil, fmt.Errorf("erro ao decodificar conta de anúncios: %w", err)
	}

	return &account, nil
}

// GetCampaigns lista todas as campanhas da conta, seguindo a paginação e
// achatando as páginas numa única lista
func (s *MetaIntegrator) GetCampaigns(ctx context.Context, accountID string) ([]*metadomain.Campaign, error) {
	params := url.Values{}
	params.Set("fields", "id,name,status,objective,created_time,updated_time,daily_budget,lifetime_budget")
	params.Set("limit", "100")

	endpoint := fmt.Sprintf("%s/campaigns", normalizeAccountID(accountID))
	pager := s.Client.Paginate(endpoint, params, 0)

	var campaigns []*metadomain.Campaign
	for pager.Next(ctx) {
		var page []*metadomain.Campaign
		if err := json.Unmarshal(pager.Page().Data, &page); err != nil {
			return nil, fmt.Errorf("erro ao decodificar campanhas: %w", err)
		}
		campaigns = append(campaigns, page...)
	}

	if err := pager.Err(); err != nil {
		logrus.WithFields(logrus.Fields{
			"account_id": accountID,
			"error":      err.Error(),
		}).Error("meta: falha ao listar campanhas")
		return nil, err
	}

	return campaigns, nil
}

// GetAccountInsights retorna as métricas consolidadas no nível da conta
func (s *MetaIntegrator) GetAccountInsights(ctx context.Context, accountID string, filters *domain.InsightFilters) ([]*metadomain.InsightRow, error) {
	return s.fetchInsights(ctx, normalizeAccountID(accountID), "account", filters)
}

// GetCampaignInsights retorna as métricas de uma campanha específica,
// consultando o nó da própria campanha. O identificador de campanha não leva
// o prefixo act_
func (s *MetaIntegrator) GetCampaignInsights(ctx context.Context, campaignID string, filters *domain.InsightFilters) ([]*metadomain.InsightRow, error) {
	return s.fetchInsights(ctx, campaignID, "campaign", filters)
}

// GetAggregatedInsights consolida as métricas por campanha num total geral,
// num mapa por campanha e, quando a quebra por data é pedida, num mapa por
// data. O resultado agregado é cacheado com TTL curto sob uma chave canônica
func (s *MetaIntegrator) GetAggregatedInsights(ctx context.Context, accountID string, filters *domain.InsightFilters) (*domain.AggregatedInsights, error) {
	cacheKey := aggregationCacheKey(accountID, filters)
	if cached, ok := s.cache.Get(cacheKey); ok {
		if aggregated, ok := cached.(*domain.AggregatedInsights); ok {
			logrus.WithField("account_id", accountID).Debug("insights: agregação servida do cache")
			return aggregated, nil
		}
	}

	rows, err := s.fetchInsights(ctx, normalizeAccountID(accountID), "campaign", filters)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"account_id": accountID,
			"error":      err.Error(),
		}).Error("insights: falha ao buscar métricas para agregação")
		return nil, err
	}

	byDate := filters != nil && hasTimeBreakdown(filters.Breakdowns)
	aggregated := AggregateInsights(rows, byDate)

	s.cache.Set(cacheKey, aggregated, s.cfg.Meta.InsightsTTL())

	logrus.WithFields(logrus.Fields{
		"account_id": accountID,
		"campaigns":  len(aggregated.ByCampaign),
	}).Debug("insights: métricas agregadas com sucesso")

	return aggregated, nil
}

// GetSpendTrend retorna a série diária de investimento dos últimos N dias
func (s *MetaIntegrator) GetSpendTrend(ctx context.Context, accountID string, days int) ([]domain.SpendTrendPoint, error) {
	if days <= 0 {
		days = 30
	}

	until := time.Now()
	since := until.AddDate(0, 0, -days)

	filters := &domain.InsightFilters{
		Since:      since.Format(time.DateOnly),
		Until:      until.Format(time.DateOnly),
		Breakdowns: []string{metadomain.TimeBreakdown},
	}

	rows, err := s.fetchInsights(ctx, normalizeAccountID(accountID), "campaign", filters)
	if err != nil {
		return nil, err
	}

	spendByDate := make(map[string]float64)
	for _, row := range rows {
		if row.DateStart == "" {
			continue
		}
		spendByDate[row.DateStart] += row.SpendValue()
	}

	points := make([]domain.SpendTrendPoint, 0, len(spendByDate))
	for date, spend := range spendByDate {
		points = append(points, domain.SpendTrendPoint{
			Date:  date,
			Spend: utils.RoundWithTwoDecimalPlace(spend),
		})
	}

	sort.Slice(points, func(i, j int) bool {
		return points[i].Date < points[j].Date
	})

	return points, nil
}

// fetchInsights executa a consulta de insights no nó indicado (conta ou
// campanha, já resolvido pelo chamador), seguindo a paginação até o fim
func (s *MetaIntegrator) fetchInsights(ctx context.Context, node, level string, filters *domain.InsightFilters) ([]*metadomain.InsightRow, error) {
	params := buildInsightParams(level, filters)

	endpoint := fmt.Sprintf("%s/insights", node)
	pager := s.Client.Paginate(endpoint, params.Values(), 0)

	var rows []*metadomain.InsightRow
	for pager.Next(ctx) {
		var page []*metadomain.InsightRow
		if err := json.Unmarshal(pager.Page().Data, &page); err != nil {
			return nil, fmt.Errorf("erro ao decodificar insights: %w", err)
		}
		rows = append(rows, page...)
	}

	if err := pager.Err(); err != nil {
		return nil, err
	}

	return rows, nil
}

// buildInsightParams traduz os filtros internos para os parâmetros da API.
// A quebra por data é um conceito interno de agregação e nunca é enviada
// como breakdown real
func buildInsightParams(level string, filters *domain.InsightFilters) *metadomain.InsightParams {
	params := &metadomain.InsightParams{
		Level:  level,
		Fields: insightFields,
		Limit:  100,
	}

	if filters == nil {
		return params
	}

	if filters.DatePreset != "" {
		params.DatePreset = filters.DatePreset
	}

	if filters.Since != "" && filters.Until != "" {
		params.TimeRange = &metadomain.TimeRange{
			Since: filters.Since,
			Until: filters.Until,
		}
	}

	if len(filters.CampaignIDs) > 0 {
		params.Filtering = []metadomain.InsightFilter{{
			Field:    "campaign.id",
			Operator: "IN",
			Value:    filters.CampaignIDs,
		}}
	}

	for _, b := range filters.Breakdowns {
		if b == metadomain.TimeBreakdown {
			continue
		}
		params.Breakdowns = append(params.Breakdowns, b)
	}

	if hasTimeBreakdown(filters.Breakdowns) {
		// Uma linha por dia por campanha, para o agregador montar o mapa
		// por data
		params.Sort = []string{"date_start_ascending"}
	}

	return params
}

// AggregateInsights consolida as linhas num total geral e num mapa por
// campanha. Os totais são somados e as razões recalculadas a partir das
// somas, nunca pela média das razões parciais. No mapa por campanha, linhas
// repetidas da mesma campanha sobrescrevem a anterior
func AggregateInsights(rows []*metadomain.InsightRow, byDate bool) *domain.AggregatedInsights {
	aggregated := &domain.AggregatedInsights{
		ByCampaign: make(map[string]domain.CampaignInsight),
	}

	if byDate {
		aggregated.ByDate = make(map[string]domain.CampaignInsight)
	}

	var totalSpend float64
	var totalImpressions, totalClicks, totalConversions int64

	for _, row := range rows {
		totalSpend += row.SpendValue()
		totalImpressions += row.ImpressionsValue()
		totalClicks += row.ClicksValue()
		totalConversions += row.ConversionsValue()

		if row.CampaignID != "" {
			aggregated.ByCampaign[row.CampaignID] = toCampaignInsight(row)
		}

		if byDate && row.DateStart != "" {
			bucket, exists := aggregated.ByDate[row.DateStart]
			if !exists {
				// As razões do bucket vêm da primeira linha do dia e não
				// são recalculadas a cada acumulação
				bucket = toCampaignInsight(row)
				bucket.CampaignID = ""
				bucket.CampaignName = ""
			} else {
				bucket.Spend += row.SpendValue()
				bucket.Impressions += row.ImpressionsValue()
				bucket.Clicks += row.ClicksValue()
				bucket.Conversions += row.ConversionsValue()
			}
			aggregated.ByDate[row.DateStart] = bucket
		}
	}

	aggregated.Total = domain.CampaignInsight{
		Spend:       utils.RoundWithTwoDecimalPlace(totalSpend),
		Impressions: totalImpressions,
		Clicks:      totalClicks,
		Conversions: totalConversions,
	}

	aggregated.Total.CPM = utils.RoundWithTwoDecimalPlace(utils.SafeDivide(totalSpend, float64(totalImpressions)) * 1000)
	aggregated.Total.CTR = utils.RoundWithTwoDecimalPlace(utils.SafeDivide(float64(totalClicks), float64(totalImpressions)) * 100)
	aggregated.Total.CPC = utils.RoundWithTwoDecimalPlace(utils.SafeDivide(totalSpend, float64(totalClicks)))
	aggregated.Total.CostPerConversion = utils.RoundWithTwoDecimalPlace(utils.SafeDivide(totalSpend, float64(totalConversions)))

	return aggregated
}

func toCampaignInsight(row *metadomain.InsightRow) domain.CampaignInsight {
	return domain.CampaignInsight{
		CampaignID:        row.CampaignID,
		CampaignName:      row.CampaignName,
		Spend:             row.SpendValue(),
		Impressions:       row.ImpressionsValue(),
		Clicks:            row.ClicksValue(),
		Conversions:       row.ConversionsValue(),
		CPM:               row.CPMValue(),
		CPC:               row.CPCValue(),
		CTR:               row.CTRValue(),
		CostPerConversion: row.CostPerConversionValue(),
		DateStart:         row.DateStart,
		DateStop:          row.DateStop,
	}
}

// aggregationCacheKey monta a chave canônica da consulta agregada: os
// parâmetros entram ordenados por nome para que filtros logicamente iguais
// compartilhem a mesma entrada
func aggregationCacheKey(accountID string, filters *domain.InsightFilters) string {
	params := make(map[string]string)

	if filters != nil {
		if filters.DatePreset != "" {
			params["date_preset"] = filters.DatePreset
		}
		if filters.Since != "" {
			params["since"] = filters.Since
		}
		if filters.Until != "" {
			params["until"] = filters.Until
		}
		if len(filters.CampaignIDs) > 0 {
			ids := append([]string{}, filters.CampaignIDs...)
			sort.Strings(ids)
			params["campaign_ids"] = strings.Join(ids, ",")
		}
		if len(filters.Breakdowns) > 0 {
			params["breakdowns"] = strings.Join(filters.Breakdowns, ",")
		}
	}

	return metaclient.GenerateInsightKey(normalizeAccountID(accountID), params)
}

func hasTimeBreakdown(breakdowns []string) bool {
	for _, b := range breakdowns {
		if b == metadomain.TimeBreakdown {
			return true
		}
	}
	return false
}

// normalizeAccountID garante o prefixo act_ exigido pelos endpoints de conta
func normalizeAccountID(accountID string) string {
	if strings.HasPrefix(accountID, "act_") {
		return accountID
	}
	return "act_" + accountID
}
