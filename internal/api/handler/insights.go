package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/julienschmidt/httprouter"
	"github.com/vfg2006/warroom-ads-api/internal/domain"
	"github.com/vfg2006/warroom-ads-api/internal/usecases/insighting"
	"github.com/vfg2006/warroom-ads-api/pkg/apiErrors"
	"github.com/vfg2006/warroom-ads-api/pkg/log"
)

// GetAccountInsights retorna as métricas cruas no nível da conta
func GetAccountInsights(service insighting.Insighter) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		id := httprouter.ParamsFromContext(r.Context()).ByName("id")
		filters := parseInsightFilters(r)

		insights, err := service.GetAccountInsights(r.Context(), id, filters)
		if err != nil {
			logger.WithFields(log.Fields{
				"account_id": id,
				"error":      err.Error(),
			}).Error("insights: falha ao consultar métricas da conta")
			writeIntegrationError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(insights)
	})
}

// GetCampaignInsights retorna as métricas do nó de uma campanha específica
func GetCampaignInsights(service insighting.Insighter) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		id := httprouter.ParamsFromContext(r.Context()).ByName("id")
		filters := parseInsightFilters(r)

		insights, err := service.GetCampaignInsights(r.Context(), id, filters)
		if err != nil {
			logger.WithFields(log.Fields{
				"campaign_id": id,
				"error":       err.Error(),
			}).Error("insights: falha ao consultar métricas da campanha")
			writeIntegrationError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(insights)
	})
}

// GetAggregatedInsights retorna total geral, mapa por campanha e, quando a
// quebra por data é pedida, mapa por data
func GetAggregatedInsights(service insighting.Insighter) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		id := httprouter.ParamsFromContext(r.Context()).ByName("id")
		filters := parseInsightFilters(r)

		logger.WithFields(log.Fields{
			"account_id": id,
			"campaigns":  len(filters.CampaignIDs),
		}).Info("insights: consultando métricas agregadas")

		aggregated, err := service.GetAggregatedInsights(r.Context(), id, filters)
		if err != nil {
			logger.WithFields(log.Fields{
				"account_id": id,
				"error":      err.Error(),
			}).Error("insights: falha ao consultar métricas agregadas")
			writeIntegrationError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(aggregated)
	})
}

// GetSpendTrend retorna a série diária de investimento dos últimos N dias
func GetSpendTrend(service insighting.Insighter) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		id := httprouter.ParamsFromContext(r.Context()).ByName("id")

		days := 30
		if raw := r.URL.Query().Get("days"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed <= 0 {
				apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "Parâmetro days inválido", nil)
				return
			}
			days = parsed
		}

		trend, err := service.GetSpendTrend(r.Context(), id, days)
		if err != nil {
			logger.WithFields(log.Fields{
				"account_id": id,
				"error":      err.Error(),
			}).Error("insights: falha ao consultar tendência de investimento")
			writeIntegrationError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(trend)
	})
}

func parseInsightFilters(r *http.Request) *domain.InsightFilters {
	query := r.URL.Query()

	filters := &domain.InsightFilters{
		DatePreset: query.Get("date_preset"),
		Since:      query.Get("since"),
		Until:      query.Get("until"),
	}

	if raw := query.Get("campaign_ids"); raw != "" {
		filters.CampaignIDs = strings.Split(raw, ",")
	}

	if raw := query.Get("breakdowns"); raw != "" {
		filters.Breakdowns = strings.Split(raw, ",")
	}

	return filters
}
