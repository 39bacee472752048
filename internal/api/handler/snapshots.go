package handler

import (
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/vfg2006/warroom-ads-api/infrastructure/repository"
	"github.com/vfg2006/warroom-ads-api/pkg/apiErrors"
	"github.com/vfg2006/warroom-ads-api/pkg/log"
)

// SnapshotHistory serve as métricas históricas persistidas pelo agendador,
// sem gastar quota da API. Por padrão retorna os últimos 30 dias
func SnapshotHistory(repo repository.InsightSnapshotRepository) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest,
				"Histórico indisponível: banco de dados desabilitado", nil)
			return
		}

		logger := log.ForContext(r.Context())
		id := httprouter.ParamsFromContext(r.Context()).ByName("id")

		query := r.URL.Query()

		// Consulta pontual de um único dia
		if raw := query.Get("date"); raw != "" {
			day, err := time.Parse(time.DateOnly, raw)
			if err != nil {
				apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "Parâmetro date inválido", nil)
				return
			}

			snapshot, err := repo.GetByAccountIDAndDate(id, day)
			if err != nil {
				logger.WithField("account_id", id).WithError(err).
					Error("snapshots: falha ao consultar snapshot do dia")
				apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Erro ao consultar histórico", nil)
				return
			}
			if snapshot == nil {
				apiErrors.WriteError(w, apiErrors.ErrNotFound, "Sem snapshot para a data informada", nil)
				return
			}

			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(snapshot)
			return
		}

		until := time.Now()
		since := until.AddDate(0, 0, -30)

		if raw := query.Get("since"); raw != "" {
			parsed, err := time.Parse(time.DateOnly, raw)
			if err != nil {
				apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "Parâmetro since inválido", nil)
				return
			}
			since = parsed
		}
		if raw := query.Get("until"); raw != "" {
			parsed, err := time.Parse(time.DateOnly, raw)
			if err != nil {
				apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "Parâmetro until inválido", nil)
				return
			}
			until = parsed
		}

		snapshots, err := repo.GetByDateRange(id, since, until)
		if err != nil {
			logger.WithField("account_id", id).WithError(err).
				Error("snapshots: falha ao consultar histórico")
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Erro ao consultar histórico", nil)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(snapshots)
	})
}
