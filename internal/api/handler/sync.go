package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/warroom-ads-api/internal/scheduler"
	"github.com/vfg2006/warroom-ads-api/pkg/apiErrors"
)

// RunSnapshotSync dispara a sincronização de snapshots fora do horário
// agendado. A execução acontece em background e o endpoint responde imediato
func RunSnapshotSync(service *scheduler.InsightSnapshotSyncService) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if service == nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Sincronização de snapshots não habilitada", nil)
			return
		}

		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
			defer cancel()
			service.SyncAll(ctx)
		}()

		logrus.Info("Sincronização manual de snapshots disparada")

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(map[string]string{
			"status": "started",
		})
	})
}

// SnapshotSyncStatus reporta se há sincronização em andamento e os horários
// da última execução
func SnapshotSyncStatus(service *scheduler.InsightSnapshotSyncService) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if service == nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Sincronização de snapshots não habilitada", nil)
			return
		}

		running, startedAt, completedAt := service.Status()

		response := map[string]any{
			"running": running,
		}
		if !startedAt.IsZero() {
			response["last_started_at"] = startedAt
		}
		if !completedAt.IsZero() {
			response["last_completed_at"] = completedAt
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	})
}
