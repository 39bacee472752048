package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/warroom-ads-api/infrastructure/repository"
	"github.com/vfg2006/warroom-ads-api/internal/config"
	"github.com/vfg2006/warroom-ads-api/internal/domain"
	"github.com/vfg2006/warroom-ads-api/internal/usecases/insighting"
)

// InsightSnapshotSyncService agenda a captura diária das métricas agregadas
// das contas configuradas e as persiste como snapshots
type InsightSnapshotSyncService struct {
	scheduler           *gocron.Scheduler
	cfg                 *config.Config
	snapshotRepo        repository.InsightSnapshotRepository
	insightService      insighting.Insighter
	syncRunning         bool
	syncMutex           sync.Mutex
	lastSyncStartedAt   time.Time
	lastSyncCompletedAt time.Time
}

// NewInsightSnapshotSyncService cria o serviço de sincronização de snapshots
func NewInsightSnapshotSyncService(
	snapshotRepo repository.InsightSnapshotRepository,
	insightService insighting.Insighter,
	cfg *config.Config,
) *InsightSnapshotSyncService {
	logrus.WithFields(logrus.Fields{
		"cron_schedule":         cfg.SnapshotSync.CronSchedule,
		"lookback_days":         cfg.SnapshotSync.LookbackDays,
		"request_delay_seconds": cfg.SnapshotSync.RequestDelaySeconds,
		"accounts":              len(cfg.SnapshotSync.AccountIDs),
		"sync_enabled":          cfg.SnapshotSync.Enabled,
	}).Info("Configuração do agendador de snapshots carregada")

	return &InsightSnapshotSyncService{
		scheduler:      gocron.NewScheduler(time.Local),
		cfg:            cfg,
		snapshotRepo:   snapshotRepo,
		insightService: insightService,
	}
}

// Start agenda a sincronização e a limpeza de snapshots antigos. O agendador
// para quando o contexto é cancelado
func (s *InsightSnapshotSyncService) Start(ctx context.Context) error {
	if !s.cfg.SnapshotSync.Enabled {
		logrus.Info("Sincronização de snapshots desabilitada por configuração")
		return nil
	}

	logrus.WithField("cron", s.cfg.SnapshotSync.CronSchedule).
		Info("Iniciando agendador de snapshots de métricas")

	_, err := s.scheduler.Cron(s.cfg.SnapshotSync.CronSchedule).Do(func() {
		s.SyncAll(context.Background())
	})
	if err != nil {
		return fmt.Errorf("erro ao agendar sincronização de snapshots: %w", err)
	}

	s.scheduler.StartAsync()

	go func() {
		<-ctx.Done()
		logrus.Info("Parando agendador de snapshots de métricas")
		s.scheduler.Stop()
	}()

	return nil
}

// SyncAll captura um snapshot para cada conta configurada, com um intervalo
// entre contas para não pressionar a quota da API. Pode ser chamado
// manualmente via endpoint de sincronização
func (s *InsightSnapshotSyncService) SyncAll(ctx context.Context) {
	s.syncMutex.Lock()
	if s.syncRunning {
		s.syncMutex.Unlock()
		logrus.Info("Sincronização de snapshots já em andamento, ignorando")
		return
	}
	s.syncRunning = true
	s.lastSyncStartedAt = time.Now()
	s.syncMutex.Unlock()

	defer func() {
		s.syncMutex.Lock()
		s.syncRunning = false
		s.lastSyncCompletedAt = time.Now()
		s.syncMutex.Unlock()
	}()

	accounts := s.cfg.SnapshotSync.AccountIDs
	if len(accounts) == 0 {
		logrus.Info("Nenhuma conta configurada para sincronização de snapshots")
		return
	}

	logrus.WithField("accounts", len(accounts)).
		Info("Iniciando sincronização de snapshots de métricas")

	delay := time.Duration(s.cfg.SnapshotSync.RequestDelaySeconds) * time.Second
	synced := 0

	for i, accountID := range accounts {
		if i > 0 && delay > 0 {
			time.Sleep(delay)
		}

		if err := s.syncAccount(ctx, accountID); err != nil {
			logrus.WithFields(logrus.Fields{
				"account_id": accountID,
				"error":      err.Error(),
			}).Error("Erro ao sincronizar snapshot da conta")
			continue
		}
		synced++
	}

	if s.cfg.SnapshotSync.RetentionDays > 0 {
		deleted, err := s.snapshotRepo.DeleteOlderThan(s.cfg.SnapshotSync.RetentionDays)
		if err != nil {
			logrus.WithError(err).Error("Erro ao remover snapshots antigos")
		} else if deleted > 0 {
			logrus.WithField("deleted", deleted).Info("Snapshots antigos removidos")
		}
	}

	logrus.WithFields(logrus.Fields{
		"synced": synced,
		"total":  len(accounts),
	}).Info("Sincronização de snapshots concluída")
}

// Status reporta o estado corrente da sincronização
func (s *InsightSnapshotSyncService) Status() (running bool, startedAt, completedAt time.Time) {
	s.syncMutex.Lock()
	defer s.syncMutex.Unlock()

	return s.syncRunning, s.lastSyncStartedAt, s.lastSyncCompletedAt
}

// syncAccount busca as métricas agregadas do período de lookback e grava um
// snapshot por dia retornado
func (s *InsightSnapshotSyncService) syncAccount(ctx context.Context, accountID string) error {
	lookback := s.cfg.SnapshotSync.LookbackDays
	if lookback <= 0 {
		lookback = 7
	}

	until := time.Now()
	since := until.AddDate(0, 0, -lookback)

	filters := &domain.InsightFilters{
		Since:      since.Format(time.DateOnly),
		Until:      until.Format(time.DateOnly),
		Breakdowns: []string{"time_breakdown"},
	}

	aggregated, err := s.insightService.GetAggregatedInsights(ctx, accountID, filters)
	if err != nil {
		return err
	}

	for dateStr, metrics := range aggregated.ByDate {
		day, parseErr := time.Parse(time.DateOnly, dateStr)
		if parseErr != nil {
			logrus.WithFields(logrus.Fields{
				"account_id": accountID,
				"date":       dateStr,
			}).Warn("Data inválida no snapshot, ignorando")
			continue
		}

		dayMetrics := metrics
		snapshot := &domain.InsightSnapshot{
			AccountID:    accountID,
			ReferenceDay: day,
			Metrics:      &dayMetrics,
		}

		if err := s.snapshotRepo.SaveOrUpdate(snapshot); err != nil {
			return err
		}
	}

	logrus.WithFields(logrus.Fields{
		"account_id": accountID,
		"days":       len(aggregated.ByDate),
	}).Debug("Snapshot da conta sincronizado")

	return nil
}
