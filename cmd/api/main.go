package main

import (
	"context"
	"os"
	"path"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/warroom-ads-api/infrastructure/database/postgres"
	"github.com/vfg2006/warroom-ads-api/infrastructure/integrator/meta"
	"github.com/vfg2006/warroom-ads-api/infrastructure/integrator/meta/metaclient"
	"github.com/vfg2006/warroom-ads-api/infrastructure/repository"
	"github.com/vfg2006/warroom-ads-api/internal/api"
	"github.com/vfg2006/warroom-ads-api/internal/config"
	"github.com/vfg2006/warroom-ads-api/internal/scheduler"
	"github.com/vfg2006/warroom-ads-api/internal/usecases/authenticating"
	"github.com/vfg2006/warroom-ads-api/internal/usecases/insighting"
)

func main() {
	configureLogger()

	cfg, err := config.NewConfig()
	if err != nil {
		logrus.Fatal(err)
	}

	logLevel, err := logrus.ParseLevel(cfg.App.LogLevel)
	if err != nil {
		logrus.Warnf("Nível de log inválido: %s, usando 'info'", cfg.App.LogLevel)
		logLevel = logrus.InfoLevel
	}
	logrus.SetLevel(logLevel)
	logrus.Infof("Nível de log configurado para: %s", logLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	authenticator := authenticating.NewService(cfg)

	tokenManager := metaclient.NewTokenManager(cfg)
	quotaGuard := metaclient.NewQuotaGuard(cfg)
	responseCache := metaclient.NewResponseCache(cfg)

	metaClient := metaclient.NewClient(cfg, tokenManager, quotaGuard, responseCache)
	metaIntegrator := meta.New(cfg, metaClient, responseCache)

	insightService := insighting.NewService(cfg, metaIntegrator)

	// O banco é opcional: sem ele a API funciona normalmente, apenas sem a
	// persistência de snapshots históricos
	var snapshotSyncService *scheduler.InsightSnapshotSyncService
	var snapshotRepo repository.InsightSnapshotRepository
	if cfg.Database.Enabled {
		pgConn := pgconn(ctx, cfg.Database)
		defer pgConn.Close()

		snapshotRepo = repository.NewInsightSnapshotRepository(pgConn)
		snapshotSyncService = scheduler.NewInsightSnapshotSyncService(snapshotRepo, insightService, cfg)

		if err := snapshotSyncService.Start(ctx); err != nil {
			logrus.WithError(err).Error("Erro ao iniciar o agendador de snapshots de métricas")
		} else {
			logrus.Info("Agendador de snapshots de métricas iniciado com sucesso")
		}
	} else {
		logrus.Info("Banco de dados desabilitado, snapshots históricos indisponíveis")
	}

	server, err := api.New(
		cfg,
		insightService,
		metaIntegrator,
		metaClient,
		tokenManager,
		authenticator,
		snapshotSyncService,
		snapshotRepo,
	)
	if err != nil {
		logrus.Fatal(err)
	}

	if err := server.Run(ctx); err != nil {
		logrus.Error(err)
	}
}

// configureLogger configura o formato e comportamento dos logs
func configureLogger() {
	_, file, _, _ := runtime.Caller(0)
	dir := path.Dir(file)
	os.Chdir(dir)

	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
}

// pgconn cria uma conexão com o banco de dados
func pgconn(ctx context.Context, dbConfig config.Database) *postgres.Connection {
	conn, err := postgres.NewConnection(ctx, dbConfig)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao conectar ao PostgreSQL")
	}

	err = conn.Ping(ctx)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao testar conexão com PostgreSQL")
	}

	logrus.Info("Conexão com PostgreSQL estabelecida com sucesso")
	return conn
}
