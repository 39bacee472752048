package handler

import (
	"net/http"

	"github.com/vfg2006/warroom-ads-api/infrastructure/integrator/meta"
	"github.com/vfg2006/warroom-ads-api/infrastructure/integrator/meta/metaclient"
	"github.com/vfg2006/warroom-ads-api/infrastructure/repository"
	"github.com/vfg2006/warroom-ads-api/internal/api/handler/router"
	"github.com/vfg2006/warroom-ads-api/internal/scheduler"
	"github.com/vfg2006/warroom-ads-api/internal/usecases/authenticating"
	"github.com/vfg2006/warroom-ads-api/internal/usecases/insighting"
)

func Healthcheck() []router.Route {
	return []router.Route{
		{
			Path:    "/healthcheck",
			Method:  http.MethodGet,
			Handler: HealthcheckHandler(),
		},
	}
}

func Authentication(service authenticating.Authenticator) []router.Route {
	return []router.Route{
		{
			Path:    "/v1/login",
			Method:  http.MethodPost,
			Handler: Login(service),
		},
	}
}

// MetaAuth são as rotas do fluxo OAuth2 com o provedor de anúncios
func MetaAuth(tokens *metaclient.TokenManager) []router.Route {
	return []router.Route{
		{
			Path:    "/v1/meta/auth/url",
			Method:  http.MethodGet,
			Handler: MetaAuthorizationURL(tokens),
		},
		{
			Path:    "/v1/meta/auth/exchange",
			Method:  http.MethodPost,
			Handler: MetaExchangeToken(tokens),
		},
		{
			Path:    "/v1/meta/auth/token",
			Method:  http.MethodPost,
			Handler: MetaSetToken(tokens),
		},
		{
			Path:    "/v1/meta/auth/refresh",
			Method:  http.MethodPost,
			Handler: MetaRefreshToken(tokens),
		},
		{
			Path:    "/v1/meta/auth/verify",
			Method:  http.MethodGet,
			Handler: MetaVerifyToken(tokens),
		},
		{
			Path:    "/v1/meta/auth/revoke",
			Method:  http.MethodPost,
			Handler: MetaRevokeToken(tokens),
		},
	}
}

func AdAccounts(service insighting.Insighter, metaService meta.Integrator) []router.Route {
	return []router.Route{
		{
			Path:    "/v1/meta/me",
			Method:  http.MethodGet,
			Handler: MetaMe(metaService),
		},
		{
			Path:    "/v1/adAccounts",
			Method:  http.MethodGet,
			Handler: AdAccountList(service),
		},
		{
			Path:    "/v1/adAccounts/:id",
			Method:  http.MethodGet,
			Handler: GetAdAccount(service),
		},
		{
			Path:    "/v1/adAccounts/:id/campaigns",
			Method:  http.MethodGet,
			Handler: CampaignList(service),
		},
	}
}

func Insights(service insighting.Insighter) []router.Route {
	return []router.Route{
		{
			Path:    "/v1/adAccounts/:id/insights",
			Method:  http.MethodGet,
			Handler: GetAccountInsights(service),
		},
		{
			Path:    "/v1/adAccounts/:id/insights/aggregated",
			Method:  http.MethodGet,
			Handler: GetAggregatedInsights(service),
		},
		{
			Path:    "/v1/adAccounts/:id/insights/spend-trend",
			Method:  http.MethodGet,
			Handler: GetSpendTrend(service),
		},
		{
			Path:    "/v1/campaigns/:id/insights",
			Method:  http.MethodGet,
			Handler: GetCampaignInsights(service),
		},
	}
}

// Diagnostics são as rotas de observabilidade da integração
func Diagnostics(client metaclient.Client, tokens *metaclient.TokenManager) []router.Route {
	return []router.Route{
		{
			Path:    "/v1/meta/status",
			Method:  http.MethodGet,
			Handler: MetaStatus(client, tokens),
		},
		{
			Path:    "/v1/meta/requests",
			Method:  http.MethodGet,
			Handler: MetaRequestLogs(client),
		},
		{
			Path:    "/v1/meta/requests",
			Method:  http.MethodDelete,
			Handler: MetaClearRequestLogs(client),
		},
		{
			Path:    "/v1/meta/cache",
			Method:  http.MethodDelete,
			Handler: MetaClearCache(client),
		},
	}
}

func SnapshotSync(service *scheduler.InsightSnapshotSyncService, repo repository.InsightSnapshotRepository) []router.Route {
	return []router.Route{
		{
			Path:    "/v1/snapshots/sync",
			Method:  http.MethodPost,
			Handler: RunSnapshotSync(service),
		},
		{
			Path:    "/v1/snapshots/sync/status",
			Method:  http.MethodGet,
			Handler: SnapshotSyncStatus(service),
		},
		{
			Path:    "/v1/adAccounts/:id/snapshots",
			Method:  http.MethodGet,
			Handler: SnapshotHistory(repo),
		},
	}
}
