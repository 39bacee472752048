package handler

import (
	"context"
	"net/http"

	"github.com/julienschmidt/httprouter"
	metadomain "github.com/vfg2006/warroom-ads-api/infrastructure/integrator/meta/domain"
	"github.com/vfg2006/warroom-ads-api/internal/usecases/insighting"
	"github.com/vfg2006/warroom-ads-api/pkg/log"
)

// MetaUserFetcher é o recorte do integrador usado pelo handler de identidade
type MetaUserFetcher interface {
	GetMe(ctx context.Context) (*metadomain.MetaUser, error)
}

func AdAccountList(service insighting.Insighter) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		accounts, err := service.ListAdAccounts(r.Context())
		if err != nil {
			logger.WithError(err).Error("accounts: falha ao listar contas de anúncio")
			writeIntegrationError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(accounts)
	})
}

func GetAdAccount(service insighting.Insighter) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		id := httprouter.ParamsFromContext(r.Context()).ByName("id")

		account, err := service.GetAdAccount(r.Context(), id)
		if err != nil {
			logger.WithFields(log.Fields{
				"account_id": id,
				"error":      err.Error(),
			}).Error("accounts: falha ao consultar conta de anúncios")
			writeIntegrationError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(account)
	})
}

func CampaignList(service insighting.Insighter) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		id := httprouter.ParamsFromContext(r.Context()).ByName("id")
		logger.WithField("account_id", id).Info("campaigns: listando campanhas da conta")

		campaigns, err := service.ListCampaigns(r.Context(), id)
		if err != nil {
			logger.WithFields(log.Fields{
				"account_id": id,
				"error":      err.Error(),
			}).Error("campaigns: falha ao listar campanhas")
			writeIntegrationError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(campaigns)
	})
}

// MetaMe retorna o usuário dono do token do provedor, útil para confirmar
// qual credencial está ativa
func MetaMe(metaUser MetaUserFetcher) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := metaUser.GetMe(r.Context())
		if err != nil {
			writeIntegrationError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(user)
	})
}
