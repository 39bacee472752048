package handler

import (
	"net/http"

	"github.com/pkg/errors"
	metadomain "github.com/vfg2006/warroom-ads-api/infrastructure/integrator/meta/domain"
	"github.com/vfg2006/warroom-ads-api/internal/usecases/insighting"
	"github.com/vfg2006/warroom-ads-api/pkg/apiErrors"
)

// writeIntegrationError converte erros de validação e do integrador em
// respostas padronizadas da API
func writeIntegrationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, insighting.ErrAccountIDRequired),
		errors.Is(err, insighting.ErrCampaignIDRequired),
		errors.Is(err, insighting.ErrInvalidDateRange):
		apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, err.Error(), nil)
		return
	}

	var authErr *metadomain.AuthError
	if errors.As(err, &authErr) {
		apiErrors.WriteError(w, apiErrors.ErrInvalidToken, authErr.Message, nil)
		return
	}

	var netErr *metadomain.NetworkError
	if errors.As(err, &netErr) {
		apiErrors.WriteError(w, apiErrors.ErrCommunication, "Falha de comunicação com o provedor", nil)
		return
	}

	var providerErr *metadomain.ProviderError
	if errors.As(err, &providerErr) {
		if providerErr.StatusCode == http.StatusTooManyRequests {
			apiErrors.WriteError(w, apiErrors.ErrRateLimited, providerErr.Error(), nil)
			return
		}
		apiErrors.WriteError(w, apiErrors.ErrExternalService, providerErr.Error(), nil)
		return
	}

	apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro interno", nil)
}
