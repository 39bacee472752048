package insighting

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metadomain "github.com/vfg2006/warroom-ads-api/infrastructure/integrator/meta/domain"
	"github.com/vfg2006/warroom-ads-api/infrastructure/integrator/meta/mocks"
	"github.com/vfg2006/warroom-ads-api/internal/config"
	"github.com/vfg2006/warroom-ads-api/internal/domain"
	"go.uber.org/mock/gomock"
)

func TestService_ListAdAccounts(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockMeta := mocks.NewMockIntegrator(ctrl)
	service := NewService(&config.Config{}, mockMeta)

	mockMeta.EXPECT().
		GetAdAccounts(gomock.Any()).
		Return([]*metadomain.AdAccount{
			{
				ID:        "act_1",
				AccountID: "1",
				Name:      "Conta 1",
				Currency:  "BRL",
				Business:  &metadomain.Business{ID: "b1", Name: "Empresa"},
			},
			{
				ID:        "act_2",
				AccountID: "2",
				Name:      "Conta 2",
			},
		}, nil)

	accounts, err := service.ListAdAccounts(context.Background())
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, "Empresa", accounts[0].BusinessName)
	assert.Empty(t, accounts[1].BusinessName)
}

func TestService_GetAdAccount_ValidaID(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockMeta := mocks.NewMockIntegrator(ctrl)
	service := NewService(&config.Config{}, mockMeta)

	_, err := service.GetAdAccount(context.Background(), "")
	assert.ErrorIs(t, err, ErrAccountIDRequired)
}

func TestService_ListCampaigns(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockMeta := mocks.NewMockIntegrator(ctrl)
	service := NewService(&config.Config{}, mockMeta)

	mockMeta.EXPECT().
		GetCampaigns(gomock.Any(), "123").
		Return([]*metadomain.Campaign{
			{ID: "c1", Name: "Campanha 1", Status: "ACTIVE", Objective: "OUTCOME_SALES"},
		}, nil)

	campaigns, err := service.ListCampaigns(context.Background(), "123")
	require.NoError(t, err)
	require.Len(t, campaigns, 1)
	assert.Equal(t, "OUTCOME_SALES", campaigns[0].Objective)
}

func TestService_GetAggregatedInsights_ValidacaoDeFiltros(t *testing.T) {
	tests := []struct {
		name        string
		filters     *domain.InsightFilters
		expectedErr error
	}{
		{
			name:    "Sem filtros - válido",
			filters: nil,
		},
		{
			name: "Intervalo completo - válido",
			filters: &domain.InsightFilters{
				Since: "2025-05-01",
				Until: "2025-05-31",
			},
		},
		{
			name: "Apenas since - inválido",
			filters: &domain.InsightFilters{
				Since: "2025-05-01",
			},
			expectedErr: ErrInvalidDateRange,
		},
		{
			name: "Intervalo invertido - inválido",
			filters: &domain.InsightFilters{
				Since: "2025-05-31",
				Until: "2025-05-01",
			},
			expectedErr: ErrInvalidDateRange,
		},
		{
			name: "Data mal formatada - inválido",
			filters: &domain.InsightFilters{
				Since: "01/05/2025",
				Until: "2025-05-31",
			},
			expectedErr: ErrInvalidDateRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockMeta := mocks.NewMockIntegrator(ctrl)
			service := NewService(&config.Config{}, mockMeta)

			if tt.expectedErr == nil {
				mockMeta.EXPECT().
					GetAggregatedInsights(gomock.Any(), "123", tt.filters).
					Return(&domain.AggregatedInsights{}, nil)
			}

			_, err := service.GetAggregatedInsights(context.Background(), "123", tt.filters)

			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestService_GetCampaignInsights(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockMeta := mocks.NewMockIntegrator(ctrl)
	service := NewService(&config.Config{}, mockMeta)

	t.Run("ID vazio é rejeitado sem chamar o integrador", func(t *testing.T) {
		_, err := service.GetCampaignInsights(context.Background(), "", nil)
		assert.ErrorIs(t, err, ErrCampaignIDRequired)
	})

	t.Run("Delega com o identificador da campanha", func(t *testing.T) {
		mockMeta.EXPECT().
			GetCampaignInsights(gomock.Any(), "987654", gomock.Nil()).
			Return([]*metadomain.InsightRow{{CampaignID: "987654"}}, nil)

		rows, err := service.GetCampaignInsights(context.Background(), "987654", nil)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "987654", rows[0].CampaignID)
	})
}

func TestService_GetSpendTrend_ValidaID(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockMeta := mocks.NewMockIntegrator(ctrl)
	service := NewService(&config.Config{}, mockMeta)

	_, err := service.GetSpendTrend(context.Background(), "", 30)
	assert.ErrorIs(t, err, ErrAccountIDRequired)
}
