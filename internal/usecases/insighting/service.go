package insighting

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/warroom-ads-api/infrastructure/integrator/meta"
	metadomain "github.com/vfg2006/warroom-ads-api/infrastructure/integrator/meta/domain"
	"github.com/vfg2006/warroom-ads-api/internal/config"
	"github.com/vfg2006/warroom-ads-api/internal/domain"
)

var (
	ErrAccountIDRequired  = errors.New("identificador da conta é obrigatório")
	ErrCampaignIDRequired = errors.New("identificador da campanha é obrigatório")
	ErrInvalidDateRange   = errors.New("intervalo de datas inválido")
)

// Insighter é a camada de aplicação sobre o integrador de anúncios: valida a
// entrada, delega e converte para os tipos internos
type Insighter interface {
	ListAdAccounts(ctx context.Context) ([]*domain.AdAccount, error)
	GetAdAccount(ctx context.Context, accountID string) (*domain.AdAccount, error)
	ListCampaigns(ctx context.Context, accountID string) ([]*domain.Campaign, error)
	GetAccountInsights(ctx context.Context, accountID string, filters *domain.InsightFilters) ([]*metadomain.InsightRow, error)
	GetCampaignInsights(ctx context.Context, campaignID string, filters *domain.InsightFilters) ([]*metadomain.InsightRow, error)
	GetAggregatedInsights(ctx context.Context, accountID string, filters *domain.InsightFilters) (*domain.AggregatedInsights, error)
	GetSpendTrend(ctx context.Context, accountID string, days int) ([]domain.SpendTrendPoint, error)
}

type Service struct {
	cfg         *config.Config
	metaService meta.Integrator
}

func NewService(cfg *config.Config, metaService meta.Integrator) Insighter {
	return &Service{
		cfg:         cfg,
		metaService: metaService,
	}
}

func (s *Service) ListAdAccounts(ctx context.Context) ([]*domain.AdAccount, error) {
	accounts, err := s.metaService.GetAdAccounts(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]*domain.AdAccount, 0, len(accounts))
	for _, account := range accounts {
		out = append(out, toDomainAdAccount(account))
	}

	return out, nil
}

func (s *Service) GetAdAccount(ctx context.Context, accountID string) (*domain.AdAccount, error) {
	if accountID == "" {
		return nil, ErrAccountIDRequired
	}

	account, err := s.metaService.GetAdAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	return toDomainAdAccount(account), nil
}

func (s *Service) ListCampaigns(ctx context.Context, accountID string) ([]*domain.Campaign, error) {
	if accountID == "" {
		return nil, ErrAccountIDRequired
	}

	campaigns, err := s.metaService.GetCampaigns(ctx, accountID)
	if err != nil {
		return nil, err
	}

	out := make([]*domain.Campaign, 0, len(campaigns))
	for _, campaign := range campaigns {
		out = append(out, &domain.Campaign{
			ID:             campaign.ID,
			Name:           campaign.Name,
			Status:         campaign.Status,
			Objective:      campaign.Objective,
			CreatedTime:    campaign.CreatedTime,
			UpdatedTime:    campaign.UpdatedTime,
			DailyBudget:    campaign.DailyBudget,
			LifetimeBudget: campaign.LifetimeBudget,
		})
	}

	return out, nil
}

func (s *Service) GetAccountInsights(ctx context.Context, accountID string, filters *domain.InsightFilters) ([]*metadomain.InsightRow, error) {
	if accountID == "" {
		return nil, ErrAccountIDRequired
	}

	if err := validateFilters(filters); err != nil {
		return nil, err
	}

	return s.metaService.GetAccountInsights(ctx, accountID, filters)
}

func (s *Service) GetCampaignInsights(ctx context.Context, campaignID string, filters *domain.InsightFilters) ([]*metadomain.InsightRow, error) {
	if campaignID == "" {
		return nil, ErrCampaignIDRequired
	}

	if err := validateFilters(filters); err != nil {
		return nil, err
	}

	return s.metaService.GetCampaignInsights(ctx, campaignID, filters)
}

func (s *Service) GetAggregatedInsights(ctx context.Context, accountID string, filters *domain.InsightFilters) (*domain.AggregatedInsights, error) {
	if accountID == "" {
		return nil, ErrAccountIDRequired
	}

	if err := validateFilters(filters); err != nil {
		return nil, err
	}

	aggregated, err := s.metaService.GetAggregatedInsights(ctx, accountID, filters)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"account_id": accountID,
			"error":      err.Error(),
		}).Error("insights: falha ao obter métricas agregadas")
		return nil, err
	}

	return aggregated, nil
}

func (s *Service) GetSpendTrend(ctx context.Context, accountID string, days int) ([]domain.SpendTrendPoint, error) {
	if accountID == "" {
		return nil, ErrAccountIDRequired
	}

	return s.metaService.GetSpendTrend(ctx, accountID, days)
}

// validateFilters rejeita intervalos incompletos ou invertidos antes de
// gastar quota da API
func validateFilters(filters *domain.InsightFilters) error {
	if filters == nil {
		return nil
	}

	if (filters.Since == "") != (filters.Until == "") {
		return ErrInvalidDateRange
	}

	if filters.Since != "" {
		since, err := time.Parse(time.DateOnly, filters.Since)
		if err != nil {
			return ErrInvalidDateRange
		}

		until, err := time.Parse(time.DateOnly, filters.Until)
		if err != nil {
			return ErrInvalidDateRange
		}

		if until.Before(since) {
			return ErrInvalidDateRange
		}
	}

	return nil
}

func toDomainAdAccount(account *metadomain.AdAccount) *domain.AdAccount {
	out := &domain.AdAccount{
		ID:            account.ID,
		AccountID:     account.AccountID,
		Name:          account.Name,
		Currency:      account.Currency,
		TimezoneName:  account.TimezoneName,
		AccountStatus: account.AccountStatus,
	}

	if account.Business != nil {
		out.BusinessName = account.Business.Name
	}

	return out
}
