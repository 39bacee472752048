package domain

import "time"

// InsightSnapshot é uma fotografia diária das métricas consolidadas de uma
// conta, persistida para consulta histórica sem gastar quota da API
type InsightSnapshot struct {
	ID           int64            `json:"id"`
	AccountID    string           `json:"account_id"`
	ReferenceDay time.Time        `json:"reference_day"`
	Metrics      *CampaignInsight `json:"metrics"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}
