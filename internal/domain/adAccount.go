package domain

// AdAccount é a visão interna de uma conta de anúncios
type AdAccount struct {
	ID            string `json:"id"`
	AccountID     string `json:"account_id"`
	Name          string `json:"name"`
	Currency      string `json:"currency"`
	TimezoneName  string `json:"timezone_name"`
	AccountStatus int    `json:"account_status"`
	BusinessName  string `json:"business_name,omitempty"`
}

// Campaign é a visão interna de uma campanha
type Campaign struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Status         string `json:"status"`
	Objective      string `json:"objective"`
	CreatedTime    string `json:"created_time,omitempty"`
	UpdatedTime    string `json:"updated_time,omitempty"`
	DailyBudget    string `json:"daily_budget,omitempty"`
	LifetimeBudget string `json:"lifetime_budget,omitempty"`
}
