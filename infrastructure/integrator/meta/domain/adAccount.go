package metadomain

// MetaUser representa o usuário autenticado na Graph API
type MetaUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

type Business struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type AdAccount struct {
	ID            string    `json:"id"`
	AccountID     string    `json:"account_id"`
	Name          string    `json:"name"`
	Currency      string    `json:"currency"`
	TimezoneName  string    `json:"timezone_name"`
	AccountStatus int       `json:"account_status"`
	Business      *Business `json:"business,omitempty"`
}
