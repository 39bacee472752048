package metadomain

import "encoding/json"

type Cursors struct {
	Before string `json:"before"`
	After  string `json:"after"`
}

type Paging struct {
	Cursors  Cursors `json:"cursors"`
	Next     string  `json:"next,omitempty"`
	Previous string  `json:"previous,omitempty"`
}

// Envelope é o envelope padrão das respostas da Graph API. O campo Data é
// mantido bruto para que cada endpoint decodifique sua própria variante
// tipada na borda
type Envelope struct {
	Data   json.RawMessage `json:"data"`
	Paging *Paging         `json:"paging,omitempty"`
	Error  *ErrorDetails   `json:"error,omitempty"`
}

// HasNextPage reporta se a resposta aponta para uma próxima página
func (e *Envelope) HasNextPage() bool {
	return e.Paging != nil && e.Paging.Next != ""
}
