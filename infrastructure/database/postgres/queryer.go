package postgres

import "database/sql"

// Queryer é o recorte mínimo usado pelos repositórios, satisfeito por
// *Connection via o *sql.DB embutido
type Queryer interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}
