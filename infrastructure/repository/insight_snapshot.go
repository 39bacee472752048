package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"github.com/vfg2006/warroom-ads-api/infrastructure/database/postgres"
	"github.com/vfg2006/warroom-ads-api/internal/domain"
)

const (
	insightSnapshotsTable = "insight_snapshots s"
)

// InsightSnapshotRepository persiste fotografias diárias de métricas por
// conta, para consulta histórica sem gastar quota da API
type InsightSnapshotRepository interface {
	GetByAccountIDAndDate(accountID string, date time.Time) (*domain.InsightSnapshot, error)
	GetByDateRange(accountID string, startDate, endDate time.Time) ([]*domain.InsightSnapshot, error)
	SaveOrUpdate(snapshot *domain.InsightSnapshot) error
	DeleteOlderThan(days int) (int64, error)
}

type insightSnapshotRepository struct {
	conn postgres.Queryer
}

func NewInsightSnapshotRepository(conn postgres.Queryer) InsightSnapshotRepository {
	return &insightSnapshotRepository{
		conn: conn,
	}
}

func (r *insightSnapshotRepository) GetByAccountIDAndDate(accountID string, date time.Time) (*domain.InsightSnapshot, error) {
	query, args, err := squirrel.
		Select("s.id, s.account_id, s.reference_day, s.metrics, s.created_at, s.updated_at").
		From(insightSnapshotsTable).
		Where(squirrel.Eq{"s.account_id": accountID, "s.reference_day": date.Format("2006-01-02")}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	row := r.conn.QueryRow(query, args...)
	snapshot, err := r.scanSnapshot(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("erro ao escanear snapshot: %w", err)
	}

	return snapshot, nil
}

func (r *insightSnapshotRepository) GetByDateRange(accountID string, startDate, endDate time.Time) ([]*domain.InsightSnapshot, error) {
	query, args, err := squirrel.
		Select("s.id, s.account_id, s.reference_day, s.metrics, s.created_at, s.updated_at").
		From(insightSnapshotsTable).
		Where(squirrel.Eq{"s.account_id": accountID}).
		Where(squirrel.GtOrEq{"s.reference_day": startDate.Format("2006-01-02")}).
		Where(squirrel.LtOrEq{"s.reference_day": endDate.Format("2006-01-02")}).
		OrderBy("s.reference_day ASC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	rows, err := r.conn.Query(query, args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("erro ao executar a query: %w", err)
	}
	defer rows.Close()

	snapshots := make([]*domain.InsightSnapshot, 0)
	for rows.Next() {
		snapshot, err := r.scanSnapshotRows(rows)
		if err != nil {
			return nil, fmt.Errorf("erro ao escanear snapshots: %w", err)
		}
		snapshots = append(snapshots, snapshot)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("erro durante a iteração de linhas: %w", err)
	}

	return snapshots, nil
}

func (r *insightSnapshotRepository) SaveOrUpdate(snapshot *domain.InsightSnapshot) error {
	var metricsJSON []byte
	var err error

	if snapshot.Metrics != nil {
		metricsJSON, err = json.Marshal(snapshot.Metrics)
		if err != nil {
			return fmt.Errorf("erro ao serializar métricas para JSON: %w", err)
		}
	}

	query := squirrel.StatementBuilder.
		Insert("insight_snapshots").
		Columns("account_id", "reference_day", "metrics").
		Values(
			snapshot.AccountID,
			snapshot.ReferenceDay.Format("2006-01-02"),
			metricsJSON,
		).
		Suffix(`
			ON CONFLICT (account_id, reference_day) DO UPDATE SET
				metrics = EXCLUDED.metrics,
				updated_at = NOW()
		`).
		PlaceholderFormat(squirrel.Dollar)

	sqlQuery, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	_, err = r.conn.Exec(sqlQuery, args...)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			return fmt.Errorf("erro no banco de dados: %w (código: %s)", pqErr, pqErr.Code)
		}
		return fmt.Errorf("erro ao executar a query: %w", err)
	}

	return nil
}

func (r *insightSnapshotRepository) DeleteOlderThan(days int) (int64, error) {
	cutoffDate := time.Now().AddDate(0, 0, -days).Format("2006-01-02")

	query, args, err := squirrel.
		Delete("insight_snapshots").
		Where(squirrel.Lt{"reference_day": cutoffDate}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("erro ao construir a query: %w", err)
	}

	result, err := r.conn.Exec(query, args...)
	if err != nil {
		return 0, fmt.Errorf("erro ao executar a query: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("erro ao obter número de linhas afetadas: %w", err)
	}

	return rowsAffected, nil
}

func (r *insightSnapshotRepository) scanSnapshot(row *sql.Row) (*domain.InsightSnapshot, error) {
	snapshot := &domain.InsightSnapshot{}
	var metricsJSON []byte
	var dayStr string

	err := row.Scan(
		&snapshot.ID,
		&snapshot.AccountID,
		&dayStr,
		&metricsJSON,
		&snapshot.CreatedAt,
		&snapshot.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := r.fillSnapshot(snapshot, dayStr, metricsJSON); err != nil {
		return nil, err
	}

	return snapshot, nil
}

func (r *insightSnapshotRepository) scanSnapshotRows(rows *sql.Rows) (*domain.InsightSnapshot, error) {
	snapshot := &domain.InsightSnapshot{}
	var metricsJSON []byte
	var dayStr string

	err := rows.Scan(
		&snapshot.ID,
		&snapshot.AccountID,
		&dayStr,
		&metricsJSON,
		&snapshot.CreatedAt,
		&snapshot.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := r.fillSnapshot(snapshot, dayStr, metricsJSON); err != nil {
		return nil, err
	}

	return snapshot, nil
}

func (r *insightSnapshotRepository) fillSnapshot(snapshot *domain.InsightSnapshot, dayStr string, metricsJSON []byte) error {
	// O driver devolve colunas date como string no formato ISO
	day, err := time.Parse("2006-01-02", dayStr[:10])
	if err != nil {
		return fmt.Errorf("erro ao converter data: %w", err)
	}
	snapshot.ReferenceDay = day

	if metricsJSON != nil {
		metrics := &domain.CampaignInsight{}
		if err := json.Unmarshal(metricsJSON, metrics); err != nil {
			return fmt.Errorf("erro ao deserializar JSON de métricas: %w", err)
		}
		snapshot.Metrics = metrics
	}

	return nil
}
