package sqlite

import (
	"database/sql"
	"fmt"

	"recyclegame/internal/models"
)

const resultColumns = `id, session_id, mode, difficulty, object, outcome, tier, verdict,
	elapsed_seconds, limit_seconds, score, target, message, ended_at`

const insertResult = `
	INSERT INTO results (session_id, mode, difficulty, object, outcome, tier, verdict,
		elapsed_seconds, limit_seconds, score, target, message, ended_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(session_id) DO NOTHING
`

// ResultRepository implements repository.ResultRepository for SQLite.
type ResultRepository struct {
	db *DB
}

// NewResultRepository creates a new SQLite result repository.
func NewResultRepository(db *DB) *ResultRepository {
	return &ResultRepository{db: db}
}

func resultArgs(res *models.GameResult) []interface{} {
	return []interface{}{
		res.SessionID, res.Mode, res.Difficulty, res.Object, res.Outcome, res.Tier, res.Verdict,
		res.ElapsedSeconds, res.LimitSeconds, res.Score, res.Target, res.Message, res.EndedAt,
	}
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanResult(row scanner) (models.GameResult, error) {
	var res models.GameResult
	err := row.Scan(&res.ID, &res.SessionID, &res.Mode, &res.Difficulty, &res.Object, &res.Outcome,
		&res.Tier, &res.Verdict, &res.ElapsedSeconds, &res.LimitSeconds, &res.Score, &res.Target,
		&res.Message, &res.EndedAt)
	return res, err
}

// Insert adds a new result. A result whose session is already stored is ignored.
func (r *ResultRepository) Insert(res *models.GameResult) (int64, error) {
	r.db.Lock()
	defer r.db.Unlock()

	result, err := r.db.Conn().Exec(insertResult, resultArgs(res)...)
	if err != nil {
		return 0, fmt.Errorf("failed to insert result: %w", err)
	}

	return result.LastInsertId()
}

// InsertBatch adds multiple results in a single transaction.
func (r *ResultRepository) InsertBatch(results []models.GameResult) error {
	r.db.Lock()
	defer r.db.Unlock()

	tx, err := r.db.Conn().Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(insertResult)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for i := range results {
		if _, err := stmt.Exec(resultArgs(&results[i])...); err != nil {
			return fmt.Errorf("failed to insert result: %w", err)
		}
	}

	return tx.Commit()
}

// GetBySessionID retrieves a result by its session id, or nil if absent.
func (r *ResultRepository) GetBySessionID(sessionID string) (*models.GameResult, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	res, err := scanResult(r.db.Conn().QueryRow(
		`SELECT `+resultColumns+` FROM results WHERE session_id = ?`, sessionID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get result: %w", err)
	}
	return &res, nil
}

func whereClause(filter *models.ResultFilter) (string, []interface{}) {
	query := " WHERE 1=1"
	args := []interface{}{}
	if filter == nil {
		return query, args
	}

	if filter.Mode != "" {
		query += " AND mode = ?"
		args = append(args, filter.Mode)
	}

	if filter.Difficulty != "" {
		query += " AND difficulty = ?"
		args = append(args, filter.Difficulty)
	}

	if filter.Outcome != "" {
		query += " AND outcome = ?"
		args = append(args, filter.Outcome)
	}

	return query, args
}

// GetAll retrieves results based on filter criteria, newest first.
func (r *ResultRepository) GetAll(filter *models.ResultFilter) ([]models.GameResult, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	where, args := whereClause(filter)
	query := `SELECT ` + resultColumns + ` FROM results` + where + ` ORDER BY ended_at DESC, id DESC`

	if filter != nil && filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)

		if filter.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filter.Offset)
		}
	}

	rows, err := r.db.Conn().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer rows.Close()

	results := []models.GameResult{}
	for rows.Next() {
		res, err := scanResult(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		results = append(results, res)
	}

	return results, rows.Err()
}

// GetTotalCount returns the number of results matching the filter.
func (r *ResultRepository) GetTotalCount(filter *models.ResultFilter) (int, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	where, args := whereClause(filter)
	var count int
	if err := r.db.Conn().QueryRow(`SELECT COUNT(*) FROM results`+where, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count results: %w", err)
	}
	return count, nil
}

// GetStats summarizes all stored results.
func (r *ResultRepository) GetStats() (*models.ResultStats, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	stats := &models.ResultStats{
		PerMode:    make(map[string]int),
		PerOutcome: make(map[string]int),
	}

	if err := r.db.Conn().QueryRow(`SELECT COUNT(*), COALESCE(MAX(score), 0) FROM results`).
		Scan(&stats.TotalGames, &stats.BestScore); err != nil {
		return nil, fmt.Errorf("failed to get totals: %w", err)
	}

	if err := r.countBy("mode", stats.PerMode); err != nil {
		return nil, err
	}
	if err := r.countBy("outcome", stats.PerOutcome); err != nil {
		return nil, err
	}
	return stats, nil
}

// countBy groups results by a trusted column name.
func (r *ResultRepository) countBy(column string, into map[string]int) error {
	rows, err := r.db.Conn().Query(`SELECT ` + column + `, COUNT(*) FROM results GROUP BY ` + column)
	if err != nil {
		return fmt.Errorf("failed to group results by %s: %w", column, err)
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return fmt.Errorf("failed to scan %s count: %w", column, err)
		}
		into[key] = count
	}
	return rows.Err()
}

// DeleteAll removes every stored result.
func (r *ResultRepository) DeleteAll() error {
	r.db.Lock()
	defer r.db.Unlock()

	if _, err := r.db.Conn().Exec(`DELETE FROM results`); err != nil {
		return fmt.Errorf("failed to delete results: %w", err)
	}
	return nil
}
