package data

import (
	"context"
	"fmt"

	"github.com/mchmarny/lingopulse/pkg/dimension"
	"github.com/pkg/errors"
)

const (
	selectDailyAggregateSQL = `SELECT substr(u.created_at, 1, 10) AS day, AVG(c.%s), COUNT(*)
		FROM unit_classification uc
		JOIN text_unit u ON u.id = uc.unit_id
		JOIN classification c ON c.id = uc.classification_id
		WHERE substr(u.created_at, 1, 10) >= ?
		AND substr(u.created_at, 1, 10) <= ?
		GROUP BY day
		ORDER BY day`

	selectDimensionScoresSQL = `SELECT c.%s
		FROM unit_classification uc
		JOIN text_unit u ON u.id = uc.unit_id
		JOIN classification c ON c.id = uc.classification_id
		WHERE substr(u.created_at, 1, 10) >= ?
		AND substr(u.created_at, 1, 10) <= ?
		ORDER BY u.created_at, u.id`

	upsertAggregateSQL = `INSERT INTO period_aggregate (day, dimension, mean_score, sample_count)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (day, dimension) DO UPDATE
		SET mean_score = excluded.mean_score, sample_count = excluded.sample_count`

	selectCachedAggregateSQL = `SELECT day, mean_score, sample_count
		FROM period_aggregate
		WHERE dimension = ? AND day >= ? AND day <= ?
		ORDER BY day`
)

// PeriodAggregate is one day's mean score and sample count for a dimension.
type PeriodAggregate struct {
	Day       string              `json:"day"`
	Dimension dimension.Dimension `json:"dimension"`
	Mean      float64             `json:"mean_score"`
	Count     int64               `json:"sample_count"`
}

// dimensionColumn maps a dimension to its score column. Dimensions double as
// column names, the IsValid check is what keeps query assembly safe.
func dimensionColumn(d dimension.Dimension) (string, error) {
	if !d.IsValid() {
		return "", errors.Errorf("unknown dimension: %s", d)
	}
	return string(d), nil
}

// QueryDailyAggregates computes per-day mean and count for one dimension over
// [since,until] (inclusive, yyyy-mm-dd) directly from classified units.
func QueryDailyAggregates(ctx context.Context, db *DB, d dimension.Dimension, since, until string) ([]*PeriodAggregate, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}
	col, err := dimensionColumn(d)
	if err != nil {
		return nil, err
	}

	q := fmt.Sprintf(selectDailyAggregateSQL, col)
	rows, err := db.QueryContext(ctx, db.rebind(q), since, until)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to query daily aggregates for %s", d)
	}
	defer rows.Close()

	var list []*PeriodAggregate
	for rows.Next() {
		a := &PeriodAggregate{Dimension: d}
		if err := rows.Scan(&a.Day, &a.Mean, &a.Count); err != nil {
			return nil, errors.Wrap(err, "failed to scan aggregate row")
		}
		list = append(list, a)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read aggregate rows")
	}

	return list, nil
}

// GetDimensionScores returns the per-unit scores for one dimension over
// [since,until], in unit time order. This is the raw material for baseline
// and validation statistics.
func GetDimensionScores(ctx context.Context, db *DB, d dimension.Dimension, since, until string) ([]float64, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}
	col, err := dimensionColumn(d)
	if err != nil {
		return nil, err
	}

	q := fmt.Sprintf(selectDimensionScoresSQL, col)
	rows, err := db.QueryContext(ctx, db.rebind(q), since, until)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to query scores for %s", d)
	}
	defer rows.Close()

	var scores []float64
	for rows.Next() {
		var s float64
		if err := rows.Scan(&s); err != nil {
			return nil, errors.Wrap(err, "failed to scan score row")
		}
		scores = append(scores, s)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read score rows")
	}

	return scores, nil
}

// CachePeriodAggregates recomputes the daily aggregates for one dimension and
// upserts them into the period_aggregate cache. Returns the number of days
// cached.
func CachePeriodAggregates(ctx context.Context, db *DB, d dimension.Dimension, since, until string) (int, error) {
	aggs, err := QueryDailyAggregates(ctx, db, d, since, until)
	if err != nil {
		return 0, err
	}
	if len(aggs) == 0 {
		return 0, nil
	}

	stmt, err := db.Prepare(db.rebind(upsertAggregateSQL))
	if err != nil {
		return 0, errors.Wrap(err, "failed to prepare aggregate upsert statement")
	}
	defer stmt.Close()

	tx, err := db.Begin()
	if err != nil {
		return 0, errors.Wrap(err, "failed to begin transaction")
	}

	for _, a := range aggs {
		if _, err := tx.StmtContext(ctx, stmt).ExecContext(ctx, a.Day, string(d), a.Mean, a.Count); err != nil {
			if err := tx.Rollback(); err != nil {
				return 0, errors.Wrap(err, "failed to rollback transaction")
			}
			return 0, errors.Wrapf(err, "failed to cache aggregate for %s on %s", d, a.Day)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, errors.Wrap(err, "failed to commit transaction")
	}

	return len(aggs), nil
}

// GetCachedAggregates reads previously cached daily aggregates for one
// dimension over [since,until].
func GetCachedAggregates(ctx context.Context, db *DB, d dimension.Dimension, since, until string) ([]*PeriodAggregate, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}
	if !d.IsValid() {
		return nil, errors.Errorf("unknown dimension: %s", d)
	}

	rows, err := db.QueryContext(ctx, db.rebind(selectCachedAggregateSQL), string(d), since, until)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to query cached aggregates for %s", d)
	}
	defer rows.Close()

	var list []*PeriodAggregate
	for rows.Next() {
		a := &PeriodAggregate{Dimension: d}
		if err := rows.Scan(&a.Day, &a.Mean, &a.Count); err != nil {
			return nil, errors.Wrap(err, "failed to scan cached aggregate row")
		}
		list = append(list, a)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read cached aggregate rows")
	}

	return list, nil
}
