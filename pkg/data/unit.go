package data

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

const (
	unitBatchSizeDefault = 500

	insertUnitSQL = `INSERT INTO text_unit (id, platform, parent_id, author, created_at, content)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING`

	selectUnitSQL = `SELECT id, platform, parent_id, author, created_at, content
		FROM text_unit WHERE id = ?`

	selectUnclassifiedSQL = `SELECT u.id, u.platform, u.parent_id, u.author, u.created_at, u.content
		FROM text_unit u
		LEFT JOIN unit_classification uc ON uc.unit_id = u.id
		WHERE uc.unit_id IS NULL
		AND substr(u.created_at, 1, 10) >= ?
		AND substr(u.created_at, 1, 10) <= ?
		ORDER BY u.created_at, u.id
		LIMIT ?`

	countUnitsSQL = `SELECT
		(SELECT COUNT(*) FROM text_unit),
		(SELECT COUNT(*) FROM unit_classification),
		(SELECT COUNT(*) FROM classification)`
)

// TextUnit is one collected piece of text: a post, comment, or title.
type TextUnit struct {
	ID        string    `json:"id"`
	Platform  string    `json:"platform"`
	ParentID  string    `json:"parent_id,omitempty"`
	Author    string    `json:"author,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	Content   string    `json:"content"`
}

// UnitCounts summarizes store contents.
type UnitCounts struct {
	Units           int64 `json:"units"`
	Classified      int64 `json:"classified"`
	Classifications int64 `json:"classifications"`
}

// SaveTextUnits inserts units, ignoring ones already stored. Returns the
// number of newly inserted rows.
func SaveTextUnits(ctx context.Context, db *DB, units []*TextUnit) (int, error) {
	if db == nil {
		return 0, errDBNotInitialized
	}
	if len(units) == 0 {
		return 0, nil
	}

	stmt, err := db.Prepare(db.rebind(insertUnitSQL))
	if err != nil {
		return 0, errors.Wrap(err, "failed to prepare unit insert statement")
	}
	defer stmt.Close()

	tx, err := db.Begin()
	if err != nil {
		return 0, errors.Wrap(err, "failed to begin transaction")
	}

	inserted := 0
	for _, u := range units {
		if u.ID == "" || u.Platform == "" {
			if err := tx.Rollback(); err != nil {
				return 0, errors.Wrap(err, "failed to rollback transaction")
			}
			return 0, errors.New("text unit requires id and platform")
		}
		res, err := tx.StmtContext(ctx, stmt).ExecContext(ctx,
			u.ID, u.Platform, u.ParentID, u.Author, u.CreatedAt.UTC().Format(time.RFC3339), u.Content)
		if err != nil {
			if err := tx.Rollback(); err != nil {
				return 0, errors.Wrap(err, "failed to rollback transaction")
			}
			return 0, errors.Wrapf(err, "failed to insert text unit: %s", u.ID)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, errors.Wrap(err, "failed to commit transaction")
	}

	return inserted, nil
}

// GetTextUnit returns the unit with the given id.
func GetTextUnit(ctx context.Context, db *DB, id string) (*TextUnit, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}
	if id == "" {
		return nil, errors.New("unit id is required")
	}

	row := db.QueryRowContext(ctx, db.rebind(selectUnitSQL), id)
	u, err := scanUnit(row)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get text unit: %s", id)
	}
	return u, nil
}

// GetUnclassifiedUnits returns up to limit units in [since,until] (inclusive,
// yyyy-mm-dd) that have no classification yet. Skipping classified units is
// what makes classification runs resumable.
func GetUnclassifiedUnits(ctx context.Context, db *DB, since, until string, limit int) ([]*TextUnit, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}
	if limit <= 0 {
		limit = unitBatchSizeDefault
	}

	rows, err := db.QueryContext(ctx, db.rebind(selectUnclassifiedSQL), since, until, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query unclassified units")
	}
	defer rows.Close()

	var list []*TextUnit
	for rows.Next() {
		u, err := scanUnit(rows)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan text unit row")
		}
		list = append(list, u)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read unclassified unit rows")
	}

	return list, nil
}

// CountUnits returns store content counts.
func CountUnits(ctx context.Context, db *DB) (*UnitCounts, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}
	var c UnitCounts
	if err := db.QueryRowContext(ctx, countUnitsSQL).
		Scan(&c.Units, &c.Classified, &c.Classifications); err != nil {
		return nil, errors.Wrap(err, "failed to count units")
	}
	return &c, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUnit(row rowScanner) (*TextUnit, error) {
	var u TextUnit
	var created string
	if err := row.Scan(&u.ID, &u.Platform, &u.ParentID, &u.Author, &created, &u.Content); err != nil {
		return nil, err
	}
	ts, err := time.Parse(time.RFC3339, created)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid created_at on unit %s: %s", u.ID, created)
	}
	u.CreatedAt = ts
	return &u, nil
}
