package data

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/kljensen/snowball/english"
	"github.com/mchmarny/lingopulse/pkg/dimension"
	"github.com/pkg/errors"
)

const (
	classificationCols = `certainty_collapse, pronoun_first, pronoun_third, pronoun_collective,
		emotional_valence, temporal_bleed, time_compression, sacred_profane,
		temporal_proximity, agency_reversal, metaphor_density`

	insertClassificationSQL = `INSERT INTO classification (` + classificationCols + `, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING`

	selectClassificationIDSQL = `SELECT id FROM classification
		WHERE certainty_collapse = ? AND pronoun_first = ? AND pronoun_third = ?
		AND pronoun_collective = ? AND emotional_valence = ? AND temporal_bleed = ?
		AND time_compression = ? AND sacred_profane = ? AND temporal_proximity = ?
		AND agency_reversal = ? AND metaphor_density = ?`

	selectUnitVectorSQL = `SELECT c.id, ` + classificationCols + `
		FROM unit_classification uc
		JOIN classification c ON c.id = uc.classification_id
		WHERE uc.unit_id = ?`

	insertLinkSQL = `INSERT INTO unit_classification (unit_id, classification_id, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT (unit_id) DO NOTHING`

	insertWordTokenSQL = `INSERT INTO word_token (unit_id, position, word, word_lower, stem, classification_id)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (unit_id, position) DO NOTHING`
)

// GetOrCreateClassification resolves the rounded vector to its single stored
// row, inserting one only when no identical vector exists yet. Concurrent
// callers racing on the same vector converge on one row via the unique score
// index.
func GetOrCreateClassification(ctx context.Context, db *DB, v *dimension.Vector) (int64, error) {
	if db == nil {
		return 0, errDBNotInitialized
	}
	if v == nil {
		return 0, errors.New("vector is required")
	}

	r := v.Round()
	if err := r.Validate(); err != nil {
		return 0, errors.Wrap(err, "refusing to store invalid vector")
	}

	vals := make([]any, 0, 12)
	for _, f := range r.Values() {
		vals = append(vals, f)
	}

	id, err := selectClassificationID(ctx, db, vals)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, errors.Wrap(err, "failed to look up classification")
	}

	insertArgs := append(append([]any{}, vals...), time.Now().UTC().Format(time.RFC3339))
	if err := withRetry(ctx, "classification insert", func() error {
		_, err := db.ExecContext(ctx, db.rebind(insertClassificationSQL), insertArgs...)
		return err
	}); err != nil {
		return 0, errors.Wrap(err, "failed to insert classification")
	}

	// the insert is a no-op when another writer got there first,
	// either way the row exists now
	id, err = selectClassificationID(ctx, db, vals)
	if err != nil {
		return 0, errors.Wrap(err, "classification missing after insert")
	}
	return id, nil
}

func selectClassificationID(ctx context.Context, db *DB, vals []any) (int64, error) {
	var id int64
	err := db.QueryRowContext(ctx, db.rebind(selectClassificationIDSQL), vals...).Scan(&id)
	return id, err
}

// GetUnitVector returns the classification id and vector linked to a unit,
// or sql.ErrNoRows when the unit is unclassified.
func GetUnitVector(ctx context.Context, db *DB, unitID string) (int64, *dimension.Vector, error) {
	if db == nil {
		return 0, nil, errDBNotInitialized
	}

	var id int64
	var v dimension.Vector
	err := db.QueryRowContext(ctx, db.rebind(selectUnitVectorSQL), unitID).Scan(
		&id,
		&v.Certainty, &v.PronounFirst, &v.PronounThird, &v.PronounCollective,
		&v.Valence, &v.TemporalBleed, &v.TimeCompression, &v.SacredProfane,
		&v.TemporalProximity, &v.AgencyReversal, &v.MetaphorDensity)
	if err != nil {
		return 0, nil, err
	}
	return id, &v, nil
}

// LinkUnit associates a unit with its classification. Linking the same unit
// twice is a no-op, so replays are safe.
func LinkUnit(ctx context.Context, db *DB, unitID string, classificationID int64) error {
	if db == nil {
		return errDBNotInitialized
	}
	if unitID == "" {
		return errors.New("unit id is required")
	}

	return withRetry(ctx, "unit link", func() error {
		_, err := db.ExecContext(ctx, db.rebind(insertLinkSQL),
			unitID, classificationID, time.Now().UTC().Format(time.RFC3339))
		return errors.Wrapf(err, "failed to link unit %s to classification %d", unitID, classificationID)
	})
}

// InsertWordTokens explodes the unit's words into per-position rows carrying
// the original word, its lowercase form, its stem, and the unit's
// classification. Re-inserting an already tokenized unit is a no-op.
func InsertWordTokens(ctx context.Context, db *DB, unitID string, classificationID int64, words []string) (int, error) {
	if db == nil {
		return 0, errDBNotInitialized
	}
	if len(words) == 0 {
		return 0, nil
	}

	stmt, err := db.Prepare(db.rebind(insertWordTokenSQL))
	if err != nil {
		return 0, errors.Wrap(err, "failed to prepare word token statement")
	}
	defer stmt.Close()

	tx, err := db.Begin()
	if err != nil {
		return 0, errors.Wrap(err, "failed to begin transaction")
	}

	inserted := 0
	for i, w := range words {
		lower := strings.ToLower(w)
		res, err := tx.StmtContext(ctx, stmt).ExecContext(ctx,
			unitID, i, w, lower, english.Stem(lower, false), classificationID)
		if err != nil {
			if err := tx.Rollback(); err != nil {
				return 0, errors.Wrap(err, "failed to rollback transaction")
			}
			return 0, errors.Wrapf(err, "failed to insert word token %d for unit %s", i, unitID)
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
