package data

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mchmarny/lingopulse/pkg/dimension"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const errorThresholdDefault = 10

// ClassifyOptions control one classification run.
type ClassifyOptions struct {
	// Since and Until bound the run to units created in [Since,Until],
	// inclusive, yyyy-mm-dd.
	Since string `json:"since"`
	Until string `json:"until"`

	// WithModels enables the model-backed dimensions; off, they stay at
	// their neutral defaults.
	WithModels bool `json:"with_models"`

	// BatchSize is how many unclassified units are pulled per page.
	BatchSize int `json:"batch_size"`

	// ErrorThreshold aborts the run once more than this many units fail.
	ErrorThreshold int `json:"error_threshold"`

	// Limit caps how many units this run classifies, 0 means all.
	Limit int `json:"limit"`
}

// ClassifyResult reports one classification run.
type ClassifyResult struct {
	RunID          string      `json:"run_id"`
	Since          string      `json:"since"`
	Until          string      `json:"until"`
	Processed      int         `json:"processed"`
	Errored        int         `json:"errored"`
	ModelFallbacks int         `json:"model_fallbacks"`
	Words          int         `json:"words"`
	Duration       string      `json:"duration"`
	Counts         *UnitCounts `json:"counts,omitempty"`
}

// ClassifyUnits scores every not-yet-classified unit in the window and stores
// the result: one deduplicated classification row per distinct vector, a link
// per unit, and the unit's word tokens. Already classified units are never
// refetched, so an interrupted run resumes where it stopped. A unit that
// fails to persist is skipped and counted; the run aborts once the error
// threshold is exceeded.
func ClassifyUnits(ctx context.Context, db *DB, v *dimension.Vectorizer, opts ClassifyOptions) (*ClassifyResult, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}
	if v == nil {
		return nil, errors.New("vectorizer is required")
	}
	if opts.Since == "" || opts.Until == "" {
		return nil, errors.New("since and until are required")
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = unitBatchSizeDefault
	}
	if opts.ErrorThreshold <= 0 {
		opts.ErrorThreshold = errorThresholdDefault
	}

	res := &ClassifyResult{
		RunID: uuid.NewString(),
		Since: opts.Since,
		Until: opts.Until,
	}
	start := time.Now()
	failed := make(map[string]bool)

	log.Debugf("classification run %s starting: %s to %s", res.RunID, opts.Since, opts.Until)

	done := false
	for !done {
		// failed units stay unclassified and would be refetched, widen
		// the page so fresh units still come through
		units, err := GetUnclassifiedUnits(ctx, db, opts.Since, opts.Until, opts.BatchSize+len(failed))
		if err != nil {
			return res, err
		}

		progress := false
		for _, u := range units {
			if failed[u.ID] {
				continue
			}
			if opts.Limit > 0 && res.Processed >= opts.Limit {
				done = true
				break
			}
			if err := ctx.Err(); err != nil {
				res.Duration = time.Since(start).String()
				return res, errors.Wrapf(err, "classification run %s canceled", res.RunID)
			}

			if err := classifyOne(ctx, db, v, u, opts.WithModels, res); err != nil {
				res.Errored++
				failed[u.ID] = true
				log.Warnf("failed to classify unit %s: %v", u.ID, err)
				if res.Errored > opts.ErrorThreshold {
					res.Duration = time.Since(start).String()
					return res, errors.Errorf("classification run %s aborted: %d errors exceeded threshold %d",
						res.RunID, res.Errored, opts.ErrorThreshold)
				}
				continue
			}
			res.Processed++
			progress = true
		}

		if done || !progress || len(units) < opts.BatchSize {
			break
		}
		log.Debugf("run %s progress: %d processed, %d errored", res.RunID, res.Processed, res.Errored)
	}

	res.Duration = time.Since(start).String()

	counts, err := CountUnits(ctx, db)
	if err != nil {
		return res, err
	}
	res.Counts = counts

	log.Debugf("classification run %s done: %d processed, %d errored in %s",
		res.RunID, res.Processed, res.Errored, res.Duration)

	return res, nil
}

func classifyOne(ctx context.Context, db *DB, v *dimension.Vectorizer, u *TextUnit, withModels bool, res *ClassifyResult) error {
	a := v.Vectorize(ctx, u.Content, withModels)
	res.ModelFallbacks += len(a.Failures)

	classID, err := GetOrCreateClassification(ctx, db, a.Vector)
	if err != nil {
		return err
	}
	if err := LinkUnit(ctx, db, u.ID, classID); err != nil {
		return err
	}
	n, err := InsertWordTokens(ctx, db, u.ID, classID, dimension.Tokenize(u.Content))
	if err != nil {
		return err
	}
	res.Words += n
	return nil
}
