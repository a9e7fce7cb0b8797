package data

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/mchmarny/lingopulse/pkg/dimension"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testVector builds a valid vector whose identity is driven by seed.
func testVector(seed float64) *dimension.Vector {
	return &dimension.Vector{
		Certainty:         seed,
		PronounFirst:      0.5,
		PronounCollective: 0.5,
		TemporalProximity: 0.5,
	}
}

func TestGetOrCreateClassification_Dedup(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	id1, err := GetOrCreateClassification(ctx, db, testVector(0.25))
	require.NoError(t, err)
	assert.Greater(t, id1, int64(0))

	// identical vector resolves to the same row
	id2, err := GetOrCreateClassification(ctx, db, testVector(0.25))
	require.NoError(t, err)
	assert.Equal(t, id1, id2)

	// different vector gets its own row
	id3, err := GetOrCreateClassification(ctx, db, testVector(0.26))
	require.NoError(t, err)
	assert.NotEqual(t, id1, id3)
}

func TestGetOrCreateClassification_RoundsBeforeCompare(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	// both round to 0.333 and must share one row
	a := testVector(0.33333333)
	b := testVector(0.3334)

	id1, err := GetOrCreateClassification(ctx, db, a)
	require.NoError(t, err)
	id2, err := GetOrCreateClassification(ctx, db, b)
	require.NoError(t, err)
	assert.Equal(t, id1, id2)
}

func TestGetOrCreateClassification_RejectsInvalid(t *testing.T) {
	db := setupTestDB(t)
	v := testVector(0.1)
	v.TimeCompression = 1.5
	_, err := GetOrCreateClassification(context.Background(), db, v)
	assert.Error(t, err)
}

func TestGetOrCreateClassification_NilArgs(t *testing.T) {
	_, err := GetOrCreateClassification(context.Background(), nil, testVector(0.1))
	assert.ErrorIs(t, err, errDBNotInitialized)

	db := setupTestDB(t)
	_, err = GetOrCreateClassification(context.Background(), db, nil)
	assert.Error(t, err)
}

func TestLinkUnit_Idempotent(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	_, err := SaveTextUnits(ctx, db, []*TextUnit{{
		ID: "u1", Platform: "hn", CreatedAt: time.Now().UTC(), Content: "hello",
	}})
	require.NoError(t, err)

	id, err := GetOrCreateClassification(ctx, db, testVector(0.4))
	require.NoError(t, err)

	require.NoError(t, LinkUnit(ctx, db, "u1", id))
	require.NoError(t, LinkUnit(ctx, db, "u1", id))

	gotID, vec, err := GetUnitVector(ctx, db, "u1")
	require.NoError(t, err)
	assert.Equal(t, id, gotID)
	assert.Equal(t, 0.4, vec.Certainty)
	assert.Equal(t, 0.5, vec.PronounFirst)
}

func TestGetUnitVector_Unclassified(t *testing.T) {
	db := setupTestDB(t)
	_, _, err := GetUnitVector(context.Background(), db, "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestInsertWordTokens(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	_, err := SaveTextUnits(ctx, db, []*TextUnit{{
		ID: "u1", Platform: "hn", CreatedAt: time.Now().UTC(), Content: "Markets are crashing",
	}})
	require.NoError(t, err)

	id, err := GetOrCreateClassification(ctx, db, testVector(0.4))
	require.NoError(t, err)

	words := dimension.Tokenize("Markets are crashing")
	n, err := InsertWordTokens(ctx, db, "u1", id, words)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	// replays are no-ops
	n, err = InsertWordTokens(ctx, db, "u1", id, words)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	var stem string
	err = db.QueryRow("SELECT stem FROM word_token WHERE unit_id = 'u1' AND position = 2").Scan(&stem)
	require.NoError(t, err)
	assert.Equal(t, "crash", stem)
}

func TestInsertWordTokens_Empty(t *testing.T) {
	db := setupTestDB(t)
	n, err := InsertWordTokens(context.Background(), db, "u1", 1, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}
