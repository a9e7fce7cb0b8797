package data

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUnits(n int, day string) []*TextUnit {
	ts, _ := time.Parse("2006-01-02", day)
	list := make([]*TextUnit, 0, n)
	for i := 0; i < n; i++ {
		list = append(list, &TextUnit{
			ID:        fmt.Sprintf("%s-unit-%d", day, i),
			Platform:  "hn",
			Author:    "tester",
			CreatedAt: ts.Add(time.Duration(i) * time.Minute),
			Content:   fmt.Sprintf("post number %d, nothing matters anymore", i),
		})
	}
	return list
}

func TestSaveTextUnits(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	units := testUnits(5, "2024-03-01")
	n, err := SaveTextUnits(ctx, db, units)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	// saving again is a no-op
	n, err = SaveTextUnits(ctx, db, units)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	got, err := GetTextUnit(ctx, db, units[0].ID)
	require.NoError(t, err)
	assert.Equal(t, units[0].Content, got.Content)
	assert.Equal(t, units[0].CreatedAt.UTC(), got.CreatedAt)
}

func TestSaveTextUnits_RequiresID(t *testing.T) {
	db := setupTestDB(t)
	_, err := SaveTextUnits(context.Background(), db, []*TextUnit{{Platform: "hn"}})
	assert.Error(t, err)
}

func TestSaveTextUnits_NilDB(t *testing.T) {
	_, err := SaveTextUnits(context.Background(), nil, testUnits(1, "2024-03-01"))
	assert.ErrorIs(t, err, errDBNotInitialized)
}

func TestGetUnclassifiedUnits(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	_, err := SaveTextUnits(ctx, db, testUnits(3, "2024-03-01"))
	require.NoError(t, err)
	_, err = SaveTextUnits(ctx, db, testUnits(2, "2024-03-05"))
	require.NoError(t, err)

	// everything is unclassified to start
	list, err := GetUnclassifiedUnits(ctx, db, "2024-03-01", "2024-03-31", 0)
	require.NoError(t, err)
	assert.Len(t, list, 5)

	// window bounds are inclusive
	list, err = GetUnclassifiedUnits(ctx, db, "2024-03-05", "2024-03-05", 0)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	// classified units fall out of the result
	id, err := GetOrCreateClassification(ctx, db, testVector(0.1))
	require.NoError(t, err)
	require.NoError(t, LinkUnit(ctx, db, "2024-03-01-unit-0", id))

	list, err = GetUnclassifiedUnits(ctx, db, "2024-03-01", "2024-03-31", 0)
	require.NoError(t, err)
	assert.Len(t, list, 4)

	// limit pages the result
	list, err = GetUnclassifiedUnits(ctx, db, "2024-03-01", "2024-03-31", 2)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestCountUnits(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	c, err := CountUnits(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, int64(0), c.Units)

	_, err = SaveTextUnits(ctx, db, testUnits(4, "2024-03-01"))
	require.NoError(t, err)

	id, err := GetOrCreateClassification(ctx, db, testVector(0.2))
	require.NoError(t, err)
	require.NoError(t, LinkUnit(ctx, db, "2024-03-01-unit-0", id))

	c, err = CountUnits(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, int64(4), c.Units)
	assert.Equal(t, int64(1), c.Classified)
	assert.Equal(t, int64(1), c.Classifications)
}
