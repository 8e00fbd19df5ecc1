// Copyright (c) 2025 Revq
// Licensed under the MIT License. See LICENSE file in the project root for details.

package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCSVs = map[string]string{
	"dim_writer.csv": `writer_id,writer_name
1,Alex Park
2,Jane Miller
`,
	// song 1 carries a historical title row; only the 2023-06-01 record
	// is current.
	"dim_song.csv": `song_id,title,writer_id,etl_date
1,Starlight (Draft),1,2023-01-15
1,Starlight,1,2023-06-01
2,Midnight Drive,1,2023-01-15
3,Glass Houses,2,2023-01-15
`,
	"fact_royalties.csv": `transaction_id,song_id,amount_usd
T0001,1,1000.00
T0002,1,663.25
T0003,2,1800.00
T0004,3,599.50
`,
}

func newTestStore(t *testing.T) *Store {
	t.Helper()

	dir := t.TempDir()
	for name, content := range testCSVs {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}

	s, err := Open()
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	require.NoError(t, s.Init(context.Background(), dir))
	return s
}

func TestInitLoadsAllTables(t *testing.T) {
	s := newTestStore(t)

	for table, want := range map[string]int64{
		"dim_writer":     2,
		"dim_song":       4,
		"fact_royalties": 4,
	} {
		res, err := s.Query(context.Background(), "SELECT COUNT(*) FROM "+table)
		require.NoError(t, err)
		require.Len(t, res.Rows, 1)
		assert.Equal(t, want, res.Rows[0][0], table)
	}
}

func TestCurrentSongsViewDeduplicates(t *testing.T) {
	s := newTestStore(t)

	res, err := s.Query(context.Background(),
		"SELECT title FROM current_songs WHERE song_id = 1")
	require.NoError(t, err)
	require.Len(t, res.Rows, 1, "one row per song_id despite history")
	assert.Equal(t, "Starlight", res.Rows[0][0], "latest etl_date wins")

	res, err = s.Query(context.Background(), "SELECT COUNT(*) FROM current_songs")
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.Rows[0][0])
}

func TestQueryJoinAggregation(t *testing.T) {
	s := newTestStore(t)

	// Joining through current_songs must not double-count song 1's
	// transactions against its historical title row.
	res, err := s.Query(context.Background(), `
		SELECT ROUND(SUM(fr.amount_usd), 2) AS total
		FROM fact_royalties fr
		JOIN current_songs cs ON fr.song_id = cs.song_id
		JOIN dim_writer dw ON cs.writer_id = dw.writer_id
		WHERE dw.writer_name = 'Alex Park'`)
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, []string{"total"}, res.Columns)
	assert.Equal(t, 3463.25, res.Rows[0][0])
}

func TestQueryTextColumnsScanAsString(t *testing.T) {
	s := newTestStore(t)

	res, err := s.Query(context.Background(),
		"SELECT writer_name FROM dim_writer ORDER BY writer_id")
	require.NoError(t, err)
	require.Len(t, res.Rows, 2)
	assert.Equal(t, "Alex Park", res.Rows[0][0])
	assert.Equal(t, "Jane Miller", res.Rows[1][0])
}

func TestQueryUnknownColumn(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Query(context.Background(), "SELECT no_such_column FROM dim_writer")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no_such_column")
}

func TestQueryEmptyResult(t *testing.T) {
	s := newTestStore(t)

	res, err := s.Query(context.Background(),
		"SELECT * FROM dim_writer WHERE writer_name = 'Nobody'")
	require.NoError(t, err)
	assert.True(t, res.Empty())
	assert.NotNil(t, res.Rows, "empty means zero rows, not a nil slice")
}

func TestQueryTimeout(t *testing.T) {
	s := newTestStore(t)
	s.Timeout = time.Nanosecond

	_, err := s.Query(context.Background(), "SELECT COUNT(*) FROM fact_royalties")
	require.Error(t, err)
}

func TestInitMissingFile(t *testing.T) {
	s, err := Open()
	require.NoError(t, err)
	defer s.Close()

	err = s.Init(context.Background(), t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dim_writer")
}

func TestLoadCSVTrimsBOM(t *testing.T) {
	dir := t.TempDir()
	for name, content := range testCSVs {
		if name == "dim_writer.csv" {
			content = "\ufeff" + content
		}
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}

	s, err := Open()
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Init(context.Background(), dir))

	res, err := s.Query(context.Background(),
		"SELECT writer_id FROM dim_writer WHERE writer_name = 'Alex Park'")
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
}

func TestResultMapsAndJSON(t *testing.T) {
	res := &Result{
		Columns: []string{"writer_name", "total"},
		Rows: [][]any{
			{"Alex Park", 3463.25},
		},
	}

	maps := res.Maps()
	require.Len(t, maps, 1)
	assert.Equal(t, "Alex Park", maps[0]["writer_name"])
	assert.Equal(t, 3463.25, maps[0]["total"])

	out := res.JSON()
	assert.Contains(t, out, `"writer_name": "Alex Park"`)
	assert.Contains(t, out, "3463.25")
}
