// Copyright (c) 2025 Revq
// Licensed under the MIT License. See LICENSE file in the project root for details.

package safety

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateAdmits(t *testing.T) {
	tests := []struct {
		name string
		sql  string
	}{
		{
			name: "plain select",
			sql:  "SELECT * FROM dim_writer",
		},
		{
			name: "select with joins and leading whitespace",
			sql: `
				SELECT dw.writer_name, ROUND(SUM(fr.amount_usd), 2)
				FROM fact_royalties fr
				JOIN current_songs cs ON fr.song_id = cs.song_id
				JOIN dim_writer dw ON cs.writer_id = dw.writer_id
				WHERE dw.writer_name = 'Alex Park'
			`,
		},
		{
			name: "lowercase select",
			sql:  "select count(*) from fact_royalties",
		},
		{
			name: "blocked keyword as identifier substring",
			sql:  "SELECT updated_at, created_date FROM some_table",
		},
		{
			name: "single trailing semicolon",
			sql:  "SELECT 1;",
		},
		{
			name: "keyword hidden in line comment is inert",
			sql:  "SELECT 1 -- ; DROP TABLE x",
		},
		{
			name: "keyword hidden in block comment is inert",
			sql:  "SELECT 1 /* DROP TABLE x */ FROM t",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Validate(tt.sql)
			assert.True(t, v.Admitted, "expected admit, got %s (%s)", v.Kind, v.Detail)
			assert.Equal(t, tt.sql, v.SQL, "admitted SQL must be the original text")
		})
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		sql    string
		kind   Kind
		detail string
	}{
		{
			name: "drop table",
			sql:  "DROP TABLE dim_writer",
			kind: NotSelect,
		},
		{
			name: "delete",
			sql:  "DELETE FROM dim_writer",
			kind: NotSelect,
		},
		{
			name: "insert",
			sql:  "INSERT INTO dim_writer VALUES (999, 'Hacker')",
			kind: NotSelect,
		},
		{
			name: "update",
			sql:  "UPDATE dim_writer SET writer_name = 'Hacker' WHERE writer_id = 101",
			kind: NotSelect,
		},
		{
			name: "alter",
			sql:  "ALTER TABLE dim_writer ADD COLUMN age INTEGER",
			kind: NotSelect,
		},
		{
			name: "empty",
			sql:  "",
			kind: NotSelect,
		},
		{
			name: "whitespace only",
			sql:  "   \n\t  ",
			kind: NotSelect,
		},
		{
			name:   "select wrapping a drop",
			sql:    "SELECT * FROM (SELECT 1); DROP TABLE dim_writer",
			kind:   ForbiddenKeyword,
			detail: "DROP",
		},
		{
			name:   "blocked keyword as whole word inside select",
			sql:    "SELECT * FROM t WHERE c = 'x' UNION SELECT 1 WHERE EXISTS (SELECT 1) AND delete IS NOT NULL",
			kind:   ForbiddenKeyword,
			detail: "DELETE",
		},
		{
			name: "piggybacked statement",
			sql:  "SELECT * FROM dim_writer; SELECT * FROM dim_song",
			kind: MultiStatement,
		},
		{
			name: "comment does not hide a real second statement",
			sql:  "SELECT 1 -- innocuous\n; DROP TABLE dim_writer",
			kind: ForbiddenKeyword,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Validate(tt.sql)
			assert.False(t, v.Admitted)
			assert.Equal(t, tt.kind, v.Kind)
			if tt.detail != "" {
				assert.Equal(t, tt.detail, v.Detail)
			}
			assert.NotEmpty(t, v.Reason())
		})
	}
}

func TestValidateChecksOrder(t *testing.T) {
	// A non-SELECT containing a blocked keyword reports NotSelect: the
	// whitelist check runs before the blocklist.
	v := Validate("DROP TABLE x; DELETE FROM y")
	assert.Equal(t, NotSelect, v.Kind)
}

func TestEnforceLimit(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want string
	}{
		{
			name: "appends when absent",
			sql:  "SELECT * FROM dim_writer",
			want: "SELECT * FROM dim_writer LIMIT 1000",
		},
		{
			name: "strips trailing semicolon first",
			sql:  "SELECT * FROM dim_writer;",
			want: "SELECT * FROM dim_writer LIMIT 1000",
		},
		{
			name: "existing limit untouched",
			sql:  "SELECT * FROM dim_writer LIMIT 5",
			want: "SELECT * FROM dim_writer LIMIT 5",
		},
		{
			name: "lowercase limit recognized",
			sql:  "select * from t limit 5",
			want: "select * from t limit 5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EnforceLimit(tt.sql, 1000))
		})
	}
}

func TestEnforceLimitIdempotent(t *testing.T) {
	once := EnforceLimit("SELECT * FROM fact_royalties", 1000)
	twice := EnforceLimit(once, 1000)
	assert.Equal(t, once, twice)
}
