package report_repo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anbar/internal/core/id"
	"anbar/internal/domain/documents"
)

func TestPartyNamesQuery(t *testing.T) {
	repo := NewReportRepo(nil)
	s, c := id.New(), id.New()

	sql, args, err := repo.partyNamesQuery([]id.ID{s}, []id.ID{c}).ToSql()
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT id, name FROM cat_suppliers WHERE id IN ($1) UNION ALL SELECT id, name FROM cat_customers WHERE id IN ($2)",
		sql)
	assert.Equal(t, []any{s, c}, args)

	sql, _, err = repo.partyNamesQuery(nil, []id.ID{c}).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT id, name FROM cat_customers WHERE id IN ($1)", sql)
}

func TestTypeSummaryQuery(t *testing.T) {
	repo := NewReportRepo(nil)
	from := time.Date(2025, 3, 21, 0, 0, 0, 0, time.UTC)

	q, err := repo.typeSummaryQuery(documents.ListFilter{DateFrom: &from, Limit: 10, Offset: 20})
	require.NoError(t, err)

	sql, args, err := q.ToSql()
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT document_type, COUNT(*) AS count, COUNT(*) FILTER (WHERE finalized) AS finalized_count, COALESCE(SUM(total_amount), 0) AS total_amount"+
			" FROM doc_documents WHERE deletion_mark = $1 AND date >= $2 GROUP BY document_type ORDER BY document_type",
		sql)
	assert.Equal(t, []any{false, from}, args)
}
