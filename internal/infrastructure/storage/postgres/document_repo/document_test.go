package document_repo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anbar/internal/core/apperror"
	"anbar/internal/core/id"
	"anbar/internal/core/types"
	"anbar/internal/domain/documents"
)

const selectDocuments = "SELECT id, deletion_mark, version, created_at, updated_at, number, date, finalized, finalized_at, description, document_type, supplier_id, customer_id, total_amount FROM doc_documents"

func TestListQuery_Defaults(t *testing.T) {
	repo := NewDocumentRepo(nil)

	q, err := repo.listQuery(documents.ListFilter{})
	require.NoError(t, err)

	sql, args, err := q.ToSql()
	require.NoError(t, err)
	assert.Equal(t, selectDocuments+" WHERE deletion_mark = $1", sql)
	assert.Equal(t, []any{false}, args)
}

func TestListQuery_AllFilters(t *testing.T) {
	repo := NewDocumentRepo(nil)
	productID := id.New()
	finalized := true

	q, err := repo.listQuery(documents.ListFilter{
		Types:          []documents.DocumentType{documents.TypePurchaseInvoice, documents.TypeSaleInvoice},
		Finalized:      &finalized,
		ProductID:      &productID,
		Search:         " 42 ",
		IncludeDeleted: true,
	})
	require.NoError(t, err)

	sql, args, err := q.ToSql()
	require.NoError(t, err)
	assert.Equal(t, selectDocuments+
		" WHERE document_type IN ($1,$2)"+
		" AND finalized = $3"+
		" AND EXISTS (SELECT 1 FROM doc_document_items i WHERE i.document_id = doc_documents.id AND i.product_id = $4)"+
		" AND (number ILIKE $5 OR description ILIKE $6)", sql)
	assert.Equal(t, []any{"PURCHASE_INVOICE", "SALE_INVOICE", true, productID, "%42%", "%42%"}, args)
}

func TestListQuery_RejectsUnknownType(t *testing.T) {
	repo := NewDocumentRepo(nil)

	_, err := repo.listQuery(documents.ListFilter{Types: []documents.DocumentType{"RETURN"}})
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestParseOrderBy(t *testing.T) {
	got, err := parseOrderBy("")
	require.NoError(t, err)
	assert.Equal(t, []string{"date ASC", "created_at ASC", "id ASC"}, got)

	got, err = parseOrderBy("-number")
	require.NoError(t, err)
	assert.Equal(t, []string{"number DESC", "id DESC"}, got)

	_, err = parseOrderBy("total_amount; DROP TABLE doc_documents")
	assert.Error(t, err)
}

func TestInsertItemsQuery(t *testing.T) {
	repo := NewDocumentRepo(nil)
	docID, productID := id.New(), id.New()

	doc := documents.NewDocument(documents.TypeStockAdjustment, time.Date(2025, 3, 21, 0, 0, 0, 0, time.UTC))
	doc.AddItem(productID, types.MustMoney("2"), types.MustMoney("10"))
	doc.Items[0].Direction = documents.DirectionOut

	sql, args, err := repo.insertItemsQuery(docID, doc.Items).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO doc_document_items (document_id,line_no,product_id,quantity,unit_price,total_price,direction,description) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)", sql)
	require.Len(t, args, 8)
	assert.Equal(t, docID, args[0])
	assert.Equal(t, 1, args[1])
	assert.Equal(t, "OUT", args[6])
}

func TestHeaderOf_SkipsImmutableColumns(t *testing.T) {
	doc := documents.NewDocument(documents.TypeInitialStock, time.Date(2025, 3, 21, 0, 0, 0, 0, time.UTC))

	data := headerOf(doc, "id", "created_at", "document_type", "version")
	assert.NotContains(t, data, "id")
	assert.NotContains(t, data, "document_type")
	assert.Contains(t, data, "total_amount")
	assert.Contains(t, data, "date")
	assert.NotContains(t, data, "items")
}
