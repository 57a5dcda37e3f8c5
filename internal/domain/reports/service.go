package reports

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"anbar/internal/core/apperror"
	"anbar/internal/core/id"
	"anbar/internal/domain/documents"
	"anbar/internal/domain/registers/movements"
	"anbar/internal/domain/valuation"
	"anbar/pkg/jalaali"
	"anbar/pkg/logger"
)

var tracer = otel.Tracer("anbar/reports")

// Config wires the reports service.
type Config struct {
	Repo      Repository
	Documents DocumentSource
	Balances  BalanceSource

	// IncludeDrafts is the default when a request does not say.
	IncludeDrafts bool
}

// Service provides report generation operations.
type Service struct {
	repo          Repository
	documents     DocumentSource
	balances      BalanceSource
	includeDrafts bool
}

// NewService creates a new reports service.
func NewService(cfg Config) *Service {
	return &Service{
		repo:          cfg.Repo,
		documents:     cfg.Documents,
		balances:      cfg.Balances,
		includeDrafts: cfg.IncludeDrafts,
	}
}

func (s *Service) drafts(v *bool) bool {
	if v == nil {
		return s.includeDrafts
	}
	return *v
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// loadProduct loads the product ref and its documents concurrently.
func (s *Service) loadProduct(ctx context.Context, productID id.ID) (ProductRef, []*documents.Document, error) {
	var (
		ref  ProductRef
		docs []*documents.Document
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		refs, err := s.repo.Products(gctx, []id.ID{productID})
		if err != nil {
			return fmt.Errorf("load product: %w", err)
		}
		if r, ok := refs[productID]; ok {
			ref = r
			return nil
		}
		// Reports degrade to a placeholder rather than fail.
		ref = placeholderProduct(productID)
		return nil
	})

	g.Go(func() error {
		var err error
		docs, err = s.documents.FindByProduct(gctx, productID)
		if err != nil {
			return fmt.Errorf("load documents: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return ProductRef{}, nil, err
	}
	return ref, docs, nil
}

func flagsOf(entries []valuation.Entry) []Flag {
	var flags []Flag
	if valuation.DraftsIncluded(entries) {
		flags = append(flags, FlagDraftsIncluded)
	}
	for _, e := range entries {
		if e.NegativeBalance {
			flags = append(flags, FlagNegativeBalance)
			break
		}
	}
	return flags
}

// Cardex computes the running moving-average valuation of one product.
func (s *Service) Cardex(ctx context.Context, req CardexRequest) (report *CardexReport, err error) {
	ctx, span := tracer.Start(ctx, "reports.Cardex",
		trace.WithAttributes(attribute.String("product.id", req.ProductID.String())))
	defer func() { endSpan(span, err) }()

	if id.IsNil(req.ProductID) {
		return nil, apperror.NewFieldValidation("productId", "product is required")
	}
	if req.From != nil && req.To != nil && req.To.Before(*req.From) {
		return nil, apperror.NewValidation("to is before from")
	}

	ref, docs, err := s.loadProduct(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}

	opts := valuation.Options{IncludeDrafts: s.drafts(req.IncludeDrafts)}
	entries := valuation.ComputeCardex(req.ProductID, docs, opts)
	opening, window := valuation.Window(entries, req.From, req.To)

	report = &CardexReport{
		Product:       ref,
		IncludeDrafts: opts.IncludeDrafts,
		From:          req.From,
		To:            req.To,
		Opening:       balanceOf(opening),
		Rows:          make([]CardexRow, 0, len(window)),
		Closing:       balanceOf(opening),
		Flags:         flagsOf(entries),
	}
	for _, e := range window {
		report.Rows = append(report.Rows, CardexRow{Entry: e, JalaliDate: jalaali.FormatTime(e.Date)})
	}
	if n := len(window); n > 0 {
		report.Closing = balanceOf(&window[n-1])
	}

	span.SetAttributes(attribute.Int("cardex.rows", len(report.Rows)))
	if len(report.Flags) > 0 {
		logger.Debug(ctx, "cardex flagged", "product_id", req.ProductID, "flags", report.Flags)
	}
	return report, nil
}

// MovementSummary aggregates the cardex of one product.
func (s *Service) MovementSummary(ctx context.Context, productID id.ID, includeDrafts *bool) (report *MovementSummaryReport, err error) {
	ctx, span := tracer.Start(ctx, "reports.MovementSummary",
		trace.WithAttributes(attribute.String("product.id", productID.String())))
	defer func() { endSpan(span, err) }()

	if id.IsNil(productID) {
		return nil, apperror.NewFieldValidation("productId", "product is required")
	}

	ref, docs, err := s.loadProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	opts := valuation.Options{IncludeDrafts: s.drafts(includeDrafts)}
	entries := valuation.ComputeCardex(productID, docs, opts)

	return &MovementSummaryReport{
		Product:       ref,
		IncludeDrafts: opts.IncludeDrafts,
		Summary:       valuation.Summarize(productID, entries),
		Flags:         flagsOf(entries),
	}, nil
}

// StockBalances lists per-product quantities from the movement register.
func (s *Service) StockBalances(ctx context.Context, filter StockBalanceFilter) (report *StockBalanceReport, err error) {
	ctx, span := tracer.Start(ctx, "reports.StockBalances")
	defer func() { endSpan(span, err) }()

	asOf := time.Now().UTC()
	if filter.AsOf != nil {
		asOf = filter.AsOf.UTC()
	}

	balances, err := s.balances.Balances(ctx, movements.BalanceFilter{
		ProductIDs:  filter.ProductIDs,
		ExcludeZero: filter.ExcludeZero,
		AsOf:        &asOf,
	})
	if err != nil {
		return nil, fmt.Errorf("load balances: %w", err)
	}

	ids := make([]id.ID, 0, len(balances))
	for _, b := range balances {
		ids = append(ids, b.ProductID)
	}
	refs, err := s.repo.Products(ctx, id.Unique(ids))
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}

	report = &StockBalanceReport{AsOf: asOf, Items: make([]StockBalanceRow, 0, len(balances))}
	for _, b := range balances {
		ref, ok := refs[b.ProductID]
		if !ok {
			ref = placeholderProduct(b.ProductID)
		}
		row := StockBalanceRow{
			Product:  ref,
			Quantity: b.Quantity,
			Negative: b.Quantity.IsNegative(),
		}
		if !b.LastMovementAt.IsZero() {
			last := b.LastMovementAt
			row.LastMovementAt = &last
			row.JalaliDate = jalaali.FormatTime(last)
		}
		report.Items = append(report.Items, row)
	}
	report.TotalItems = len(report.Items)
	return report, nil
}

// DocumentJournal lists documents with party names and Jalaali dates.
func (s *Service) DocumentJournal(ctx context.Context, filter JournalFilter) (journal *Journal, err error) {
	ctx, span := tracer.Start(ctx, "reports.DocumentJournal")
	defer func() { endSpan(span, err) }()

	f := filter.ListFilter
	if f.Limit <= 0 {
		f.Limit = 50
	}
	if f.Limit > 500 {
		f.Limit = 500
	}
	if f.OrderBy == "" {
		f.OrderBy = "-date"
	}
	f.WithItems = true

	res, err := s.documents.List(ctx, f)
	if err != nil {
		return nil, err
	}

	var supplierIDs, customerIDs []id.ID
	for _, d := range res.Items {
		if d.SupplierID != nil {
			supplierIDs = append(supplierIDs, *d.SupplierID)
		}
		if d.CustomerID != nil {
			customerIDs = append(customerIDs, *d.CustomerID)
		}
	}
	names, err := s.repo.PartyNames(ctx, id.Unique(supplierIDs), id.Unique(customerIDs))
	if err != nil {
		return nil, fmt.Errorf("load party names: %w", err)
	}

	journal = &Journal{
		Items:      make([]JournalRow, 0, len(res.Items)),
		TotalCount: res.TotalCount,
		Limit:      f.Limit,
		Offset:     f.Offset,
	}
	for _, d := range res.Items {
		row := JournalRow{
			ID:           d.ID,
			DocumentType: d.Type,
			Number:       d.Number,
			Date:         d.Date,
			JalaliDate:   jalaali.FormatTime(d.Date),
			Finalized:    d.Finalized,
			PartyID:      d.PartyID(),
			ItemCount:    len(d.Items),
			TotalAmount:  d.TotalAmount,
			Description:  d.Description,
			DeletionMark: d.DeletionMark,
		}
		if row.PartyID != nil {
			row.PartyName = DeletedItemName
			if name, ok := names[*row.PartyID]; ok {
				row.PartyName = name
			}
		}
		journal.Items = append(journal.Items, row)
	}

	// The summary covers the whole filter, so it is only sent with the first page.
	if f.Offset == 0 {
		summary, err := s.repo.TypeSummary(ctx, f)
		if err != nil {
			logger.Warn(ctx, "document type summary failed", "error", err)
		} else {
			journal.Summary = summary
		}
	}

	return journal, nil
}
