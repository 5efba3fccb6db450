package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/Aashish23092/payslip-extractor/dto"
	"github.com/Aashish23092/payslip-extractor/utils/payslip"
	"golang.org/x/sync/errgroup"
)

// Document is one uploaded payslip file.
type Document struct {
	Filename string
	Data     []byte
	Password string
}

type PayslipService struct {
	pdfProcessor PDFProcessor
	parser       *payslip.Parser
	workers      int
	logger       *slog.Logger
}

func NewPayslipService(pdfProcessor PDFProcessor, parser *payslip.Parser, workers int, logger *slog.Logger) *PayslipService {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PayslipService{
		pdfProcessor: pdfProcessor,
		parser:       parser,
		workers:      workers,
		logger:       logger,
	}
}

// ProcessDocument extracts tokens from one file and runs both the full parse
// and the unknown-concept scan over them.
func (s *PayslipService) ProcessDocument(doc Document) (dto.DocumentResult, error) {
	result := dto.DocumentResult{Filename: doc.Filename, UnknownConcepts: []dto.UnknownConcept{}}

	tokens, err := s.pdfProcessor.ExtractTokens(doc.Data, doc.Password)
	if err != nil {
		return result, fmt.Errorf("extract %s: %w", doc.Filename, err)
	}

	slip, err := s.parser.Parse(tokens)
	if err != nil {
		return result, fmt.Errorf("parse %s: %w", doc.Filename, err)
	}
	reconciliation := payslip.Reconcile(slip)

	result.Payslip = &slip
	result.UnknownConcepts = s.parser.DetectUnknownConcepts(tokens)
	result.Reconciliation = &reconciliation

	if len(result.UnknownConcepts) > 0 {
		codes := make([]string, 0, len(result.UnknownConcepts))
		for _, u := range result.UnknownConcepts {
			codes = append(codes, u.Code)
		}
		s.logger.Warn("unknown payslip concepts", "file", doc.Filename, "codes", codes)
	}
	if !reconciliation.Balanced {
		s.logger.Info("payslip totals do not match line items",
			"file", doc.Filename,
			"earnings_delta", reconciliation.EarningsDelta,
			"deductions_delta", reconciliation.DeductionsDelta,
			"net_delta", reconciliation.NetDelta)
	}
	return result, nil
}

// DetectUnknownConcepts only runs the diagnostic scan for one file.
func (s *PayslipService) DetectUnknownConcepts(doc Document) (dto.DocumentResult, error) {
	result := dto.DocumentResult{Filename: doc.Filename, UnknownConcepts: []dto.UnknownConcept{}}

	tokens, err := s.pdfProcessor.ExtractTokens(doc.Data, doc.Password)
	if err != nil {
		return result, fmt.Errorf("extract %s: %w", doc.Filename, err)
	}
	result.UnknownConcepts = s.parser.DetectUnknownConcepts(tokens)
	return result, nil
}

// ParseBatch parses documents concurrently. A failing document is reported in
// its own result and never stops the others. Successful payslips come first,
// ordered by payment date.
func (s *PayslipService) ParseBatch(ctx context.Context, docs []Document) *dto.PayslipBatchResponse {
	results := s.run(ctx, docs, s.ProcessDocument)
	sortByPaymentDate(results)

	return &dto.PayslipBatchResponse{
		Documents:       results,
		Timeline:        BuildTimeline(results, s.parser.Registry().IsBonus),
		RegistryVersion: s.parser.Registry().Version(),
		ProcessedAt:     time.Now().Format(time.RFC3339),
	}
}

// DetectUnknownConceptsBatch runs the diagnostic scan over every document.
func (s *PayslipService) DetectUnknownConceptsBatch(ctx context.Context, docs []Document) *dto.UnknownConceptsResponse {
	return &dto.UnknownConceptsResponse{
		Documents:       s.run(ctx, docs, s.DetectUnknownConcepts),
		RegistryVersion: s.parser.Registry().Version(),
	}
}

// Concepts lists the registry the service parses against.
func (s *PayslipService) Concepts() dto.ConceptsResponse {
	reg := s.parser.Registry()
	return dto.ConceptsResponse{Version: reg.Version(), Concepts: reg.All()}
}

func (s *PayslipService) run(ctx context.Context, docs []Document, fn func(Document) (dto.DocumentResult, error)) []dto.DocumentResult {
	results := make([]dto.DocumentResult, len(docs))

	var g errgroup.Group
	g.SetLimit(s.workers)
	for i, doc := range docs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = dto.DocumentResult{Filename: doc.Filename, UnknownConcepts: []dto.UnknownConcept{}, Error: err.Error()}
				return nil
			}
			result, err := fn(doc)
			if err != nil {
				s.logger.Error("payslip processing failed", "file", doc.Filename, "error", err)
				result.Error = err.Error()
			}
			results[i] = result
			return nil
		})
	}
	g.Wait()

	return results
}

func sortByPaymentDate(results []dto.DocumentResult) {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i].Payslip, results[j].Payslip
		if a == nil || b == nil {
			return a != nil && b == nil
		}
		return a.SortableDate < b.SortableDate
	})
}

// BuildTimeline reduces parsed payslips to one point each, in result order.
func BuildTimeline(results []dto.DocumentResult, isBonus func(code string) bool) []dto.TimelinePoint {
	points := []dto.TimelinePoint{}
	for _, r := range results {
		if r.Payslip == nil {
			continue
		}
		points = append(points, dto.TimelinePoint{
			Date:       r.Payslip.SortableDate,
			Gross:      r.Payslip.TotalEarnings,
			Deductions: r.Payslip.TotalDeductions,
			Net:        r.Payslip.NetPay,
			Bonus:      r.Payslip.BonusTotal(isBonus),
		})
	}
	return points
}
