package rag

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/yanqian/invoice-query/internal/domain/query"
	"github.com/yanqian/invoice-query/internal/domain/tenant"
)

type passageDoc struct {
	Tenant        string  `json:"tenant"`
	InvoiceID     float64 `json:"invoice_id"`
	InvoiceNumber string  `json:"invoice_number"`
	Vendor        string  `json:"vendor"`
	InvoiceDate   string  `json:"invoice_date"`
	TotalAmount   float64 `json:"total_amount"`
	Currency      string  `json:"currency"`
	Content       string  `json:"content"`
}

// BleveIndex is a keyword index over invoice passages.
type BleveIndex struct {
	index bleve.Index
}

func passageMapping() mapping.IndexMapping {
	im := bleve.NewIndexMapping()

	doc := bleve.NewDocumentMapping()
	text := bleve.NewTextFieldMapping()
	text.Analyzer = standard.Name
	doc.AddFieldMappingsAt("content", text)
	doc.AddFieldMappingsAt("vendor", text)

	exact := bleve.NewKeywordFieldMapping()
	doc.AddFieldMappingsAt("tenant", exact)
	doc.AddFieldMappingsAt("invoice_number", exact)
	doc.AddFieldMappingsAt("currency", exact)
	doc.AddFieldMappingsAt("invoice_date", exact)

	numeric := bleve.NewNumericFieldMapping()
	doc.AddFieldMappingsAt("invoice_id", numeric)
	doc.AddFieldMappingsAt("total_amount", numeric)

	im.AddDocumentMapping("passage", doc)
	im.DefaultType = "passage"
	im.DefaultMapping = doc
	return im
}

// OpenBleveIndex opens the index at path, creating it when absent.
func OpenBleveIndex(path string) (*BleveIndex, error) {
	if _, err := os.Stat(path); err == nil {
		index, openErr := bleve.Open(path)
		if openErr != nil {
			return nil, fmt.Errorf("open passage index: %w", openErr)
		}
		return &BleveIndex{index: index}, nil
	}
	index, err := bleve.New(path, passageMapping())
	if err != nil {
		return nil, fmt.Errorf("create passage index: %w", err)
	}
	return &BleveIndex{index: index}, nil
}

// NewMemBleveIndex builds an in-memory index.
func NewMemBleveIndex() (*BleveIndex, error) {
	index, err := bleve.NewMemOnly(passageMapping())
	if err != nil {
		return nil, fmt.Errorf("create passage index: %w", err)
	}
	return &BleveIndex{index: index}, nil
}

// IndexPassages adds or replaces passages in one batch.
func (b *BleveIndex) IndexPassages(ctx context.Context, passages []Passage) error {
	batch := b.index.NewBatch()
	for _, p := range passages {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !p.TenantID.Valid() {
			continue
		}
		if err := batch.Index(p.DocID(), passageDoc{
			Tenant:        p.TenantID.String(),
			InvoiceID:     float64(p.InvoiceID),
			InvoiceNumber: p.InvoiceNumber,
			Vendor:        p.Vendor,
			InvoiceDate:   p.InvoiceDate,
			TotalAmount:   p.TotalAmount,
			Currency:      p.Currency,
			Content:       p.Content,
		}); err != nil {
			return fmt.Errorf("index %s: %w", p.DocID(), err)
		}
	}
	return b.index.Batch(batch)
}

// DocCount returns the number of indexed passages.
func (b *BleveIndex) DocCount() (uint64, error) {
	return b.index.DocCount()
}

// Close closes the index.
func (b *BleveIndex) Close() error {
	return b.index.Close()
}

// BleveSearcher answers from the keyword index, restricted to one tenant.
type BleveSearcher struct {
	cfg    Config
	index  *BleveIndex
	logger *slog.Logger
}

// NewBleveSearcher constructs the searcher.
func NewBleveSearcher(cfg Config, index *BleveIndex, logger *slog.Logger) *BleveSearcher {
	return &BleveSearcher{
		cfg:    cfg.withDefaults(),
		index:  index,
		logger: logger.With("component", "rag.bleve"),
	}
}

// Search implements query.RAGSearcher. Similarity is the hit score relative
// to the best hit.
func (s *BleveSearcher) Search(ctx context.Context, question string, tenantID tenant.ID) (query.RAGResult, error) {
	if !tenantID.Valid() {
		return query.RAGResult{}, errors.New("rag search requires a tenant")
	}
	scope := bleve.NewTermQuery(tenantID.String())
	scope.SetField("tenant")
	match := bleve.NewMatchQuery(question)
	match.SetField("content")

	req := bleve.NewSearchRequest(bleve.NewConjunctionQuery(scope, match))
	req.Size = s.cfg.MaxResults
	req.Fields = []string{"*"}

	res, err := s.index.index.SearchInContext(ctx, req)
	if err != nil {
		return query.RAGResult{}, fmt.Errorf("keyword search: %w", err)
	}
	if len(res.Hits) == 0 {
		return query.RAGResult{Success: false, Rows: []query.Row{}, Query: match.Match}, nil
	}

	top := res.Hits[0].Score
	rows := make([]query.Row, 0, len(res.Hits))
	for _, hit := range res.Hits {
		if hit.Fields["tenant"] != tenantID.String() {
			s.logger.Warn("dropping hit from another tenant", "doc", hit.ID)
			continue
		}
		similarity := 0.0
		if top > 0 {
			similarity = hit.Score / top
		}
		rows = append(rows, query.Row{
			"invoice_id":     toInt64(hit.Fields["invoice_id"]),
			"invoice_number": hit.Fields["invoice_number"],
			"invoice_date":   hit.Fields["invoice_date"],
			"vendor":         hit.Fields["vendor"],
			"total_amount":   hit.Fields["total_amount"],
			"currency":       hit.Fields["currency"],
			"content_text":   hit.Fields["content"],
			"similarity":     similarity,
		})
	}
	return query.RAGResult{Success: len(rows) > 0, Rows: rows, Query: match.Match}, nil
}

func toInt64(v any) any {
	if f, ok := v.(float64); ok {
		return int64(f)
	}
	return v
}

var _ query.RAGSearcher = (*BleveSearcher)(nil)
