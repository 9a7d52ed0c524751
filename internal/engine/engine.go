// Package engine orchestrates statement extraction: one format detection
// per document, one parser dispatched across its pages, and the assembly
// of the result envelope.
package engine

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/insightdelivered/statement-engine/internal/classify"
	"github.com/insightdelivered/statement-engine/internal/models"
	"github.com/insightdelivered/statement-engine/internal/parser"
)

// Config carries the engine toggles, mirrored from the application config.
type Config struct {
	HomeCurrency        string
	DefaultType         string
	Categorize          bool
	DetectSubscriptions bool
}

// Engine runs extraction over documents. Page failures are isolated: a bad
// page costs only its own transactions, never the document.
type Engine struct {
	log        *zap.Logger
	opts       parser.Options
	categorize bool
	subs       bool
	classifier *classify.Classifier
}

func New(log *zap.Logger, cfg Config) *Engine {
	e := &Engine{
		log:        log,
		opts:       parser.Options{DefaultType: cfg.DefaultType, HomeCurrency: cfg.HomeCurrency},
		categorize: cfg.Categorize,
		subs:       cfg.DetectSubscriptions,
	}
	if cfg.Categorize || cfg.DetectSubscriptions {
		e.classifier = classify.NewClassifier()
	}
	return e
}

// Extract detects the statement format from the combined page text and
// parses every page with the detected dialect.
func (e *Engine) Extract(doc models.Document) *models.ExtractionResult {
	return e.ExtractAs(doc, "")
}

// ExtractAs is Extract with the format forced; an empty format means
// autodetect. The result always carries one entry per input page, in
// order, each with the page's raw text alongside its transactions.
func (e *Engine) ExtractAs(doc models.Document, format models.Format) *models.ExtractionResult {
	if format == "" {
		var combined strings.Builder
		for _, page := range doc.Pages {
			combined.WriteString(page.Text)
			combined.WriteString("\n")
		}
		format = parser.Detect(combined.String())
	}

	method := doc.Method
	if method == "" {
		method = "text"
	}

	res := &models.ExtractionResult{
		SourceFile:   doc.SourceFile,
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
		Transactions: make([]models.PageResult, 0, len(doc.Pages)),
		Metadata: models.Metadata{
			ExtractionMethod: method,
			Format:           format,
			ExtractionID:     uuid.NewString(),
		},
	}

	p := parser.NewWithOptions(format, e.opts)
	total := 0
	for _, page := range doc.Pages {
		txns := e.parsePage(p, page)
		if txns == nil {
			txns = []models.Transaction{}
		}
		e.annotate(txns)
		total += len(txns)
		res.Transactions = append(res.Transactions, models.PageResult{
			Page:         page.Number,
			Transactions: txns,
			RawText:      page.Text,
		})
	}
	res.Metadata.TotalTransactions = total
	return res
}

// parsePage runs one parser over one page. Dialects that understand table
// rows get those first; a failed or empty row pass falls back to the line
// stream, whole pages only, never merged. A panicking parser is contained
// here.
func (e *Engine) parsePage(p parser.Parser, page models.Page) (txns []models.Transaction) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Warn("parser panicked, skipping page",
				zap.Int("page", page.Number),
				zap.Any("panic", r))
			txns = nil
		}
	}()

	if tp, ok := p.(parser.TableParser); ok && len(page.Rows) > 0 {
		rowTxns, err := tp.ParseRows(page.Rows)
		if err == nil && len(rowTxns) > 0 {
			return rowTxns
		}
		if err != nil {
			e.log.Warn("row strategy failed, falling back to lines",
				zap.Int("page", page.Number),
				zap.Error(err))
		}
	}

	lineTxns, err := p.ParseLines(strings.Split(page.Text, "\n"))
	if err != nil {
		e.log.Warn("line parsing failed",
			zap.Int("page", page.Number),
			zap.Error(err))
		return nil
	}
	return lineTxns
}

func (e *Engine) annotate(txns []models.Transaction) {
	if e.classifier == nil {
		return
	}
	for i := range txns {
		if e.categorize {
			txns[i].Category = e.classifier.Categorize(txns[i])
		}
		if e.subs {
			if ok, reason := e.classifier.DetectSubscription(txns[i]); ok {
				txns[i].Subscription = true
				txns[i].SubscriptionReason = reason
			}
		}
	}
}
