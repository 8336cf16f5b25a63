// Package enrich derives embeddings, keywords, and summaries from uploaded
// content. Every step is best-effort: a failing collaborator leaves its field
// absent and never blocks the upload that triggered it.
package enrich

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Input limits applied before calling the collaborators, to stay inside
// model token budgets.
const (
	maxEmbedChars   = 8000
	maxKeywordChars = 3000
	maxSummaryChars = 4000
)

// TextExtractor pulls plain text out of raw content. Failure is expressed as
// empty text, never as an error.
type TextExtractor interface {
	Extract(data []byte, contentType string) string
}

// Embedder turns text into an embedding vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// KeywordExtractor produces up to 7 short keywords for a text.
type KeywordExtractor interface {
	Keywords(ctx context.Context, text string) ([]string, error)
}

// Summarizer produces a 2-3 sentence summary.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// Bundle carries whichever enrichment fields succeeded.
type Bundle struct {
	Embedding []float64
	Keywords  []string
	Summary   string
}

// Pipeline orchestrates the collaborators for eligible content types.
type Pipeline struct {
	extractor  TextExtractor
	embedder   Embedder
	keywords   KeywordExtractor
	summarizer Summarizer
	eligible   []string
	timeout    time.Duration
	logger     *zap.Logger
}

// NewPipeline wires the collaborators. eligibleTypes are MIME substrings;
// timeout bounds each collaborator call.
func NewPipeline(
	extractor TextExtractor,
	embedder Embedder,
	keywords KeywordExtractor,
	summarizer Summarizer,
	eligibleTypes []string,
	timeout time.Duration,
	logger *zap.Logger,
) *Pipeline {
	return &Pipeline{
		extractor:  extractor,
		embedder:   embedder,
		keywords:   keywords,
		summarizer: summarizer,
		eligible:   eligibleTypes,
		timeout:    timeout,
		logger:     logger,
	}
}

// Eligible reports whether the content type qualifies for enrichment. Image
// and other binary types are skipped outright, not attempted-and-failed.
func (p *Pipeline) Eligible(contentType string) bool {
	ct := strings.ToLower(contentType)
	for _, sub := range p.eligible {
		if strings.Contains(ct, sub) {
			return true
		}
	}
	return false
}

// Enrich extracts text and attempts the three collaborators independently.
// Each failure is swallowed; the returned bundle holds whatever succeeded.
// Non-eligible content returns an empty bundle without touching any
// collaborator.
func (p *Pipeline) Enrich(ctx context.Context, data []byte, contentType string) Bundle {
	var bundle Bundle
	if !p.Eligible(contentType) {
		return bundle
	}

	text := strings.TrimSpace(p.extractor.Extract(data, contentType))
	if text == "" {
		return bundle
	}

	if p.embedder != nil {
		callCtx, cancel := context.WithTimeout(ctx, p.timeout)
		embedding, err := p.embedder.Embed(callCtx, truncate(text, maxEmbedChars))
		cancel()
		if err != nil {
			p.logger.Warn("embedding generation failed", zap.Error(err))
		} else {
			bundle.Embedding = embedding
		}
	}

	if p.keywords != nil {
		callCtx, cancel := context.WithTimeout(ctx, p.timeout)
		keywords, err := p.keywords.Keywords(callCtx, truncate(text, maxKeywordChars))
		cancel()
		if err != nil {
			p.logger.Warn("keyword extraction failed", zap.Error(err))
		} else {
			bundle.Keywords = keywords
		}
	}

	if p.summarizer != nil {
		callCtx, cancel := context.WithTimeout(ctx, p.timeout)
		summary, err := p.summarizer.Summarize(callCtx, truncate(text, maxSummaryChars))
		cancel()
		if err != nil {
			p.logger.Warn("summary generation failed", zap.Error(err))
		} else {
			bundle.Summary = summary
		}
	}

	return bundle
}

func truncate(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	return text[:limit]
}

// PlainTextExtractor handles text-family MIME types by interpreting the raw
// bytes as UTF-8. Binary document formats (pdf, office) would need a real
// parser behind the TextExtractor interface; for those it yields empty text,
// which downstream treats as "nothing to enrich".
type PlainTextExtractor struct{}

func (PlainTextExtractor) Extract(data []byte, contentType string) string {
	if !strings.Contains(strings.ToLower(contentType), "text") {
		return ""
	}
	return string(data)
}
