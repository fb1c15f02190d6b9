package bill

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"net/url"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/zombor/bill-extractor/internal/extraction"
	"github.com/zombor/bill-extractor/internal/scanning"
)

// IDGenerator generates unique IDs for extractions
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

// defaultIDGenerator generates random UUIDs
type defaultIDGenerator struct{}

func (g *defaultIDGenerator) Generate() string {
	return uuid.NewString()
}

// defaultTimeSource provides the current time
type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

// Options tune page rendering and OCR
type Options struct {
	DPI            float64 // PDF render resolution, scanning.DefaultDPI when zero
	OCRConcurrency int     // pages recognized at once, 1 when zero
}

// Service fetches or accepts documents, extracts their line items and keeps
// a record of every run
type Service struct {
	db          DB
	storage     Storage
	recognizer  scanning.Recognizer
	fetcher     Fetcher
	extractor   extraction.Extractor
	options     Options
	idGenerator IDGenerator
	timeSource  TimeSource
}

// NewService creates a new Service with default ID generator and time source
func NewService(db DB, storage Storage, recognizer scanning.Recognizer, fetcher Fetcher, options Options) *Service {
	return NewServiceWithDeps(db, storage, recognizer, fetcher, options, &defaultIDGenerator{}, &defaultTimeSource{})
}

// NewServiceWithDeps creates a new Service with custom dependencies for testing
func NewServiceWithDeps(db DB, storage Storage, recognizer scanning.Recognizer, fetcher Fetcher, options Options, idGen IDGenerator, timeSrc TimeSource) *Service {
	if options.DPI <= 0 {
		options.DPI = scanning.DefaultDPI
	}
	if options.OCRConcurrency <= 0 {
		options.OCRConcurrency = 1
	}
	return &Service{
		db:          db,
		storage:     storage,
		recognizer:  recognizer,
		fetcher:     fetcher,
		extractor:   extraction.NewExtractor(),
		options:     options,
		idGenerator: idGen,
		timeSource:  timeSrc,
	}
}

var (
	unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9\s\-_]`)
	repeatedSpaces      = regexp.MustCompile(`\s+`)
)

// sanitizeFilename cleans up a filename by removing special characters and truncating length
func sanitizeFilename(filename string) string {
	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filename, ext)

	base = unsafeFilenameChars.ReplaceAllString(base, "")
	base = repeatedSpaces.ReplaceAllString(base, " ")
	base = strings.TrimSpace(base)

	// Truncate to reasonable length (50 chars for base, plus extension)
	maxLen := 50
	if len(base) > maxLen {
		base = base[:maxLen]
	}

	if base == "" {
		base = "document"
	}

	ext = unsafeFilenameChars.ReplaceAllString(strings.TrimPrefix(ext, "."), "")
	if ext == "" {
		return base
	}
	return base + "." + ext
}

// filenameFromURL takes the last path segment of a document URL
func filenameFromURL(documentURL string) string {
	u, err := url.Parse(documentURL)
	if err != nil || u.Path == "" {
		return "document"
	}
	return path.Base(u.Path)
}

// Process downloads the document at documentURL and extracts it
func (s *Service) Process(ctx context.Context, documentURL string) (*Extraction, error) {
	data, contentType, err := s.fetcher.Fetch(ctx, documentURL)
	if err != nil {
		slog.Error("Failed to fetch document", "url", documentURL, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	return s.process(ctx, documentURL, filenameFromURL(documentURL), data, contentType)
}

// ProcessUpload extracts a document sent by the caller
func (s *Service) ProcessUpload(ctx context.Context, filename string, data []byte, contentType string) (*Extraction, error) {
	return s.process(ctx, "", filename, data, contentType)
}

func (s *Service) process(ctx context.Context, source, filename string, data []byte, contentType string) (*Extraction, error) {
	start := s.timeSource.Now()
	id := s.idGenerator.Generate()
	contentType = scanning.DetectContentType(data, contentType)

	pages, err := scanning.RenderPages(data, contentType, s.options.DPI)
	if err != nil {
		slog.Error("Failed to render document",
			"filename", filename,
			"content_type", contentType,
			"file_size", len(data),
			"error", err,
		)
		return nil, fmt.Errorf("rendering document: %w", err)
	}

	tokens, err := s.recognizePages(ctx, pages)
	if err != nil {
		slog.Error("Failed to recognize document", "filename", filename, "pages", len(pages), "error", err)
		return nil, fmt.Errorf("recognizing pages: %w", err)
	}

	pageResults := make([]extraction.PageResult, len(tokens))
	pageTotals := make([]extraction.Totals, len(tokens))
	for i, pageTokens := range tokens {
		pageResults[i] = s.extractor.ExtractPage(pageTokens)
		pageTotals[i] = pageResults[i].Totals
	}
	result := s.extractor.Aggregate(pageResults)

	savedPath, err := s.storage.Save(fmt.Sprintf("%s_%s", id, sanitizeFilename(filename)), data)
	if err != nil {
		return nil, fmt.Errorf("saving file: %w", err)
	}

	e := &Extraction{
		ID:                id,
		Source:            source,
		Filename:          savedPath,
		ContentType:       contentType,
		PageCount:         len(pages),
		Result:            result,
		PageTotals:        pageTotals,
		ProcessingSeconds: roundSeconds(s.timeSource.Now().Sub(start)),
		CreatedAt:         start,
	}

	if err := s.db.SaveExtraction(e); err != nil {
		// Clean up file if database save fails
		s.storage.Delete(savedPath)
		return nil, fmt.Errorf("saving extraction to database: %w", err)
	}

	slog.Info("Extracted document",
		"id", id,
		"pages", e.PageCount,
		"items", result.TotalItemCount,
		"status", result.Reconciliation.Status,
	)
	return e, nil
}

// recognizePages runs OCR over every page, several at a time, keeping page order
func (s *Service) recognizePages(ctx context.Context, pages [][]byte) ([][]extraction.Token, error) {
	tokens := make([][]extraction.Token, len(pages))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.options.OCRConcurrency)
	for i, page := range pages {
		g.Go(func() error {
			pageTokens, err := s.recognizer.Recognize(ctx, page)
			if err != nil {
				return fmt.Errorf("page %d: %w", i+1, err)
			}
			tokens[i] = pageTokens
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tokens, nil
}

func roundSeconds(d time.Duration) float64 {
	return math.Round(d.Seconds()*100) / 100
}

// GetExtraction retrieves an extraction by ID
func (s *Service) GetExtraction(id string) (*Extraction, error) {
	e, err := s.db.GetExtraction(id)
	if err != nil {
		return nil, fmt.Errorf("getting extraction: %w", err)
	}
	return e, nil
}

// ListExtractions returns all extractions, newest first
func (s *Service) ListExtractions() ([]*Extraction, error) {
	extractions, err := s.db.ListExtractions()
	if err != nil {
		return nil, fmt.Errorf("listing extractions: %w", err)
	}
	return extractions, nil
}

// DeleteExtraction removes an extraction and its source document
func (s *Service) DeleteExtraction(id string) error {
	e, err := s.db.GetExtraction(id)
	if err != nil {
		return fmt.Errorf("getting extraction for deletion: %w", err)
	}

	if err := s.storage.Delete(e.Filename); err != nil {
		// Log error but continue with database deletion
		slog.Warn("Failed to delete file", "filename", e.Filename, "error", err)
	}

	if err := s.db.DeleteExtraction(id); err != nil {
		return fmt.Errorf("deleting extraction from database: %w", err)
	}
	return nil
}

// GetExtractionFile retrieves the source document of an extraction
func (s *Service) GetExtractionFile(id string) ([]byte, string, error) {
	e, err := s.db.GetExtraction(id)
	if err != nil {
		return nil, "", fmt.Errorf("getting extraction: %w", err)
	}

	data, err := s.storage.Get(e.Filename)
	if err != nil {
		return nil, "", fmt.Errorf("getting extraction file: %w", err)
	}

	return data, e.ContentType, nil
}
