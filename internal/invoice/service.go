package invoice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/miramuse/invoice-studio/internal/capture"
	"github.com/miramuse/invoice-studio/internal/extraction"
)

// ErrExtractorNotConfigured is returned when the extraction feature is
// used but no extraction backend was wired at startup.
var ErrExtractorNotConfigured = errors.New("extraction service is not configured")

// Exporter runs the capture-and-export pipeline for a rendered document.
type Exporter interface {
	Export(ctx context.Context, doc capture.Document) (*capture.Artifact, error)
}

// IDGenerator generates unique IDs for export records and line items
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

// defaultIDGenerator generates IDs using UnixNano timestamp
type defaultIDGenerator struct{}

func (g *defaultIDGenerator) Generate() string {
	return fmt.Sprintf("%d", time.Now().UnixNano())
}

// defaultTimeSource provides the current time
type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

// Service owns the live invoice record of the editing session and
// coordinates the render surface, the export pipeline, the extraction
// adapter, and the export history.
type Service struct {
	mu      sync.Mutex
	current InvoiceData

	renderer    *Renderer
	exporter    Exporter
	extractor   extraction.Extractor // nil when not configured
	db          DB
	storage     Storage
	idGenerator IDGenerator
	timeSource  TimeSource
}

// NewService creates a new Service with default ID generator and time
// source. extractor may be nil when the feature is not configured.
func NewService(renderer *Renderer, exporter Exporter, extractor extraction.Extractor, db DB, storage Storage) *Service {
	return NewServiceWithDeps(renderer, exporter, extractor, db, storage, &defaultIDGenerator{}, &defaultTimeSource{})
}

// NewServiceWithDeps creates a new Service with custom dependencies for testing
func NewServiceWithDeps(renderer *Renderer, exporter Exporter, extractor extraction.Extractor, db DB, storage Storage, idGen IDGenerator, timeSrc TimeSource) *Service {
	return &Service{
		current:     DefaultInvoice(timeSrc.Now()),
		renderer:    renderer,
		exporter:    exporter,
		extractor:   extractor,
		db:          db,
		storage:     storage,
		idGenerator: idGen,
		timeSource:  timeSrc,
	}
}

// Current returns a snapshot of the live invoice record.
func (s *Service) Current() InvoiceData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// snapshotLocked copies the record so callers never share the items slice.
func (s *Service) snapshotLocked() InvoiceData {
	snapshot := s.current
	snapshot.Items = make([]LineItem, len(s.current.Items))
	copy(snapshot.Items, s.current.Items)
	return snapshot
}

// Replace installs a complete replacement record. Logo alignment is
// normalized and items without an ID are assigned one.
func (s *Service) Replace(data InvoiceData) InvoiceData {
	data.Normalize()
	for i := range data.Items {
		if data.Items[i].ID == "" {
			data.Items[i].ID = fmt.Sprintf("%s-%d", s.idGenerator.Generate(), i)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = data
	return s.snapshotLocked()
}

// GenerateInvoiceNumber replaces the current invoice number with a fresh
// random one and returns the updated record.
func (s *Service) GenerateInvoiceNumber() InvoiceData {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current.InvoiceNumber = RandomInvoiceNumber()
	return s.snapshotLocked()
}

// SetLogo stores a logo data URI on the current record.
func (s *Service) SetLogo(dataURI string) InvoiceData {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current.LogoURL = dataURI
	return s.snapshotLocked()
}

// ClearLogo removes the logo; the render surface falls back to the
// placeholder mark.
func (s *Service) ClearLogo() InvoiceData {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current.LogoURL = ""
	return s.snapshotLocked()
}

// RenderPreview renders the current record in preview mode for the
// editor's live view.
func (s *Service) RenderPreview() (string, error) {
	return s.renderer.Render(s.Current(), ModePreview)
}

// ExportCurrentInvoice renders the current record in export mode, runs
// the capture pipeline, stores the artifact, and records it in the
// export history. On any failure nothing is stored and the error is
// returned unchanged so callers can classify it.
func (s *Service) ExportCurrentInvoice(ctx context.Context) (*ExportRecord, *capture.Artifact, error) {
	snapshot := s.Current()

	html, err := s.renderer.Render(snapshot, ModeExport)
	if err != nil {
		return nil, nil, err
	}

	artifact, err := s.exporter.Export(ctx, capture.Document{
		HTML:           html,
		InvoiceNumber:  snapshot.InvoiceNumber,
		RecipientEmail: snapshot.Recipient.Email,
	})
	if err != nil {
		slog.Error("Failed to export invoice",
			"invoice_number", snapshot.InvoiceNumber,
			"error", err,
		)
		return nil, nil, err
	}

	id := s.idGenerator.Generate()
	now := s.timeSource.Now()

	savedPath, err := s.storage.Save(fmt.Sprintf("%s_%s", id, artifact.Filename()), artifact.Bytes())
	if err != nil {
		return nil, nil, fmt.Errorf("saving artifact: %w", err)
	}

	record := &ExportRecord{
		ID:            id,
		Filename:      artifact.Filename(),
		InvoiceNumber: snapshot.InvoiceNumber,
		SizeBytes:     artifact.Len(),
		PageHeightMM:  artifact.PageHeightMM(),
		StoragePath:   savedPath,
		CreatedAt:     now,
	}

	if err := s.db.SaveExport(record); err != nil {
		// Keep history and files consistent.
		s.storage.Delete(savedPath)
		return nil, nil, fmt.Errorf("saving export record: %w", err)
	}

	return record, artifact, nil
}

// ListExports returns the export history, newest first.
func (s *Service) ListExports() ([]*ExportRecord, error) {
	records, err := s.db.ListExports()
	if err != nil {
		return nil, fmt.Errorf("listing exports: %w", err)
	}
	return records, nil
}

// DeleteExport removes a past export's record and its stored PDF.
func (s *Service) DeleteExport(id string) error {
	record, err := s.db.GetExport(id)
	if err != nil {
		return fmt.Errorf("getting export for deletion: %w", err)
	}

	if err := s.storage.Delete(record.StoragePath); err != nil {
		// Log error but continue with record deletion
		slog.Warn("Failed to delete artifact file", "path", record.StoragePath, "error", err)
	}

	if err := s.db.DeleteExport(id); err != nil {
		return fmt.Errorf("deleting export record: %w", err)
	}
	return nil
}

// GetExportFile retrieves the stored PDF for a past export.
func (s *Service) GetExportFile(id string) ([]byte, *ExportRecord, error) {
	record, err := s.db.GetExport(id)
	if err != nil {
		return nil, nil, fmt.Errorf("getting export: %w", err)
	}

	data, err := s.storage.Get(record.StoragePath)
	if err != nil {
		return nil, nil, fmt.Errorf("getting export file: %w", err)
	}

	return data, record, nil
}

// ExtractRecipient sends pasted free-form text to the extraction adapter
// and returns the structured billing fields. The caller decides whether
// to apply them to the record.
func (s *Service) ExtractRecipient(ctx context.Context, text string) (*extraction.PartyFields, error) {
	if s.extractor == nil {
		return nil, ErrExtractorNotConfigured
	}

	fields, err := s.extractor.ExtractParty(ctx, text)
	if err != nil {
		slog.Error("Failed to extract billing info", "error", err)
		return nil, fmt.Errorf("extracting billing info: %w", err)
	}
	return fields, nil
}
