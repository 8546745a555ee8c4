// Package capture converts a rendered invoice document into a fixed-page
// PDF. The pipeline isolates a clone of the document on disk, rasterizes
// it with a headless browser at print resolution, embeds the raster into
// a single page of fixed width, and derives the output filename.
package capture

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/jung-kurt/gofpdf"
)

const (
	// DocumentRootID is the stable element id the pipeline uses to locate
	// the invoice document inside rendered HTML.
	DocumentRootID = "invoice-document"

	// PageWidthMM is the fixed output page width (A4 portrait).
	PageWidthMM = 210.0

	// PageWidthPx is the logical pixel width of the document at
	// 96 DPI-equivalent, matching the render surface.
	PageWidthPx = 794

	// DeviceScale is the device-pixel multiplier used for rasterization.
	DeviceScale = 2.0
)

// Document is the input to a pipeline run: the export-mode HTML of the
// render surface plus the fields needed for filename derivation. It is
// read once at the start of the run; later edits to the live invoice do
// not affect an in-flight export.
type Document struct {
	HTML           string
	InvoiceNumber  string
	RecipientEmail string
}

// Rasterizer turns a document on disk into a PNG image of the invoice
// document root. Implementations must permit cross-origin images and
// force an opaque white background.
type Rasterizer interface {
	Rasterize(ctx context.Context, fileURL string) ([]byte, error)
}

// Pipeline runs the capture-and-export stages. It is not reentrant: a
// single busy flag rejects overlapping runs with ErrExportInProgress.
type Pipeline struct {
	rasterizer Rasterizer
	scratchDir string
	busy       atomic.Bool
}

// NewPipeline creates a Pipeline using the given rasterizer. Scratch
// directories are created under the system temp directory.
func NewPipeline(r Rasterizer) *Pipeline {
	return &Pipeline{rasterizer: r}
}

// NewPipelineWithScratchDir creates a Pipeline whose per-run scratch
// directories live under dir. Used by tests to verify cleanup.
func NewPipelineWithScratchDir(r Rasterizer, dir string) *Pipeline {
	return &Pipeline{rasterizer: r, scratchDir: dir}
}

// Busy reports whether an export is currently running.
func (p *Pipeline) Busy() bool {
	return p.busy.Load()
}

// Export runs the full pipeline for doc and returns the finished
// artifact. Any stage failure aborts the run; the scratch directory is
// removed and the busy flag cleared on every exit path, and no partial
// artifact is ever returned.
func (p *Pipeline) Export(ctx context.Context, doc Document) (*Artifact, error) {
	if !p.busy.CompareAndSwap(false, true) {
		return nil, ErrExportInProgress
	}
	defer p.busy.Store(false)

	// Isolation. The clone must carry the stable document root; without
	// it there is nothing to capture and no scratch state is created.
	if !strings.Contains(doc.HTML, `id="`+DocumentRootID+`"`) {
		return nil, ErrElementNotFound
	}

	dir, err := os.MkdirTemp(p.scratchDir, "invoice-export-*")
	if err != nil {
		return nil, fmt.Errorf("creating scratch directory: %w", err)
	}
	defer os.RemoveAll(dir)

	clonePath := filepath.Join(dir, "invoice.html")
	if err := os.WriteFile(clonePath, []byte(doc.HTML), 0644); err != nil {
		return nil, fmt.Errorf("writing document clone: %w", err)
	}

	abs, err := filepath.Abs(clonePath)
	if err != nil {
		return nil, fmt.Errorf("resolving clone path: %w", err)
	}

	// Settle and rasterize happen inside the rasterizer, which waits for
	// the document root to be ready before capturing.
	raster, err := p.rasterizer.Rasterize(ctx, "file://"+abs)
	if err != nil {
		return nil, &CaptureError{Err: err}
	}

	return p.assemble(raster, doc)
}

// assemble embeds the raster into a single PDF page of fixed width. The
// page height follows the raster's aspect ratio and may exceed the
// standard A4 height; overflowing content stretches the page rather than
// paginating.
func (p *Pipeline) assemble(raster []byte, doc Document) (*Artifact, error) {
	cfg, err := png.DecodeConfig(bytes.NewReader(raster))
	if err != nil {
		return nil, &EncodingError{Err: fmt.Errorf("decoding raster: %w", err)}
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, &EncodingError{Err: fmt.Errorf("empty raster %dx%d", cfg.Width, cfg.Height)}
	}

	heightMM := float64(cfg.Height) * PageWidthMM / float64(cfg.Width)

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           gofpdf.SizeType{Wd: PageWidthMM, Ht: heightMM},
	})
	pdf.AddPage()

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("invoice", opts, bytes.NewReader(raster))
	pdf.ImageOptions("invoice", 0, 0, PageWidthMM, heightMM, false, opts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, &EncodingError{Err: err}
	}

	return &Artifact{
		data:         buf.Bytes(),
		filename:     Filename(doc.RecipientEmail, doc.InvoiceNumber),
		pageHeightMM: heightMM,
	}, nil
}
