package capture

import (
	"bytes"
	"io"
	"os"
)

// Artifact is a finished, downloadable PDF. Its methods never modify the
// underlying data, so they can be called any number of times.
type Artifact struct {
	data         []byte
	filename     string
	pageHeightMM float64
}

// NewArtifact wraps already-assembled PDF bytes. Used by alternative
// Exporter implementations and by tests.
func NewArtifact(data []byte, filename string, pageHeightMM float64) *Artifact {
	return &Artifact{data: data, filename: filename, pageHeightMM: pageHeightMM}
}

// Bytes returns the raw PDF content.
func (a *Artifact) Bytes() []byte {
	return a.data
}

// Filename returns the derived output filename.
func (a *Artifact) Filename() string {
	return a.filename
}

// PageHeightMM returns the computed page height in millimeters. The page
// width is always PageWidthMM.
func (a *Artifact) PageHeightMM() float64 {
	return a.pageHeightMM
}

// Reader returns a [*bytes.Reader] over the PDF content.
func (a *Artifact) Reader() *bytes.Reader {
	return bytes.NewReader(a.data)
}

// WriteTo writes the full PDF content to w. It implements [io.WriterTo].
func (a *Artifact) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(a.data)
	return int64(n), err
}

// WriteToFile writes the PDF to the file at path, creating it if needed.
func (a *Artifact) WriteToFile(path string, perm os.FileMode) error {
	return os.WriteFile(path, a.data, perm)
}

// Len returns the size of the PDF in bytes.
func (a *Artifact) Len() int {
	return len(a.data)
}
