// Package normalizer converts registrar catalog feeds into schedb documents.
package normalizer

import (
	"encoding/xml"
	"fmt"
	"io"

	"golang.org/x/net/html/charset"

	"schedconv/internal/models"
)

// Processor handles decoding, transformation and encoding of one feed.
type Processor struct {
	transformer *Transformer
	indent      bool
}

// NewProcessor creates a new processor instance.
func NewProcessor() *Processor {
	return NewProcessorWithDeps(NewTransformer(), true)
}

// NewProcessorWithDeps creates a processor around the given transformer.
func NewProcessorWithDeps(transformer *Transformer, indent bool) *Processor {
	return &Processor{
		transformer: transformer,
		indent:      indent,
	}
}

// Process reads a registrar feed from r and writes the schedb document to w.
func (p *Processor) Process(r io.Reader, w io.Writer) (*Result, error) {
	// 1. Decode the feed
	catalog, err := Decode(r)
	if err != nil {
		return nil, err
	}

	// 2. Build the schedb tree
	result, err := p.transformer.Transform(catalog)
	if err != nil {
		return nil, fmt.Errorf("transformation failed: %w", err)
	}

	// 3. Serialize
	if err := Encode(w, result.Document, p.indent); err != nil {
		return nil, err
	}

	return result, nil
}

// Decode parses a registrar feed. Feeds declared in a legacy encoding such
// as ISO-8859-1 are transcoded to UTF-8.
func Decode(r io.Reader) (*models.Catalog, error) {
	decoder := xml.NewDecoder(r)
	decoder.CharsetReader = charset.NewReaderLabel

	var catalog models.Catalog
	if err := decoder.Decode(&catalog); err != nil {
		return nil, fmt.Errorf("failed to decode feed: %w", err)
	}

	return &catalog, nil
}

// Encode writes doc with an XML declaration.
func Encode(w io.Writer, doc *models.Schedb, indent bool) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("failed to write XML header: %w", err)
	}

	encoder := xml.NewEncoder(w)
	if indent {
		encoder.Indent("", "  ")
	}

	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode schedb: %w", err)
	}

	if err := encoder.Close(); err != nil {
		return fmt.Errorf("failed to flush schedb: %w", err)
	}

	if _, err := io.WriteString(w, "\n"); err != nil {
		return fmt.Errorf("failed to write trailing newline: %w", err)
	}

	return nil
}

// DecodeSchedb parses a previously generated schedb document.
func DecodeSchedb(r io.Reader) (*models.Schedb, error) {
	var doc models.Schedb
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode schedb: %w", err)
	}

	return &doc, nil
}
