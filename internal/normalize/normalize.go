// Package normalize turns uploaded model files into the canonical document.
package normalize

import (
	"bytes"
	"context"
	"path"
	"strings"

	"go.uber.org/zap"

	"bim-review-service/internal/conversion"
	"bim-review-service/internal/extraction"
	"bim-review-service/internal/models"
)

// Format is the detected source format.
type Format string

const (
	FormatCanonical Format = "canonical"
	FormatExchange  Format = "ifc"
)

var primaryExtensions = map[string]bool{".bim": true, ".json": true, ".ifc": true}

// Result is a successful import. Failures lists what was skipped on the way.
type Result struct {
	Document models.Document
	Format   Format
	Source   string
	Failures []Failure
}

type Normalizer struct {
	decoder conversion.Decoder
	log     *zap.Logger
}

func NewNormalizer(decoder conversion.Decoder, log *zap.Logger) *Normalizer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Normalizer{decoder: decoder, log: log}
}

// Normalize detects the format of raw and converts it. Zip archives must hold
// exactly one model file.
func (n *Normalizer) Normalize(ctx context.Context, raw []byte, fileName string) (*Result, error) {
	source := fileName
	if extraction.IsZip(raw) {
		entry, err := n.unwrapArchive(ctx, raw, fileName)
		if err != nil {
			return nil, err
		}
		raw, source = entry.Data, entry.Name
	}

	var (
		res *Result
		err error
	)
	if isExchangeFormat(raw, source) {
		res, err = n.fromExchange(ctx, raw, fileName)
	} else {
		res, err = n.fromCanonical(raw, fileName)
	}
	if err != nil {
		return nil, err
	}
	res.Source = source

	n.log.Info("model normalized",
		zap.String("file", fileName),
		zap.String("source", source),
		zap.String("format", string(res.Format)),
		zap.Int("meshes", len(res.Document.Meshes)),
		zap.Int("elements", len(res.Document.Elements)),
		zap.Int("skipped", len(res.Failures)))
	return res, nil
}

// NormalizeCanonical accepts only the canonical JSON format.
func (n *Normalizer) NormalizeCanonical(raw []byte, fileName string) (*Result, error) {
	if isExchangeFormat(raw, fileName) || extraction.IsZip(raw) {
		return nil, importError(fileName, "only canonical model files can be loaded here", nil)
	}
	res, err := n.fromCanonical(raw, fileName)
	if err != nil {
		return nil, err
	}
	res.Source = fileName
	return res, nil
}

func (n *Normalizer) unwrapArchive(ctx context.Context, raw []byte, fileName string) (extraction.File, error) {
	name := fileName
	if !strings.EqualFold(path.Ext(name), ".zip") {
		name += ".zip"
	}
	files, err := extraction.ExtractArchive(ctx, name, raw)
	if err != nil {
		return extraction.File{}, importError(fileName, "unreadable archive", err)
	}
	var primary []extraction.File
	for _, f := range files {
		if primaryExtensions[f.Ext()] {
			primary = append(primary, f)
		}
	}
	if len(primary) != 1 {
		return extraction.File{}, importError(fileName, "archive must contain exactly one model file", nil)
	}
	return primary[0], nil
}

func isExchangeFormat(raw []byte, fileName string) bool {
	if strings.EqualFold(path.Ext(fileName), ".ifc") {
		return true
	}
	head := bytes.TrimLeft(raw, " \t\r\n\uFEFF")
	return bytes.HasPrefix(head, []byte("ISO-10303-21"))
}
