// Package report builds the issue report archive: a report.xml listing one
// topic per commented element, plus the decoded comment snapshots under images/.
package report

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/xml"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mholt/archives"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"bim-review-service/internal/federation"
	"bim-review-service/internal/models"
)

const (
	ReportFileName = "report.xml"
	ImagesDir      = "images"

	unknownModel   = "Unknown"
	unknownElement = "Unknown Element"
)

// Source is a snapshot of the review state taken by the caller. The exporter
// never touches live session state.
type Source struct {
	Models  []*models.Model
	Threads []federation.Thread
}

// Archive is a finished report.
type Archive struct {
	Name   string
	Data   []byte
	Topics int
	Images int
}

type Exporter struct {
	ProjectName string
	ArchiveName string

	now func() time.Time
	log *zap.Logger
}

func NewExporter(projectName string, log *zap.Logger) *Exporter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Exporter{
		ProjectName: projectName,
		ArchiveName: "review-report.zip",
		now:         time.Now,
		log:         log,
	}
}

// Export renders src into a zip archive.
func (e *Exporter) Export(ctx context.Context, src Source) (*Archive, error) {
	if len(src.Threads) == 0 {
		return nil, &ExportError{Err: ErrNothingToExport}
	}

	dir, err := os.MkdirTemp("", "review-report-*")
	if err != nil {
		return nil, &ExportError{Err: errors.Wrap(err, "create staging dir")}
	}
	defer os.RemoveAll(dir)
	imagesPath := filepath.Join(dir, ImagesDir)
	if err := os.Mkdir(imagesPath, 0o755); err != nil {
		return nil, &ExportError{Err: errors.Wrap(err, "create images dir")}
	}

	doc := bcfReport{
		Project: bcfProject{
			Name:       e.ProjectName,
			ExportDate: e.now().UTC().Format(time.RFC3339),
		},
	}
	images := 0
	used := make(map[string]bool)

	for _, thread := range src.Threads {
		topic := bcfTopic{
			GUID:      thread.GUID,
			Title:     topicTitle(src.Models, thread.GUID),
			ElementID: thread.GUID,
		}
		for _, c := range thread.Comments {
			topic.Comments = append(topic.Comments, bcfComment{
				ID:     c.ID,
				Author: c.Author,
				Date:   c.Date,
				Text:   c.Text,
			})
			if c.Snapshot == "" {
				continue
			}
			data, ext, err := decodeSnapshot(c.Snapshot)
			if err != nil {
				e.log.Warn("skipping snapshot",
					zap.String("guid", thread.GUID),
					zap.String("comment", c.ID),
					zap.Error(err))
				continue
			}
			name := imageName(c.ID, ext, used)
			onDisk := filepath.Join(imagesPath, path.Base(name))
			if rel, err := filepath.Rel(imagesPath, onDisk); err != nil || rel != path.Base(name) {
				return nil, &ExportError{Err: errors.Errorf("image name %q escapes the archive", name)}
			}
			if err := os.WriteFile(onDisk, data, 0o644); err != nil {
				return nil, &ExportError{Err: errors.Wrapf(err, "write %s", name)}
			}
			topic.Snapshots = append(topic.Snapshots, name)
			images++
		}
		doc.Topics = append(doc.Topics, topic)
	}

	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, &ExportError{Err: errors.Wrap(err, "encode report.xml")}
	}
	reportPath := filepath.Join(dir, ReportFileName)
	if err := os.WriteFile(reportPath, append([]byte(xml.Header), body...), 0o644); err != nil {
		return nil, &ExportError{Err: errors.Wrap(err, "write report.xml")}
	}

	files, err := archives.FilesFromDisk(ctx, nil, map[string]string{
		reportPath: ReportFileName,
		imagesPath: ImagesDir,
	})
	if err != nil {
		return nil, &ExportError{Err: errors.Wrap(err, "collect report files")}
	}
	var buf bytes.Buffer
	if err := (archives.Zip{}).Archive(ctx, &buf, files); err != nil {
		return nil, &ExportError{Err: errors.Wrap(err, "write zip")}
	}

	e.log.Info("report exported",
		zap.Int("topics", len(doc.Topics)),
		zap.Int("images", images),
		zap.Int("bytes", buf.Len()))
	return &Archive{
		Name:   e.ArchiveName,
		Data:   buf.Bytes(),
		Topics: len(doc.Topics),
		Images: images,
	}, nil
}

// imageName builds a unique images/ entry for a comment id. Characters
// outside [A-Za-z0-9_-] are replaced, so ids read from model files can never
// name a path outside the images directory.
func imageName(commentID, ext string, used map[string]bool) string {
	var b strings.Builder
	for _, r := range commentID {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	base := "snap_" + b.String()
	name := base + ext
	for n := 2; used[name]; n++ {
		name = base + "_" + strconv.Itoa(n) + ext
	}
	used[name] = true
	return ImagesDir + "/" + name
}

// topicTitle names the element from the first model, in registration order,
// that contains guid.
func topicTitle(ms []*models.Model, guid string) string {
	modelName, elementName := unknownModel, unknownElement
	for _, m := range ms {
		el, ok := m.FindElement(guid)
		if !ok {
			continue
		}
		modelName = m.FileName
		if name, ok := el.Info.Get("Name"); ok && name != "" {
			elementName = name
		} else if el.Type != "" {
			elementName = el.Type
		}
		break
	}
	return "Issue on " + elementName + " (" + modelName + ")"
}

// decodeSnapshot strips a data-URI header and returns the payload and file extension.
func decodeSnapshot(snapshot string) ([]byte, string, error) {
	ext := ".png"
	payload := snapshot
	if header, rest, ok := strings.Cut(snapshot, ","); ok {
		payload = rest
		if mime, _, _ := strings.Cut(strings.TrimPrefix(header, "data:"), ";"); strings.HasPrefix(mime, "image/") {
			switch sub := strings.TrimPrefix(mime, "image/"); sub {
			case "jpeg", "jpg":
				ext = ".jpg"
			case "png", "":
			default:
				if isToken(sub) {
					ext = "." + sub
				}
			}
		}
	}
	if payload == "" {
		return nil, "", errors.New("empty snapshot payload")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", errors.Wrap(err, "decode snapshot")
	}
	return data, ext, nil
}

func isToken(s string) bool {
	for _, r := range s {
		if !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '+' || r == '-') {
			return false
		}
	}
	return s != ""
}
