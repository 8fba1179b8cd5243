package extraction

import (
	"bytes"
	"context"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/mholt/archives"
	"github.com/pkg/errors"
)

// File is one regular file read out of an archive.
type File struct {
	Name string
	Data []byte
}

// Ext returns the lower-case extension of the file name.
func (f File) Ext() string {
	return strings.ToLower(path.Ext(f.Name))
}

// IsZip reports whether data starts with a zip local file header.
func IsZip(data []byte) bool {
	return len(data) >= 4 && bytes.Equal(data[:4], []byte("PK\x03\x04"))
}

// ExtractArchive reads every regular file of an in-memory archive. The name
// is only used to identify the format. System files such as .DS_Store and
// macOS resource forks are skipped.
func ExtractArchive(ctx context.Context, name string, data []byte) ([]File, error) {
	fsys, err := archives.FileSystem(ctx, name, bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrapf(err, "open archive %s", name)
	}

	var files []File
	err = fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != "." && shouldIgnoreFile(d.Name()) {
				return fs.SkipDir
			}
			return nil
		}
		if shouldIgnoreFile(d.Name()) {
			return nil
		}
		reader, err := fsys.Open(p)
		if err != nil {
			return err
		}
		defer reader.Close()

		content, err := io.ReadAll(reader)
		if err != nil {
			return err
		}
		files = append(files, File{Name: p, Data: content})
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "read archive %s", name)
	}
	return files, nil
}

// shouldIgnoreFile reports system and hidden files that never carry model data.
func shouldIgnoreFile(filename string) bool {
	switch {
	case filename == "", strings.HasSuffix(filename, "/"):
		return true
	case strings.HasPrefix(filename, "._"), strings.HasPrefix(filename, "."):
		return true
	case filename == "__MACOSX":
		return true
	case strings.ToLower(filename) == "thumbs.db":
		return true
	}
	return false
}
