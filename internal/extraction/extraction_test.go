package extraction

import (
	"archive/zip"
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func zipOf(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestExtractArchiveSkipsSystemFiles(t *testing.T) {
	data := zipOf(t, map[string]string{
		"tower/model.bim":            `{"meshes":[]}`,
		"tower/.DS_Store":            "junk",
		"__MACOSX/tower/._model.bim": "fork",
		"tower/notes/readme.txt":     "hello",
	})
	require.True(t, IsZip(data))

	files, err := ExtractArchive(context.Background(), "tower.zip", data)
	require.NoError(t, err)

	names := map[string]string{}
	for _, f := range files {
		names[f.Name] = string(f.Data)
	}
	require.Equal(t, map[string]string{
		"tower/model.bim":        `{"meshes":[]}`,
		"tower/notes/readme.txt": "hello",
	}, names)
}

func TestIsZip(t *testing.T) {
	require.False(t, IsZip([]byte("ISO-10303-21;")))
	require.False(t, IsZip([]byte("PK")))
}

func TestFileExt(t *testing.T) {
	require.Equal(t, ".ifc", File{Name: "a/B.IFC"}.Ext())
}
