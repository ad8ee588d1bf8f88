package blob

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// Minimal valid PNG header plus IHDR chunk, enough for MIME detection.
var pngBytes = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a,
	0x00, 0x00, 0x00, 0x0d, 0x49, 0x48, 0x44, 0x52,
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x02, 0x00, 0x00, 0x00,
}

func TestResolveImageRefPassesThroughRemoteURLs(t *testing.T) {
	for _, ref := range []string{
		"http://example.com/a.png",
		"https://example.com/a.png",
		"data:image/png;base64,AAAA",
	} {
		resolved, err := ResolveImageRef(" " + ref + " ")
		require.NoError(t, err)
		require.Equal(t, ref, resolved)
	}
}

func TestResolveImageRefRejectsEmpty(t *testing.T) {
	_, err := ResolveImageRef("   ")
	require.Error(t, err)
}

func TestDataURIFromFileDetectsMIME(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pixel.png")
	require.NoError(t, os.WriteFile(path, pngBytes, 0o644))

	uri, err := DataURIFromFile(path)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(uri, "data:image/png;base64,"))

	encoded := strings.TrimPrefix(uri, "data:image/png;base64,")
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	require.NoError(t, err)
	require.Equal(t, pngBytes, decoded)
}

func TestDataURIFromFileFallsBackToJPEGForUnknownContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blob.bin")
	require.NoError(t, os.WriteFile(path, []byte("not an image"), 0o644))

	uri, err := DataURIFromFile(path)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(uri, "data:image/jpeg;base64,"))
}

func TestDataURIFromFileMissingFile(t *testing.T) {
	_, err := DataURIFromFile(filepath.Join(t.TempDir(), "missing.png"))
	require.Error(t, err)
}

func TestSplitImageRefs(t *testing.T) {
	require.Equal(t,
		[]string{"a.png", "b.png"},
		SplitImageRefs(" a.png , , b.png ,"),
	)
	require.Empty(t, SplitImageRefs("  ,  "))
}
