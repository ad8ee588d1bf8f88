// Package blob resolves homework image references into a form the completion
// service accepts: remote URLs pass through unchanged, local file paths are
// inlined as base64 data URIs.
package blob

import (
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// ResolveImageRef normalises a single image reference. http(s) URLs and data
// URIs are returned as-is; anything else is treated as a local file path.
func ResolveImageRef(ref string) (string, error) {
	trimmed := strings.TrimSpace(ref)
	if trimmed == "" {
		return "", fmt.Errorf("empty image reference")
	}

	if strings.HasPrefix(trimmed, "http://") || strings.HasPrefix(trimmed, "https://") || strings.HasPrefix(trimmed, "data:") {
		return trimmed, nil
	}

	return DataURIFromFile(trimmed)
}

// DataURIFromFile reads a local image file and encodes it as a data URI,
// detecting the MIME type from the file content.
func DataURIFromFile(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read image file: %w", err)
	}

	mime := mimetype.Detect(content)
	mimeString := mime.String()
	if !strings.HasPrefix(mimeString, "image/") {
		mimeString = "image/jpeg"
	}

	encoded := base64.StdEncoding.EncodeToString(content)
	return fmt.Sprintf("data:%s;base64,%s", mimeString, encoded), nil
}

// SplitImageRefs parses a comma-joined image reference list, dropping empties.
func SplitImageRefs(joined string) []string {
	parts := strings.Split(joined, ",")
	refs := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			refs = append(refs, trimmed)
		}
	}
	return refs
}
