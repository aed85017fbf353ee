package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spetersoncode/mediagen"
)

// readReference loads an image file as a data URI.
func readReference(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read reference: %w", err)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("read reference: %s is empty", path)
	}
	return mediagen.EncodeDataURI(http.DetectContentType(data), data), nil
}

// extensionFor maps an image mime type to a file extension.
func extensionFor(mimeType string) string {
	switch mimeType {
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".png"
	}
}

func defaultOutput(mimeType string, t time.Time) string {
	return "image-" + t.Format("20060102-150405") + extensionFor(mimeType)
}
