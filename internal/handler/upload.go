package handler

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
)

// maxUploadBytes caps the in-memory portion of a multipart parse; larger
// bodies spill to temp files.
const maxUploadBytes = 10 << 20

// saveUpload writes an uploaded image into dir under its original filename
// and returns the public URL path it will be served from. A re-upload with
// the same filename overwrites the previous file.
func saveUpload(dir string, file multipart.File, header *multipart.FileHeader) (string, error) {
	// Base strips any directory components a hostile client put in the
	// filename, keeping the write inside dir.
	name := filepath.Base(header.Filename)
	if name == "" || name == "." || name == string(filepath.Separator) || strings.ContainsAny(name, "\x00") {
		return "", fmt.Errorf("handler: unusable upload filename %q", header.Filename)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("handler: creating upload dir: %w", err)
	}

	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", fmt.Errorf("handler: creating upload file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		return "", fmt.Errorf("handler: writing upload: %w", err)
	}

	return "/static/uploads/" + name, nil
}
