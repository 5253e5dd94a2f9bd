// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package extract

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
)

// MaxFileSize caps how much of an upload is read into memory.
const MaxFileSize = 50 * 1024 * 1024

// ErrFileTooLarge is returned for uploads above MaxFileSize.
var ErrFileTooLarge = errors.New("file too large")

// File is one upload.
type File struct {
	// Name is the base name shown to the user.
	Name string

	// MediaType is the declared type that selects the handler.
	MediaType string

	Data []byte

	// Path is the location on disk, empty for in-memory uploads.
	Path string
}

// Kind returns the handler for the file's declared type.
func (f File) Kind() Kind {
	return KindOf(f.MediaType)
}

// extensionTypes covers the upload types whose mapping must not depend on
// the host's mime database.
var extensionTypes = map[string]string{
	".txt":  MediaTypeText,
	".text": MediaTypeText,
	".md":   MediaTypeText,
	".pdf":  MediaTypePDF,
	".docx": MediaTypeDocx,
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".webp": "image/webp",
	".tif":  "image/tiff",
	".tiff": "image/tiff",
}

// UploadExtensions lists the extensions the file picker offers.
func UploadExtensions() []string {
	return []string{".txt", ".pdf", ".docx", ".png", ".jpg", ".jpeg", ".gif", ".bmp", ".webp"}
}

// MediaTypeForName guesses the media type from a file name. Unknown
// extensions yield "application/octet-stream".
func MediaTypeForName(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if mt, ok := extensionTypes[ext]; ok {
		return mt
	}
	if mt := mime.TypeByExtension(ext); mt != "" {
		return normalizeMediaType(mt)
	}
	return "application/octet-stream"
}

// FileFromPath reads an upload from disk and declares its type from the
// extension.
func FileFromPath(path string) (File, error) {
	f, err := os.Open(path)
	if err != nil {
		return File{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxFileSize+1))
	if err != nil {
		return File{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(data) > MaxFileSize {
		return File{}, fmt.Errorf("%w: %s", ErrFileTooLarge, path)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return File{
		Name:      filepath.Base(path),
		MediaType: MediaTypeForName(path),
		Data:      data,
		Path:      abs,
	}, nil
}
