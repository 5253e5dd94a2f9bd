// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"code.sajari.com/docconv/v2"
)

// ErrNotDocx is returned when the archive has no main document part.
var ErrNotDocx = errors.New("not a Word document")

// Parts docconv needs to find the document body.
const (
	contentTypesPart = "[Content_Types].xml"
	documentPart     = "word/document.xml"
)

// DocxReader extracts raw text from .docx files with docconv. Paragraphs,
// tabs and breaks each start a new line.
type DocxReader struct{}

// RawText returns the document text with surrounding blank lines removed.
func (DocxReader) RawText(ctx context.Context, data []byte) (string, error) {
	if err := checkDocx(data); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	text, _, err := docconv.ConvertDocx(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to read Word document: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// checkDocx rejects data that is not a zip holding a main document part.
// docconv reports an archive without one as an empty document.
func checkDocx(data []byte) error {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return fmt.Errorf("failed to open Word document: %w", err)
	}
	var types, doc bool
	for _, f := range zr.File {
		switch f.Name {
		case contentTypesPart:
			types = true
		case documentPart:
			doc = true
		}
	}
	if !types || !doc {
		return ErrNotDocx
	}
	return nil
}
