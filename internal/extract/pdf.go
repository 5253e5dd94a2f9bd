// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/gen2brain/go-fitz"
)

// FitzPDF reads the text layer of PDF documents with MuPDF.
type FitzPDF struct{}

// Pages returns the non-blank text lines of every page as its items.
func (FitzPDF) Pages(ctx context.Context, data []byte) ([][]string, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF document: %w", err)
	}
	defer func() {
		_ = doc.Close()
	}()

	pages := make([][]string, 0, doc.NumPage())
	for i := 0; i < doc.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text, err := doc.Text(i)
		if err != nil {
			return nil, fmt.Errorf("failed to read page %d: %w", i+1, err)
		}
		pages = append(pages, splitItems(text))
	}
	return pages, nil
}

// splitItems breaks page text into trimmed non-empty lines.
func splitItems(text string) []string {
	var items []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			items = append(items, line)
		}
	}
	return items
}
