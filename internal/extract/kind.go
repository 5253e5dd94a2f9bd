// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package extract

import (
	"mime"
	"strings"
)

// Media types with a dedicated handler.
const (
	MediaTypeText = "text/plain"
	MediaTypePDF  = "application/pdf"
	MediaTypeDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// Kind is the closed set of upload handlers.
type Kind int

const (
	KindUnsupported Kind = iota
	KindImage
	KindText
	KindPDF
	KindWord
)

// String returns the kind name used in logs.
func (k Kind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindText:
		return "text"
	case KindPDF:
		return "pdf"
	case KindWord:
		return "word"
	default:
		return "unsupported"
	}
}

// KindOf maps a declared media type to its handler. Parameters such as
// charset are ignored and matching is case-insensitive.
func KindOf(mediaType string) Kind {
	mt := normalizeMediaType(mediaType)
	switch {
	case strings.HasPrefix(mt, "image/"):
		return KindImage
	case mt == MediaTypeText:
		return KindText
	case mt == MediaTypePDF:
		return KindPDF
	case mt == MediaTypeDocx:
		return KindWord
	default:
		return KindUnsupported
	}
}

func normalizeMediaType(mediaType string) string {
	if parsed, _, err := mime.ParseMediaType(mediaType); err == nil {
		return parsed
	}
	return strings.ToLower(strings.TrimSpace(mediaType))
}
