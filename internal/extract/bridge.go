// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package extract

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/jeranaias/chatdesk/internal/logger"
	"github.com/jeranaias/chatdesk/internal/model"
	"github.com/jeranaias/chatdesk/internal/store"
)

// DefaultLanguage is the OCR language code.
const DefaultLanguage = "eng"

// Texts appended around an upload.
const (
	ReadingPrefix     = "📎 Reading file: "
	ImagePrefix       = "Text extracted from image:\n"
	TextPrefix        = "File contents:\n"
	PDFPrefix         = "PDF contents:\n"
	WordPrefix        = "Word document contents:\n"
	UnsupportedText   = "❌ Unsupported file type."
	ReadFailurePrefix = "❌ Error reading file: "
)

// ErrNotConfigured is returned when the handler for a kind has no
// extractor behind it.
var ErrNotConfigured = errors.New("extractor not configured")

// =============================================================================
// COLLABORATORS
// =============================================================================

// Progress is one OCR status update.
type Progress struct {
	Status   string
	Fraction float64
}

// OCR recognizes text in an image.
type OCR interface {
	Recognize(ctx context.Context, image []byte, mediaType, language string, progress func(Progress)) (string, error)
}

// PDFReader returns the text items of every page, first page first.
type PDFReader interface {
	Pages(ctx context.Context, data []byte) ([][]string, error)
}

// WordReader returns the raw text of a Word document.
type WordReader interface {
	RawText(ctx context.Context, data []byte) (string, error)
}

// =============================================================================
// BRIDGE
// =============================================================================

// Options configures a Bridge. Nil collaborators make their kind fail with
// ErrNotConfigured.
type Options struct {
	OCR      OCR
	PDF      PDFReader
	Word     WordReader
	Language string
}

// Bridge appends uploads and their extracted text to the current
// conversation.
type Bridge struct {
	store *store.Store
	opts  Options
}

// New creates a bridge.
func New(st *store.Store, opts Options) *Bridge {
	if opts.Language == "" {
		opts.Language = DefaultLanguage
	}
	return &Bridge{store: st, opts: opts}
}

// Pending is an upload whose trace message is recorded but whose text has
// not been extracted yet.
type Pending struct {
	ConversationID int64
	File           File
	Kind           Kind
}

// Result describes a finished upload.
type Result struct {
	ConversationID int64
	Kind           Kind

	// Message is the bot message that was appended.
	Message model.Message

	// Err is the extraction failure, if any. It has already been reported
	// to the user through Message.
	Err error
}

// Begin records that f is being read and raises the loading flag. A
// conversation is created when none is selected.
func (b *Bridge) Begin(f File) *Pending {
	kind := f.Kind()
	id := b.store.EnsureCurrent()

	trace := model.UserMessage(ReadingPrefix + f.Name)
	if kind == KindImage && f.Path != "" {
		trace.ImageURL = (&url.URL{Scheme: "file", Path: f.Path}).String()
	}
	b.store.AppendMessage(id, trace)
	b.store.BeginRequest()

	logger.Debug("upload received", "conversation", id, "file", f.Name, "type", f.MediaType, "kind", kind)
	return &Pending{ConversationID: id, File: f, Kind: kind}
}

// Complete extracts the text of p and appends it as a bot message. The
// loading flag is always lowered.
func (b *Bridge) Complete(ctx context.Context, p *Pending) Result {
	defer b.store.EndRequest()

	res := Result{ConversationID: p.ConversationID, Kind: p.Kind}
	text, err := b.Extract(ctx, p.Kind, p.File)
	switch {
	case err != nil:
		logger.Warn("file extraction failed", "file", p.File.Name, "kind", p.Kind, "error", err)
		res.Err = err
		res.Message = model.BotMessage(ReadFailurePrefix + err.Error())
	default:
		res.Message = model.BotMessage(text)
	}

	b.store.AppendMessage(p.ConversationID, res.Message)
	return res
}

// Ingest runs Begin and Complete back to back.
func (b *Bridge) Ingest(ctx context.Context, f File) Result {
	return b.Complete(ctx, b.Begin(f))
}

// Extract returns the bot text for f as handled by kind, prefix included.
// KindUnsupported returns the fixed notice without touching any extractor.
func (b *Bridge) Extract(ctx context.Context, kind Kind, f File) (string, error) {
	switch kind {
	case KindImage:
		return b.extractImage(ctx, f)
	case KindText:
		return TextPrefix + string(f.Data), nil
	case KindPDF:
		return b.extractPDF(ctx, f)
	case KindWord:
		return b.extractWord(ctx, f)
	default:
		return UnsupportedText, nil
	}
}

func (b *Bridge) extractImage(ctx context.Context, f File) (string, error) {
	if b.opts.OCR == nil {
		return "", ErrNotConfigured
	}
	text, err := b.opts.OCR.Recognize(ctx, f.Data, f.MediaType, b.opts.Language, func(p Progress) {
		logger.Debug("ocr progress", "file", f.Name, "status", p.Status, "progress", p.Fraction)
	})
	if err != nil {
		return "", err
	}
	return ImagePrefix + text, nil
}

func (b *Bridge) extractPDF(ctx context.Context, f File) (string, error) {
	if b.opts.PDF == nil {
		return "", ErrNotConfigured
	}
	pages, err := b.opts.PDF.Pages(ctx, f.Data)
	if err != nil {
		return "", err
	}
	return PDFPrefix + JoinPages(pages), nil
}

func (b *Bridge) extractWord(ctx context.Context, f File) (string, error) {
	if b.opts.Word == nil {
		return "", ErrNotConfigured
	}
	text, err := b.opts.Word.RawText(ctx, f.Data)
	if err != nil {
		return "", err
	}
	return WordPrefix + text, nil
}

// JoinPages joins the items of each page with single spaces and ends every
// page with a newline.
func JoinPages(pages [][]string) string {
	var sb strings.Builder
	for _, items := range pages {
		sb.WriteString(strings.Join(items, " "))
		sb.WriteByte('\n')
	}
	return sb.String()
}
