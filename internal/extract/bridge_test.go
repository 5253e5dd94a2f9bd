// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package extract

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/chatdesk/internal/model"
	"github.com/jeranaias/chatdesk/internal/store"
)

// =============================================================================
// FAKES
// =============================================================================

type fakeOCR struct {
	text     string
	err      error
	calls    int
	language string
	events   int
}

func (f *fakeOCR) Recognize(_ context.Context, _ []byte, _, language string, progress func(Progress)) (string, error) {
	f.calls++
	f.language = language
	progress(Progress{Status: "recognizing", Fraction: 0.5})
	f.events++
	return f.text, f.err
}

type fakePDF struct {
	pages [][]string
	err   error
	calls int
}

func (f *fakePDF) Pages(context.Context, []byte) ([][]string, error) {
	f.calls++
	return f.pages, f.err
}

type fakeWord struct {
	text  string
	err   error
	calls int
}

func (f *fakeWord) RawText(context.Context, []byte) (string, error) {
	f.calls++
	return f.text, f.err
}

type fixture struct {
	store  *store.Store
	bridge *Bridge
	ocr    *fakeOCR
	pdf    *fakePDF
	word   *fakeWord
}

func newFixture() *fixture {
	fx := &fixture{
		store: store.New(store.Options{}),
		ocr:   &fakeOCR{text: "SCANNED"},
		pdf:   &fakePDF{pages: [][]string{{"Hello", "world"}, {"Page", "two"}}},
		word:  &fakeWord{text: "Para one\n\nPara two\n\n"},
	}
	fx.bridge = New(fx.store, Options{OCR: fx.ocr, PDF: fx.pdf, Word: fx.word})
	return fx
}

func (fx *fixture) messages(t *testing.T, id int64) []model.Message {
	t.Helper()
	conv, ok := fx.store.Conversation(id)
	require.True(t, ok)
	return conv.Messages
}

func (fx *fixture) extractorCalls() int {
	return fx.ocr.calls + fx.pdf.calls + fx.word.calls
}

// =============================================================================
// DISPATCH BY KIND
// =============================================================================

func TestIngest_Text(t *testing.T) {
	fx := newFixture()

	res := fx.bridge.Ingest(context.Background(), File{Name: "a.txt", MediaType: "text/plain", Data: []byte("raw body")})

	msgs := fx.messages(t, res.ConversationID)
	require.Len(t, msgs, 2)
	assert.Equal(t, model.UserMessage("📎 Reading file: a.txt"), msgs[0])
	assert.Equal(t, model.BotMessage("File contents:\nraw body"), msgs[1])
	assert.Equal(t, 0, fx.extractorCalls())
	assert.False(t, fx.store.Snapshot().Loading())
}

func TestIngest_PDF(t *testing.T) {
	fx := newFixture()

	res := fx.bridge.Ingest(context.Background(), File{Name: "r.pdf", MediaType: "application/pdf"})

	assert.Equal(t, KindPDF, res.Kind)
	assert.Equal(t, "PDF contents:\nHello world\nPage two\n", res.Message.Text)
}

func TestIngest_Word(t *testing.T) {
	fx := newFixture()

	res := fx.bridge.Ingest(context.Background(), File{Name: "w.docx", MediaType: MediaTypeDocx})

	assert.Equal(t, "Word document contents:\nPara one\n\nPara two\n\n", res.Message.Text)
}

func TestIngest_ImageUsesEnglishOCR(t *testing.T) {
	fx := newFixture()

	res := fx.bridge.Ingest(context.Background(), File{Name: "scan.png", MediaType: "image/png", Path: "/tmp/scan.png"})

	assert.Equal(t, "Text extracted from image:\nSCANNED", res.Message.Text)
	assert.Equal(t, "eng", fx.ocr.language)
	assert.Equal(t, 1, fx.ocr.events)

	msgs := fx.messages(t, res.ConversationID)
	assert.Equal(t, "file:///tmp/scan.png", msgs[0].ImageURL)
}

func TestIngest_UnsupportedSkipsExtractors(t *testing.T) {
	fx := newFixture()

	res := fx.bridge.Ingest(context.Background(), File{Name: "x.bin", MediaType: "application/unknown"})

	assert.Equal(t, KindUnsupported, res.Kind)
	assert.Equal(t, UnsupportedText, res.Message.Text)
	assert.NoError(t, res.Err)
	assert.Equal(t, 0, fx.extractorCalls())
}

// =============================================================================
// FAILURES
// =============================================================================

func TestIngest_ExtractorFailureBecomesMessage(t *testing.T) {
	fx := newFixture()
	fx.pdf.err = errors.New("corrupt xref table")

	res := fx.bridge.Ingest(context.Background(), File{Name: "bad.pdf", MediaType: "application/pdf"})

	require.Error(t, res.Err)
	assert.Equal(t, "❌ Error reading file: corrupt xref table", res.Message.Text)
	assert.False(t, fx.store.Snapshot().Loading())

	// The session stays usable.
	again := fx.bridge.Ingest(context.Background(), File{Name: "ok.txt", MediaType: "text/plain", Data: []byte("fine")})
	assert.NoError(t, again.Err)
	assert.Len(t, fx.messages(t, again.ConversationID), 4)
}

func TestIngest_MissingCollaborator(t *testing.T) {
	st := store.New(store.Options{})
	b := New(st, Options{})

	res := b.Ingest(context.Background(), File{Name: "p.png", MediaType: "image/png"})

	assert.ErrorIs(t, res.Err, ErrNotConfigured)
	assert.True(t, strings.HasPrefix(res.Message.Text, ReadFailurePrefix))
}

func TestIngest_CreatesConversationLazily(t *testing.T) {
	fx := newFixture()
	require.Empty(t, fx.store.Snapshot().Conversations)

	res := fx.bridge.Ingest(context.Background(), File{Name: "a.txt", MediaType: "text/plain"})

	st := fx.store.Snapshot()
	assert.Len(t, st.Conversations, 1)
	assert.Equal(t, res.ConversationID, st.CurrentID)
}

func TestBegin_RaisesLoadingUntilComplete(t *testing.T) {
	fx := newFixture()

	p := fx.bridge.Begin(File{Name: "a.txt", MediaType: "text/plain"})
	assert.True(t, fx.store.Snapshot().Loading())
	assert.Len(t, fx.messages(t, p.ConversationID), 1)

	fx.bridge.Complete(context.Background(), p)
	assert.False(t, fx.store.Snapshot().Loading())
}

// =============================================================================
// HELPERS
// =============================================================================

func TestJoinPages(t *testing.T) {
	assert.Equal(t, "", JoinPages(nil))
	assert.Equal(t, "\n", JoinPages([][]string{nil}))
	assert.Equal(t, "a b\nc\n", JoinPages([][]string{{"a", "b"}, {"c"}}))
}

func TestSplitItems(t *testing.T) {
	assert.Equal(t, []string{"first line", "second"}, splitItems("  first line \n\n second\n"))
	assert.Nil(t, splitItems("   \n"))
}
