// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package extract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		mediaType string
		want      Kind
	}{
		{"image/png", KindImage},
		{"IMAGE/JPEG", KindImage},
		{"text/plain", KindText},
		{"text/plain; charset=utf-8", KindText},
		{"application/pdf", KindPDF},
		{MediaTypeDocx, KindWord},
		{"application/msword", KindUnsupported},
		{"text/html", KindUnsupported},
		{"application/unknown", KindUnsupported},
		{"", KindUnsupported},
	}

	for _, tc := range tests {
		t.Run(tc.mediaType, func(t *testing.T) {
			assert.Equal(t, tc.want, KindOf(tc.mediaType))
		})
	}
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "pdf", KindPDF.String())
	assert.Equal(t, "unsupported", Kind(99).String())
}

func TestMediaTypeForName(t *testing.T) {
	assert.Equal(t, MediaTypeText, MediaTypeForName("notes.TXT"))
	assert.Equal(t, MediaTypePDF, MediaTypeForName("/tmp/report.pdf"))
	assert.Equal(t, MediaTypeDocx, MediaTypeForName("letter.docx"))
	assert.Equal(t, "image/jpeg", MediaTypeForName("photo.jpeg"))
	assert.Equal(t, "application/octet-stream", MediaTypeForName("blob.zzzunknown"))
}

func TestFileFromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hello.txt")
	require.NoError(t, os.WriteFile(path, []byte("hi there"), 0600))

	f, err := FileFromPath(path)

	require.NoError(t, err)
	assert.Equal(t, "hello.txt", f.Name)
	assert.Equal(t, MediaTypeText, f.MediaType)
	assert.Equal(t, KindText, f.Kind())
	assert.Equal(t, "hi there", string(f.Data))
	assert.True(t, filepath.IsAbs(f.Path))
}

func TestFileFromPath_Missing(t *testing.T) {
	_, err := FileFromPath(filepath.Join(t.TempDir(), "nope.pdf"))
	assert.Error(t, err)
}
