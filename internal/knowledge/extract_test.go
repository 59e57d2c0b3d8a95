package knowledge

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleMarkdown = "# Gateway Procedures\n\n" +
	"The AFTN/AMHS gateway\nconverts addresses.\n\n" +
	"- Check PRMD\n- Verify `OU1`\n\n" +
	"```\nx := 1\n```\n\n" +
	"| Code | Country |\n|------|---------|\n| HE | Egypt |\n"

func TestMarkdownText(t *testing.T) {
	got := MarkdownText([]byte(sampleMarkdown))

	assert.Contains(t, got, "Gateway Procedures\n\n")
	assert.Contains(t, got, "The AFTN/AMHS gateway converts addresses.")
	assert.Contains(t, got, "- Check PRMD")
	assert.Contains(t, got, "- Verify OU1")
	assert.Contains(t, got, "x := 1")
	assert.Contains(t, got, "HE | Egypt")
	assert.NotContains(t, got, "#")
	assert.NotContains(t, got, "```")
}

type stubReader struct {
	text string
	mime string
}

func (r *stubReader) ReadDocument(ctx context.Context, data []byte, mimeType string) (string, error) {
	r.mime = mimeType
	return r.text, nil
}

func TestExtract(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(content), 0644))
		return p
	}
	ctx := context.Background()

	got, err := Extract(ctx, write("notes.txt", "plain *text*"), nil)
	require.NoError(t, err)
	assert.Equal(t, "plain *text*", got)

	got, err = Extract(ctx, write("guide.md", "## Title\n\nBody"), nil)
	require.NoError(t, err)
	assert.Equal(t, "Title\n\nBody", got)

	pdf := write("manual.pdf", "%PDF-1.4")
	_, err = Extract(ctx, pdf, nil)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	reader := &stubReader{text: "extracted"}
	got, err = Extract(ctx, pdf, reader)
	require.NoError(t, err)
	assert.Equal(t, "extracted", got)
	assert.Equal(t, "application/pdf", reader.mime)

	_, err = Extract(ctx, write("image.png", "x"), nil)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = Extract(ctx, filepath.Join(dir, "missing.md"), nil)
	assert.Error(t, err)
}

func TestSupported(t *testing.T) {
	assert.True(t, Supported("a/B.MD"))
	assert.True(t, Supported("x.pdf"))
	assert.True(t, Supported("x.txt"))
	assert.False(t, Supported("x.docx"))
	assert.False(t, Supported("README"))
}

func TestHashChunk(t *testing.T) {
	a := HashChunk("AMHS")
	assert.Len(t, a, 64)
	assert.Equal(t, a, HashChunk("AMHS"))
	assert.NotEqual(t, a, HashChunk("AFTN"))
}
