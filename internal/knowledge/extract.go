package knowledge

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// ErrUnsupportedFormat is returned for files the extractor cannot read.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// DocumentReader turns binary documents (PDF) into plain text.
type DocumentReader interface {
	ReadDocument(ctx context.Context, data []byte, mimeType string) (string, error)
}

// Supported reports whether path has an extension the knowledge base ingests.
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown", ".txt", ".text", ".pdf":
		return true
	}
	return false
}

// Extract reads a document and returns its plain text. Markdown is reduced to
// section text, text files are passed through and PDFs go to reader, which may
// be nil when no collaborator is configured.
func Extract(ctx context.Context, path string, reader DocumentReader) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return MarkdownText(data), nil
	case ".txt", ".text":
		return string(data), nil
	case ".pdf":
		if reader == nil {
			return "", fmt.Errorf("%w: %s (PDF needs a configured model)", ErrUnsupportedFormat, filepath.Base(path))
		}
		return reader.ReadDocument(ctx, data, "application/pdf")
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Base(path))
	}
}

var (
	markdownParserInstance goldmark.Markdown
	markdownParserOnce     sync.Once
)

func getMarkdownParser() goldmark.Markdown {
	markdownParserOnce.Do(func() {
		markdownParserInstance = goldmark.New(
			goldmark.WithExtensions(extension.GFM),
		)
	})
	return markdownParserInstance
}

// MarkdownText flattens markdown into plain text. Block elements end up
// separated by blank lines so the splitter can cut on paragraph boundaries.
// Soft line breaks become spaces.
func MarkdownText(source []byte) string {
	doc := getMarkdownParser().Parser().Parse(text.NewReader(source))
	w := &plainWriter{source: source}
	ast.Walk(doc, w.walk)
	return strings.TrimSpace(w.out.String())
}

type plainWriter struct {
	source []byte
	out    strings.Builder
	line   strings.Builder
}

func (w *plainWriter) flush() {
	s := strings.TrimSpace(w.line.String())
	w.line.Reset()
	if s == "" {
		return
	}
	w.out.WriteString(s)
	w.out.WriteString("\n\n")
}

func (w *plainWriter) writeLines(n ast.Node) {
	lines := n.Lines()
	var sb strings.Builder
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		sb.Write(seg.Value(w.source))
	}
	if s := strings.TrimRight(sb.String(), "\n"); s != "" {
		w.out.WriteString(s)
		w.out.WriteString("\n\n")
	}
}

func (w *plainWriter) walk(node ast.Node, entering bool) (ast.WalkStatus, error) {
	switch node.Kind() {
	case ast.KindHeading, ast.KindParagraph, ast.KindTextBlock:
		if !entering {
			w.flush()
		}

	case ast.KindListItem:
		if entering {
			w.flush()
			w.line.WriteString("- ")
		}

	case ast.KindFencedCodeBlock, ast.KindCodeBlock:
		if entering {
			w.flush()
			w.writeLines(node)
		}
		return ast.WalkSkipChildren, nil

	case ast.KindHTMLBlock:
		return ast.WalkSkipChildren, nil

	case ast.KindText:
		if entering {
			t := node.(*ast.Text)
			w.line.Write(t.Segment.Value(w.source))
			if t.SoftLineBreak() {
				w.line.WriteByte(' ')
			}
			if t.HardLineBreak() {
				w.line.WriteByte('\n')
			}
		}

	case ast.KindString:
		if entering {
			w.line.Write(node.(*ast.String).Value)
		}

	case ast.KindCodeSpan:
		if entering {
			for c := node.FirstChild(); c != nil; c = c.NextSibling() {
				if t, ok := c.(*ast.Text); ok {
					w.line.Write(t.Segment.Value(w.source))
				}
			}
			return ast.WalkSkipChildren, nil
		}

	case ast.KindAutoLink:
		if entering {
			w.line.Write(node.(*ast.AutoLink).URL(w.source))
			return ast.WalkSkipChildren, nil
		}

	case extast.KindTableHeader, extast.KindTableRow:
		if !entering {
			w.flush()
		}

	case extast.KindTableCell:
		if entering && w.line.Len() > 0 {
			w.line.WriteString(" | ")
		}
	}

	return ast.WalkContinue, nil
}
