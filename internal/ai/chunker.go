package ai

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

const (
	chunkMaxChars     = 1200
	chunkOverlapChars = 150
	chunkMinChars     = 200
)

// ChunkDocument splits extracted document text into retrieval chunks.
// Headings start a new chunk so regulatory sections stay together; long
// sections are split on paragraph boundaries with a small overlap tail, and
// fragments below chunkMinChars are dropped as noise.
func ChunkDocument(markdown string) []string {
	md := goldmark.New()
	reader := text.NewReader([]byte(markdown))
	doc := md.Parser().Parse(reader)

	var chunks []string
	var current strings.Builder
	var heading string

	flush := func() {
		content := strings.TrimSpace(current.String())
		current.Reset()
		if content == "" {
			return
		}
		if heading != "" {
			content = heading + "\n" + content
		}
		if len(content) < chunkMinChars {
			return
		}
		chunks = append(chunks, content)
	}

	appendPara := func(para string) {
		para = strings.TrimSpace(para)
		if para == "" {
			return
		}
		if current.Len()+len(para) >= chunkMaxChars {
			tail := overlapTail(current.String())
			flush()
			current.WriteString(tail)
		}
		current.WriteString(para)
		current.WriteString("\n\n")
	}

	for node := doc.FirstChild(); node != nil; node = node.NextSibling() {
		switch n := node.(type) {
		case *ast.Heading:
			if n.Level <= 2 {
				flush()
				heading = string(n.Text(reader.Source()))
				continue
			}
			appendPara(string(n.Text(reader.Source())))
		default:
			appendPara(extractText(node, reader.Source()))
		}
	}
	flush()
	return chunks
}

func overlapTail(content string) string {
	content = strings.TrimSpace(content)
	if len(content) <= chunkOverlapChars {
		return ""
	}
	return content[len(content)-chunkOverlapChars:] + "\n\n"
}

func extractText(n ast.Node, source []byte) string {
	var sb strings.Builder
	ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if node.Kind() == ast.KindText {
			sb.Write(node.(*ast.Text).Segment.Value(source))
			sb.WriteByte(' ')
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(sb.String())
}
