package view

import (
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var (
	mdBold   = color.New(color.Bold)
	mdItalic = color.New(color.Italic)
	mdCode   = color.New(color.FgCyan)
	mdLink   = color.New(color.FgBlue, color.Underline)
	mdDim    = color.New(color.Faint)
)

// RenderMarkdown renders a task description's restricted markdown subset to
// terminal text: paragraphs, emphasis, code, lists and links. Raw HTML is
// skipped. A link's destination is shown only for http/https URLs; for any
// other scheme only the link text appears, so script- and data-scheme
// payloads never become something a terminal would hyperlink.
func RenderMarkdown(description string) string {
	source := []byte(description)
	doc := goldmark.New().Parser().Parse(text.NewReader(source))

	r := &mdRenderer{source: source}
	r.blocks(doc, "")
	return strings.TrimRight(r.out.String(), "\n")
}

// LinkAllowed reports whether a markdown link destination may be rendered
// as a live link.
func LinkAllowed(dest string) bool {
	lower := strings.ToLower(strings.TrimSpace(dest))
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

type mdRenderer struct {
	source []byte
	out    strings.Builder
}

func (r *mdRenderer) blocks(parent ast.Node, indent string) {
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		switch b := n.(type) {
		case *ast.Paragraph, *ast.TextBlock:
			r.out.WriteString(indent + r.inline(n) + "\n")
		case *ast.Heading:
			r.out.WriteString(indent + mdBold.Sprint(r.inline(n)) + "\n")
		case *ast.List:
			r.list(b, indent)
		case *ast.FencedCodeBlock:
			r.codeLines(b, indent)
		case *ast.CodeBlock:
			r.codeLines(b, indent)
		case *ast.Blockquote:
			r.blocks(b, indent+"> ")
		case *ast.ThematicBreak:
			r.out.WriteString(indent + mdDim.Sprint("---") + "\n")
		case *ast.HTMLBlock:
			// skipped, matching skipHtml rendering
		default:
			r.out.WriteString(indent + r.inline(n) + "\n")
		}
	}
}

func (r *mdRenderer) list(l *ast.List, indent string) {
	num := l.Start
	for item := l.FirstChild(); item != nil; item = item.NextSibling() {
		marker := "- "
		if l.IsOrdered() {
			marker = strconv.Itoa(num) + ". "
			num++
		}
		sub := &mdRenderer{source: r.source}
		sub.blocks(item, "")
		lines := strings.Split(strings.TrimRight(sub.out.String(), "\n"), "\n")
		for i, line := range lines {
			if i == 0 {
				r.out.WriteString(indent + marker + line + "\n")
				continue
			}
			r.out.WriteString(indent + strings.Repeat(" ", len(marker)) + line + "\n")
		}
	}
}

func (r *mdRenderer) codeLines(n interface {
	ast.Node
	Lines() *text.Segments
}, indent string) {
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		line := strings.TrimRight(string(seg.Value(r.source)), "\n")
		r.out.WriteString(indent + "    " + mdCode.Sprint(line) + "\n")
	}
}

func (r *mdRenderer) inline(parent ast.Node) string {
	var b strings.Builder
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		switch i := n.(type) {
		case *ast.Text:
			b.Write(i.Segment.Value(r.source))
			if i.SoftLineBreak() || i.HardLineBreak() {
				b.WriteString(" ")
			}
		case *ast.String:
			b.Write(i.Value)
		case *ast.CodeSpan:
			b.WriteString(mdCode.Sprint(r.inline(i)))
		case *ast.Emphasis:
			if i.Level >= 2 {
				b.WriteString(mdBold.Sprint(r.inline(i)))
			} else {
				b.WriteString(mdItalic.Sprint(r.inline(i)))
			}
		case *ast.Link:
			label := r.inline(i)
			dest := string(i.Destination)
			if LinkAllowed(dest) {
				b.WriteString(label + " " + mdLink.Sprint("("+dest+")"))
			} else {
				b.WriteString(label)
			}
		case *ast.AutoLink:
			dest := string(i.URL(r.source))
			if LinkAllowed(dest) {
				b.WriteString(mdLink.Sprint(dest))
			} else {
				b.WriteString(string(i.Label(r.source)))
			}
		case *ast.Image:
			// alt text only
			b.WriteString(r.inline(i))
		case *ast.RawHTML:
			// skipped
		default:
			b.WriteString(r.inline(n))
		}
	}
	return b.String()
}
