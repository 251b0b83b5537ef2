// Package markdown renders post descriptions to HTML and plain-text excerpts.
package markdown

import (
	"bytes"
	stdhtml "html"
	"html/template"
	"io"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"unicode"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	md "github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/ast"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

const (
	chromaStyle        = "github"
	lastGoodBreakRatio = 0.8
)

var (
	codeFencePattern = regexp.MustCompile("(?s)```.*?```")
	imagePattern     = regexp.MustCompile(`!\[.*?\]\(.*?\)`)
	linkPattern      = regexp.MustCompile(`\[(.*?)\]\(.*?\)`)
	boldItalic       = regexp.MustCompile(`\*\*\*(.*?)\*\*\*`)
	boldAsterisk     = regexp.MustCompile(`\*\*(.*?)\*\*`)
	italicAsterisk   = regexp.MustCompile(`\*(.*?)\*`)
	strikethrough    = regexp.MustCompile(`~~(.*?)~~`)
	boldUnderscore   = regexp.MustCompile(`__([^_\s](?:[^_\n]*?[^_\s])?)__`)
	italicUnderscore = regexp.MustCompile(`_([^_\s](?:[^_\n]*?[^_\s])?)_`)
	headingPattern   = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	quotePattern     = regexp.MustCompile(`(?m)^\s*>\s*`)
	inlineCode       = regexp.MustCompile("`(.*?)`")
	htmlTagPattern   = regexp.MustCompile(`<[^>]*>`)
)

// ToHTML renders markdown to HTML. Raw HTML in the input is dropped, fenced
// code blocks are highlighted with chroma classes and links open in a new tab.
func ToHTML(input string) template.HTML {
	if strings.TrimSpace(input) == "" {
		return template.HTML("")
	}

	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	doc := p.Parse([]byte(input))
	externalLinks(doc)

	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{
		Flags:          mdhtml.CommonFlags | mdhtml.SkipHTML,
		RenderNodeHook: renderNodeHook,
	})

	return template.HTML(md.Render(doc, renderer))
}

// Excerpt strips markdown syntax and truncates to maxChars runes, preferring
// a word boundary near the end.
func Excerpt(input string, maxChars int) string {
	if maxChars < 1 {
		return ""
	}

	text := codeFencePattern.ReplaceAllString(input, " ")
	text = imagePattern.ReplaceAllString(text, " ")
	text = linkPattern.ReplaceAllString(text, "$1")
	text = boldItalic.ReplaceAllString(text, "$1")
	text = boldAsterisk.ReplaceAllString(text, "$1")
	text = italicAsterisk.ReplaceAllString(text, "$1")
	text = strikethrough.ReplaceAllString(text, "$1")
	text = stripUnderscores(text, boldUnderscore)
	text = stripUnderscores(text, italicUnderscore)
	text = headingPattern.ReplaceAllString(text, "")
	text = quotePattern.ReplaceAllString(text, "")
	text = inlineCode.ReplaceAllString(text, "$1")
	text = htmlTagPattern.ReplaceAllString(text, "")
	text = strings.Join(strings.Fields(text), " ")

	runes := []rune(text)
	if len(runes) <= maxChars {
		return text
	}

	cut := maxChars
	minBreak := int(float64(maxChars) * lastGoodBreakRatio)
	for i := maxChars - 1; i >= minBreak; i-- {
		if unicode.IsSpace(runes[i]) {
			cut = i
			break
		}
	}
	return strings.TrimSpace(string(runes[:cut])) + "..."
}

var (
	cssOnce sync.Once
	css     template.CSS
)

// ChromaCSS returns the stylesheet for highlighted code blocks.
func ChromaCSS() template.CSS {
	cssOnce.Do(func() {
		var buf bytes.Buffer
		formatter := chromahtml.New(chromahtml.WithClasses(true))
		if err := formatter.WriteCSS(&buf, styles.Get(chromaStyle)); err == nil {
			css = template.CSS(buf.String())
		}
	})
	return css
}

// stripUnderscores removes underscore emphasis delimiters only where they
// sit on word boundaries, so identifiers like my_var_name survive.
func stripUnderscores(text string, re *regexp.Regexp) string {
	matches := re.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text
	}

	var b strings.Builder
	last := 0
	for _, m := range matches {
		start, end := m[0], m[1]
		if isWordByteAt(text, start-1) || isWordByteAt(text, end) {
			continue
		}
		b.WriteString(text[last:start])
		b.WriteString(text[m[2]:m[3]])
		last = end
	}
	b.WriteString(text[last:])
	return b.String()
}

func isWordByteAt(text string, i int) bool {
	if i < 0 || i >= len(text) {
		return false
	}
	c := text[i]
	return c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= 0x80
}

// externalLinks neutralises links and images whose destination is not
// http, https, mailto or relative, then marks the remaining links to open in
// a new tab.
func externalLinks(doc ast.Node) {
	ast.WalkFunc(doc, func(node ast.Node, entering bool) ast.WalkStatus {
		if !entering {
			return ast.GoToNext
		}
		switch n := node.(type) {
		case *ast.Link:
			if !isSafeDestination(n.Destination) {
				n.Destination = []byte("#")
				return ast.GoToNext
			}
			n.AdditionalAttributes = append(n.AdditionalAttributes,
				`target="_blank"`, `rel="noopener noreferrer"`)
		case *ast.Image:
			if !isSafeDestination(n.Destination) {
				n.Destination = nil
			}
		}
		return ast.GoToNext
	})
}

// isSafeDestination decodes entities and drops the characters browsers ignore
// inside URLs before looking at the scheme.
func isSafeDestination(dest []byte) bool {
	raw := stdhtml.UnescapeString(string(dest))
	raw = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, raw)
	raw = strings.TrimSpace(raw)

	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	switch strings.ToLower(u.Scheme) {
	case "", "http", "https", "mailto":
		return true
	default:
		return false
	}
}

func renderNodeHook(w io.Writer, node ast.Node, entering bool) (ast.WalkStatus, bool) {
	if !entering {
		return ast.GoToNext, false
	}
	block, ok := node.(*ast.CodeBlock)
	if !ok {
		return ast.GoToNext, false
	}
	renderCodeBlock(w, block)
	return ast.SkipChildren, true
}

func renderCodeBlock(w io.Writer, block *ast.CodeBlock) {
	code := string(block.Literal)
	iterator, err := pickLexer(string(block.Info), code).Tokenise(nil, code)
	if err == nil {
		formatter := chromahtml.New(chromahtml.WithClasses(true))
		if err = formatter.Format(w, styles.Get(chromaStyle), iterator); err == nil {
			return
		}
	}
	_, _ = io.WriteString(w, `<pre class="chroma"><code>`)
	_, _ = io.WriteString(w, stdhtml.EscapeString(code))
	_, _ = io.WriteString(w, `</code></pre>`)
}

func pickLexer(info, code string) chroma.Lexer {
	if fields := strings.Fields(info); len(fields) > 0 {
		if lexer := lexers.Get(strings.ToLower(fields[0])); lexer != nil {
			return lexer
		}
	}
	if lexer := lexers.Analyse(code); lexer != nil {
		return lexer
	}
	return lexers.Fallback
}
