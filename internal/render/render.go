// Package render converts article fragments between HTML, markdown and
// plain text. All functions are pure.
package render

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

var (
	whitespace   = regexp.MustCompile(`\s+`)
	blockTagLead = regexp.MustCompile(`(?i)^\s*<(p|h[1-6]|ol|ul|div|details|table|blockquote)[\s>]`)
	anyTag       = regexp.MustCompile(`<[^>]+>`)
)

// MarkdownToHTML converts markdown to HTML.
func MarkdownToHTML(md string) string {
	if strings.TrimSpace(md) == "" {
		return ""
	}

	mdParser := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags,
	})

	return strings.TrimSpace(string(markdown.ToHTML([]byte(md), mdParser, renderer)))
}

// EnsureHTML returns fragment unchanged when it already starts with a block
// tag and converts it from markdown otherwise.
func EnsureHTML(fragment string) string {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" || blockTagLead.MatchString(fragment) {
		return fragment
	}
	return MarkdownToHTML(fragment)
}

// StripTags removes all markup from s without decoding entities.
func StripTags(s string) string {
	return anyTag.ReplaceAllString(s, "")
}

// HTMLToMarkdown converts an HTML document or fragment to markdown.
// Headings, paragraphs, emphasis, links and lists are kept; other markup is
// reduced to its text.
func HTMLToMarkdown(src string) string {
	return convert(src, false)
}

// HTMLToText converts HTML into plain text blocks separated by blank lines.
func HTMLToText(src string) string {
	return convert(src, true)
}

// WordCount counts whitespace-separated words in the text of an HTML string.
func WordCount(src string) int {
	return len(strings.Fields(HTMLToText(src)))
}

func convert(src string, plain bool) string {
	if strings.TrimSpace(src) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(src))
	if err != nil {
		return strings.TrimSpace(StripTags(src))
	}
	c := &converter{plain: plain}
	c.walk(doc.Find("body"))
	c.flush()
	return strings.Join(c.blocks, "\n\n")
}

type converter struct {
	plain   bool
	blocks  []string
	pending strings.Builder
}

func (c *converter) add(block string) {
	if block = strings.TrimSpace(block); block != "" {
		c.blocks = append(c.blocks, block)
	}
}

func (c *converter) flush() {
	c.add(c.pending.String())
	c.pending.Reset()
}

func (c *converter) walk(s *goquery.Selection) {
	s.Contents().Each(func(_ int, n *goquery.Selection) {
		switch name := goquery.NodeName(n); name {
		case "h1", "h2", "h3", "h4", "h5", "h6":
			c.flush()
			text := strings.TrimSpace(c.inline(n))
			if text == "" {
				return
			}
			if c.plain {
				c.add(text)
				return
			}
			c.add(strings.Repeat("#", int(name[1]-'0')) + " " + text)
		case "p", "summary":
			c.flush()
			c.add(c.inline(n))
		case "ul", "ol":
			c.flush()
			c.list(n, name == "ol")
		case "div", "section", "article", "main", "details", "blockquote", "table", "tbody", "tr", "body", "html":
			c.flush()
			c.walk(n)
			c.flush()
		case "script", "style", "head", "#comment":
		default:
			c.pending.WriteString(c.inlineNode(n))
		}
	})
}

func (c *converter) list(s *goquery.Selection, ordered bool) {
	var lines []string
	s.ChildrenFiltered("li").Each(func(i int, li *goquery.Selection) {
		text := strings.TrimSpace(c.inline(li))
		if text == "" {
			return
		}
		switch {
		case c.plain:
			lines = append(lines, text)
		case ordered:
			lines = append(lines, strconv.Itoa(len(lines)+1)+". "+text)
		default:
			lines = append(lines, "- "+text)
		}
	})
	c.add(strings.Join(lines, "\n"))
}

func (c *converter) inline(s *goquery.Selection) string {
	var b strings.Builder
	s.Contents().Each(func(_ int, n *goquery.Selection) {
		b.WriteString(c.inlineNode(n))
	})
	return whitespace.ReplaceAllString(b.String(), " ")
}

func (c *converter) inlineNode(n *goquery.Selection) string {
	switch goquery.NodeName(n) {
	case "#text":
		return n.Text()
	case "#comment", "script", "style":
		return ""
	case "br":
		return " "
	case "strong", "b":
		return c.wrap(n, "**")
	case "em", "i":
		return c.wrap(n, "*")
	case "a":
		text := strings.TrimSpace(c.inline(n))
		href, _ := n.Attr("href")
		if c.plain || href == "" || text == "" {
			return text
		}
		return "[" + text + "](" + href + ")"
	default:
		return c.inline(n)
	}
}

func (c *converter) wrap(n *goquery.Selection, marker string) string {
	text := strings.TrimSpace(c.inline(n))
	if text == "" || c.plain {
		return text
	}
	return marker + text + marker
}
