package validate

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/shopaudit/catalog-validator/internal/catalog"
)

// HTMLValidator checks HTML-bearing fields for structural well-formedness:
// balanced tags, anchors with an href, images with a src, and list
// containers with at least one list item.
type HTMLValidator struct{}

// NewHTMLValidator returns an HTML validator.
func NewHTMLValidator() *HTMLValidator {
	return &HTMLValidator{}
}

// Validate checks every HTML field of a row. Empty fields are skipped; all
// violations within a field are reported, not just the first.
func (v *HTMLValidator) Validate(row catalog.Row) []Issue {
	var issues []Issue
	for _, field := range row.HTMLFields {
		if strings.TrimSpace(field.Content) == "" {
			continue
		}
		issues = append(issues, v.validateField(row.SKU, field)...)
	}
	return issues
}

func (v *HTMLValidator) validateField(sku string, field catalog.HTMLField) []Issue {
	var issues []Issue

	// The html package auto-corrects on parse, so structural errors are
	// surfaced by a separate balance check over the raw token stream.
	for _, msg := range checkTagBalance(field.Content) {
		issues = append(issues, newIssue(sku, CodeHTMLStructure,
			fmt.Sprintf("%s: %s", field.Column, msg)))
	}

	doc, err := html.Parse(strings.NewReader(field.Content))
	if err != nil {
		issues = append(issues, newIssue(sku, CodeHTMLStructure,
			fmt.Sprintf("%s: unparseable HTML: %v", field.Column, err)))
		return issues
	}

	walkNodes(doc, func(n *html.Node) {
		switch n.DataAtom {
		case atom.A:
			if attrValue(n, "href") == "" {
				issues = append(issues, newIssue(sku, CodeHTMLMissingAttr,
					fmt.Sprintf("%s: anchor %q has no href", field.Column, nodeText(n))))
			}
		case atom.Img:
			if attrValue(n, "src") == "" {
				issues = append(issues, newIssue(sku, CodeHTMLMissingAttr,
					fmt.Sprintf("%s: image element has no src", field.Column)))
			}
		case atom.Ul, atom.Ol:
			if !hasListItem(n) {
				issues = append(issues, newIssue(sku, CodeHTMLListStructure,
					fmt.Sprintf("%s: <%s> contains no <li> items", field.Column, n.Data)))
			}
		}
	})

	return issues
}

// voidElements never take a closing tag and are excluded from balancing.
var voidElements = map[atom.Atom]bool{
	atom.Area: true, atom.Base: true, atom.Br: true, atom.Col: true,
	atom.Embed: true, atom.Hr: true, atom.Img: true, atom.Input: true,
	atom.Link: true, atom.Meta: true, atom.Source: true, atom.Track: true,
	atom.Wbr: true,
}

// checkTagBalance tokenizes the fragment and reports unclosed or mismatched
// tags. This is deliberately stricter than the parser, which silently
// repairs such input.
func checkTagBalance(content string) []string {
	var msgs []string
	var stack []string

	z := html.NewTokenizer(strings.NewReader(content))
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			for i := len(stack) - 1; i >= 0; i-- {
				msgs = append(msgs, fmt.Sprintf("unclosed <%s> tag", stack[i]))
			}
			return msgs
		case html.StartTagToken:
			name, _ := z.TagName()
			a := atom.Lookup(name)
			if !voidElements[a] {
				stack = append(stack, string(name))
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if len(stack) == 0 {
				msgs = append(msgs, fmt.Sprintf("closing </%s> without matching open tag", tag))
				continue
			}
			if stack[len(stack)-1] != tag {
				msgs = append(msgs, fmt.Sprintf("mismatched </%s>, expected </%s>", tag, stack[len(stack)-1]))
			}
			// Pop to the nearest matching open tag when there is one.
			for i := len(stack) - 1; i >= 0; i-- {
				if stack[i] == tag {
					stack = stack[:i]
					break
				}
			}
		}
	}
}

func walkNodes(n *html.Node, fn func(*html.Node)) {
	if n.Type == html.ElementNode {
		fn(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkNodes(c, fn)
	}
}

func attrValue(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return strings.TrimSpace(a.Val)
		}
	}
	return ""
}

// hasListItem reports whether a list container has at least one direct
// li child.
func hasListItem(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == atom.Li {
			return true
		}
	}
	return false
}

// nodeText returns the trimmed text content of a node, for issue messages.
func nodeText(n *html.Node) string {
	var b strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	text := strings.TrimSpace(b.String())
	if len(text) > 40 {
		text = text[:40] + "..."
	}
	return text
}
