package forum

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var (
	multiNewlinePattern = regexp.MustCompile(`\n{3,}`)
	multiSpacePattern   = regexp.MustCompile(`[ \t]+`)
	tagPattern          = regexp.MustCompile(`<[^>]*>`)
)

const (
	// maxMarkupDepth bounds recursion on pathological nesting.
	maxMarkupDepth = 64

	// indentMark stands in for list indentation until the final cleanup,
	// which would otherwise trim it.
	indentMark = "\x1f"
)

// ToMarkdown converts a post's rendered HTML back to markdown so the
// history handed to a model carries no tags.
func ToMarkdown(fragment string) string {
	if strings.TrimSpace(fragment) == "" {
		return ""
	}
	root := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), root)
	if err != nil {
		return cleanMarkdown(escapeText(html.UnescapeString(tagPattern.ReplaceAllString(fragment, " "))))
	}

	var sb strings.Builder
	for _, n := range nodes {
		writeMarkdown(n, &sb, 0)
	}
	return strings.ReplaceAll(cleanMarkdown(sb.String()), indentMark, " ")
}

func writeMarkdown(n *html.Node, sb *strings.Builder, depth int) {
	if depth > maxMarkupDepth {
		return
	}

	switch n.Type {
	case html.TextNode:
		sb.WriteString(escapeText(collapseSpace(strings.ReplaceAll(n.Data, indentMark, ""))))
		return
	case html.ElementNode:
	default:
		writeChildren(n, sb, depth)
		return
	}

	switch n.Data {
	case "script", "style", "noscript", "iframe", "svg":
		return
	case "h1", "h2", "h3", "h4", "h5", "h6":
		level, _ := strconv.Atoi(n.Data[1:])
		sb.WriteString("\n\n" + strings.Repeat("#", level) + " ")
		writeChildren(n, sb, depth)
		sb.WriteString("\n\n")
	case "p", "div":
		sb.WriteString("\n\n")
		writeChildren(n, sb, depth)
		sb.WriteString("\n\n")
	case "br":
		sb.WriteString("\n")
	case "hr":
		sb.WriteString("\n\n---\n\n")
	case "strong", "b":
		wrap(n, sb, depth, "**")
	case "em", "i":
		wrap(n, sb, depth, "*")
	case "del", "s":
		wrap(n, sb, depth, "~~")
	case "code":
		sb.WriteString("`" + textContent(n) + "`")
	case "pre":
		sb.WriteString("\n\n```\n" + strings.Trim(textContent(n), "\n") + "\n```\n\n")
	case "blockquote":
		var inner strings.Builder
		writeChildren(n, &inner, depth)
		sb.WriteString("\n\n")
		for _, line := range strings.Split(cleanMarkdown(inner.String()), "\n") {
			sb.WriteString("> " + line + "\n")
		}
		sb.WriteString("\n")
	case "ul", "ol":
		if n.Parent != nil && n.Parent.Type == html.ElementNode && n.Parent.Data == "li" {
			sb.WriteString("\n")
		} else {
			sb.WriteString("\n\n")
		}
		index := 0
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode || c.Data != "li" {
				continue
			}
			index++
			marker := "- "
			if n.Data == "ol" {
				marker = strconv.Itoa(index) + ". "
			}
			writeListItem(c, sb, depth, marker)
		}
		sb.WriteString("\n")
	case "a":
		var inner strings.Builder
		writeChildren(n, &inner, depth)
		text := strings.TrimSpace(inner.String())
		href := getAttr(n, "href")
		switch {
		case href == "" || strings.HasPrefix(href, "#") || href == text:
			sb.WriteString(text)
		case text == "":
			sb.WriteString(href)
		default:
			sb.WriteString("[" + text + "](" + href + ")")
		}
	case "img":
		if src := getAttr(n, "src"); src != "" {
			sb.WriteString("![" + getAttr(n, "alt") + "](" + src + ")")
		}
	default:
		writeChildren(n, sb, depth)
	}
}

// writeListItem puts the item's first line after the marker and indents the
// rest, nested lists included, by the marker width.
func writeListItem(li *html.Node, sb *strings.Builder, depth int, marker string) {
	var inner strings.Builder
	writeChildren(li, &inner, depth+1)
	lines := strings.Split(cleanMarkdown(inner.String()), "\n")
	first, rest := lines[0], lines[1:]
	if strings.HasPrefix(first, "```") {
		first, rest = "", lines
	}
	sb.WriteString(marker + first + "\n")
	indent := strings.Repeat(indentMark, len(marker))
	for _, line := range rest {
		if line != "" {
			sb.WriteString(indent + line)
		}
		sb.WriteString("\n")
	}
}

func writeChildren(n *html.Node, sb *strings.Builder, depth int) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeMarkdown(c, sb, depth+1)
	}
}

func wrap(n *html.Node, sb *strings.Builder, depth int, marker string) {
	var inner strings.Builder
	writeChildren(n, &inner, depth)
	text := strings.TrimSpace(inner.String())
	if text == "" {
		return
	}
	sb.WriteString(marker + text + marker)
}

// textContent concatenates text verbatim, for code where whitespace matters.
func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

// escapeText keeps decoded text from reading as markup.
func escapeText(s string) string {
	return strings.ReplaceAll(s, "<", `\<`)
}

func collapseSpace(s string) string {
	return multiSpacePattern.ReplaceAllString(strings.ReplaceAll(s, "\n", " "), " ")
}

func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// cleanMarkdown trims lines outside code fences and caps blank runs at one.
func cleanMarkdown(s string) string {
	lines := strings.Split(s, "\n")
	inFence := false
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimLeft(strings.TrimSpace(line), indentMark), "```") {
			inFence = !inFence
			lines[i] = strings.TrimSpace(line)
			continue
		}
		if !inFence {
			lines[i] = strings.TrimSpace(line)
		}
	}
	s = strings.Join(lines, "\n")
	s = multiNewlinePattern.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
