package confluence

import (
	"fmt"
	"html"
	"strings"
)

// ConvertToStorage converts a documentation file's content to Confluence
// storage-format HTML based on its extension. Unknown formats are wrapped
// in a code block.
func ConvertToStorage(content, extension string) string {
	switch strings.ToLower(extension) {
	case ".md":
		return markdownToStorage(content)
	case ".adoc":
		return asciidocToStorage(content)
	default:
		return "<pre><code>" + html.EscapeString(content) + "</code></pre>"
	}
}

// markdownToStorage handles the subset of Markdown the docs actually use:
// headings, bullet lists, fenced code blocks, bold, and paragraphs.
func markdownToStorage(content string) string {
	var out []string
	inCode := false

	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "```") {
			if inCode {
				out = append(out, "</code></pre>")
			} else {
				out = append(out, "<pre><code>")
			}
			inCode = !inCode
			continue
		}
		if inCode {
			out = append(out, html.EscapeString(line))
			continue
		}

		switch {
		case strings.HasPrefix(line, "#### "):
			out = append(out, "<h4>"+html.EscapeString(line[5:])+"</h4>")
		case strings.HasPrefix(line, "### "):
			out = append(out, "<h3>"+html.EscapeString(line[4:])+"</h3>")
		case strings.HasPrefix(line, "## "):
			out = append(out, "<h2>"+html.EscapeString(line[3:])+"</h2>")
		case strings.HasPrefix(line, "# "):
			out = append(out, "<h1>"+html.EscapeString(line[2:])+"</h1>")
		case strings.HasPrefix(trimmed, "* "), strings.HasPrefix(trimmed, "- "):
			out = append(out, "<li>"+inlineMarkdown(trimmed[2:])+"</li>")
		case trimmed == "":
			out = append(out, "<br/>")
		default:
			out = append(out, "<p>"+inlineMarkdown(line)+"</p>")
		}
	}

	if inCode {
		out = append(out, "</code></pre>")
	}
	return strings.Join(out, "\n")
}

// inlineMarkdown escapes HTML and converts **bold** pairs
func inlineMarkdown(text string) string {
	escaped := html.EscapeString(text)
	for strings.Count(escaped, "**") >= 2 {
		escaped = strings.Replace(escaped, "**", "<strong>", 1)
		escaped = strings.Replace(escaped, "**", "</strong>", 1)
	}
	return escaped
}

// asciidocToStorage handles AsciiDoc headings, lists, and ---- code fences
func asciidocToStorage(content string) string {
	var out []string
	inCode := false

	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "----") {
			if inCode {
				out = append(out, "</code></pre>")
			} else {
				out = append(out, "<pre><code>")
			}
			inCode = !inCode
			continue
		}
		if inCode {
			out = append(out, html.EscapeString(line))
			continue
		}

		switch {
		case strings.HasPrefix(line, "==== "):
			out = append(out, "<h4>"+html.EscapeString(line[5:])+"</h4>")
		case strings.HasPrefix(line, "=== "):
			out = append(out, "<h3>"+html.EscapeString(line[4:])+"</h3>")
		case strings.HasPrefix(line, "== "):
			out = append(out, "<h2>"+html.EscapeString(line[3:])+"</h2>")
		case strings.HasPrefix(line, "= "):
			out = append(out, "<h1>"+html.EscapeString(line[2:])+"</h1>")
		case strings.HasPrefix(trimmed, "* "), strings.HasPrefix(trimmed, "- "):
			out = append(out, "<li>"+html.EscapeString(trimmed[2:])+"</li>")
		case trimmed == "":
			out = append(out, "<br/>")
		default:
			out = append(out, "<p>"+html.EscapeString(line)+"</p>")
		}
	}

	if inCode {
		out = append(out, "</code></pre>")
	}
	return strings.Join(out, "\n")
}

// ParentPageContent renders the index page that sits above uploaded docs
func ParentPageContent(title, source string, fileCount int, updated string) string {
	return fmt.Sprintf(`<h1>%s</h1>
<p><strong>Last Updated:</strong> %s</p>
<p><strong>Source:</strong> %s</p>
<p><strong>Files processed:</strong> %d</p>
<hr/>
<p>Each document is available as a child page below.</p>`,
		html.EscapeString(title), updated, html.EscapeString(source), fileCount)
}
