// Package render turns bot replies into HTML for the web page.
package render

import (
	"html/template"

	"github.com/russross/blackfriday"
)

const (
	htmlFlags = blackfriday.HTML_USE_XHTML |
		blackfriday.HTML_SKIP_HTML |
		blackfriday.HTML_SKIP_STYLE |
		blackfriday.HTML_SKIP_IMAGES |
		blackfriday.HTML_SAFELINK |
		blackfriday.HTML_NOFOLLOW_LINKS |
		blackfriday.HTML_NOREFERRER_LINKS |
		blackfriday.HTML_HREF_TARGET_BLANK

	extensions = blackfriday.EXTENSION_NO_INTRA_EMPHASIS |
		blackfriday.EXTENSION_TABLES |
		blackfriday.EXTENSION_FENCED_CODE |
		blackfriday.EXTENSION_AUTOLINK |
		blackfriday.EXTENSION_STRIKETHROUGH |
		blackfriday.EXTENSION_SPACE_HEADERS |
		blackfriday.EXTENSION_HARD_LINE_BREAK
)

// Markdown renders src as HTML. Raw HTML and images in src are dropped, so
// the result is safe to embed in a page.
func Markdown(src string) template.HTML {
	renderer := blackfriday.HtmlRenderer(htmlFlags, "", "")
	return template.HTML(blackfriday.Markdown([]byte(src), renderer, extensions))
}
