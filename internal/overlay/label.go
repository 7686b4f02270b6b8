package overlay

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// LabelHTML renders the label body the map widget places inside the label
// box. The identifier is escaped; it comes straight from the uploaded file.
func LabelHTML(text string, fontSizePt int) string {
	div := &html.Node{
		Type:     html.ElementNode,
		Data:     "div",
		DataAtom: atom.Div,
		Attr: []html.Attribute{{
			Key: "style",
			Val: fmt.Sprintf("font-size: %dpt; font-weight: bold;", fontSizePt),
		}},
	}
	div.AppendChild(&html.Node{Type: html.TextNode, Data: text})

	var b strings.Builder
	if err := html.Render(&b, div); err != nil {
		return html.EscapeString(text)
	}
	return b.String()
}
