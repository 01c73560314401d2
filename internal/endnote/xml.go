package endnote

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"scholarbrief/internal/article"
)

// xmlNode is a generic element tree. EndNote exports wrap field text in
// formatting elements at varying depth, so fields are located by element
// name anywhere under a record rather than by a fixed path.
type xmlNode struct {
	XMLName  xml.Name
	Text     string    `xml:",chardata"`
	Children []xmlNode `xml:",any"`
}

// text returns the trimmed character data of the node and its descendants.
func (n *xmlNode) text() string {
	var b strings.Builder
	n.writeText(&b)
	return strings.TrimSpace(b.String())
}

func (n *xmlNode) writeText(b *strings.Builder) {
	b.WriteString(n.Text)
	for i := range n.Children {
		n.Children[i].writeText(b)
	}
}

func findFirst(n *xmlNode, name string) *xmlNode {
	for i := range n.Children {
		c := &n.Children[i]
		if c.XMLName.Local == name {
			return c
		}
		if found := findFirst(c, name); found != nil {
			return found
		}
	}
	return nil
}

func findAll(n *xmlNode, name string, out []*xmlNode) []*xmlNode {
	for i := range n.Children {
		c := &n.Children[i]
		if c.XMLName.Local == name {
			out = append(out, c)
		}
		out = findAll(c, name, out)
	}
	return out
}

// ParseXML reads an EndNote XML export. Records without a title are
// skipped; every other field is optional.
func ParseXML(r io.Reader) ([]article.Article, error) {
	var root xmlNode
	if err := xml.NewDecoder(r).Decode(&root); err != nil {
		return nil, fmt.Errorf("parsing EndNote XML: %w", err)
	}

	var out []article.Article
	for _, rec := range findAll(&root, "record", nil) {
		title := findFirst(rec, "title")
		if title == nil || title.text() == "" {
			continue
		}
		a := article.Article{Title: title.text()}
		for _, au := range findAll(rec, "author", nil) {
			if s := au.text(); s != "" {
				a.Authors = append(a.Authors, s)
			}
		}
		if n := findFirst(rec, "abstract"); n != nil {
			a.Abstract = n.text()
		}
		if n := findFirst(rec, "year"); n != nil {
			a.Year = article.Year(n.text())
		}
		if n := findFirst(rec, "secondary-title"); n != nil {
			a.Journal = n.text()
		}
		if n := findFirst(rec, "electronic-resource-num"); n != nil {
			a.DOI = n.text()
		}
		if n := findFirst(rec, "url"); n != nil {
			a.URL = n.text()
		}
		for _, kw := range findAll(rec, "keyword", nil) {
			if s := kw.text(); s != "" {
				a.Keywords = append(a.Keywords, s)
			}
		}
		out = append(out, a)
	}
	return out, nil
}
