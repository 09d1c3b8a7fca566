package preview

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// Parse extracts Open Graph and standard meta tags from an HTML document.
// base is the page URL, used to resolve a relative og:image.
//
//	title       og:title, then <title>
//	description og:description, then description
//	image       og:image
//	site name   og:site_name
func Parse(document, base string) Preview {
	root, err := html.Parse(strings.NewReader(document))
	if err != nil {
		return Preview{}
	}

	m := collect(root)
	p := Preview{
		Title:       firstNonEmpty(m.meta("og:title"), m.title),
		Description: firstNonEmpty(m.meta("og:description"), m.meta("description")),
		Image:       resolve(base, m.meta("og:image")),
		SiteName:    m.meta("og:site_name"),
	}
	return p
}

// metaIndex keeps the first content seen per property and per name.
type metaIndex struct {
	byProperty map[string]string
	byName     map[string]string
	title      string
	titleSeen  bool
}

func (m *metaIndex) meta(key string) string {
	if v, ok := m.byProperty[key]; ok && v != "" {
		return v
	}
	return m.byName[key]
}

func collect(root *html.Node) *metaIndex {
	m := &metaIndex{
		byProperty: make(map[string]string),
		byName:     make(map[string]string),
	}

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "meta":
				m.addMeta(n)
			case "title":
				if !m.titleSeen {
					m.titleSeen = true
					m.title = strings.TrimSpace(textOf(n))
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return m
}

func (m *metaIndex) addMeta(n *html.Node) {
	var property, name, content string
	for _, a := range n.Attr {
		switch strings.ToLower(a.Key) {
		case "property":
			property = strings.ToLower(strings.TrimSpace(a.Val))
		case "name":
			name = strings.ToLower(strings.TrimSpace(a.Val))
		case "content":
			content = strings.TrimSpace(a.Val)
		}
	}
	if property != "" {
		if _, seen := m.byProperty[property]; !seen {
			m.byProperty[property] = content
		}
	}
	if name != "" {
		if _, seen := m.byName[name]; !seen {
			m.byName[name] = content
		}
	}
}

func textOf(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	}
	return b.String()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// resolve makes ref absolute against base. Unparseable input is returned as is.
func resolve(base, ref string) string {
	if ref == "" {
		return ""
	}
	r, err := url.Parse(ref)
	if err != nil || r.IsAbs() {
		return ref
	}
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}
