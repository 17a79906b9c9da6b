package canonical

import (
	"cmp"
	"slices"
	"strings"

	"github.com/antchfx/xmlquery"
)

const (
	xmlnsPrefix    = "xmlns"
	xmlPrefix      = "xml"
	xmlNamespace   = "http://www.w3.org/XML/1998/namespace"
	fragmentHolder = "canonical-fragment"
)

var (
	textEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		"\r", "&#xD;",
	)
	attrEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		`"`, "&quot;",
		"\t", "&#x9;",
		"\n", "&#xA;",
		"\r", "&#xD;",
	)
)

// Node returns the canonical form of a single node.
func Node(n *xmlquery.Node) (string, error) {
	return Nodes([]*xmlquery.Node{n})
}

// Nodes returns the canonical form of an ordered node collection: the
// canonical serialization of every member, in order, reparsed as a fragment
// and serialized again with insignificant whitespace removed.
func Nodes(nodes []*xmlquery.Node) (string, error) {
	var b strings.Builder
	for _, n := range nodes {
		serialize(&b, n)
	}
	return Normalize(b.String())
}

// Normalize parses text as an XML fragment and returns its canonical form.
func Normalize(text string) (string, error) {
	nodes, err := Fragment(text)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, n := range nodes {
		serialize(&b, n)
	}
	return b.String(), nil
}

// serialize writes n without comments or XML declarations. Namespace
// declarations are emitted where a name first uses them, sorted by prefix,
// followed by the attributes sorted by namespace URI and local name.
func serialize(b *strings.Builder, n *xmlquery.Node) {
	writeNode(b, n, nil)
}

func writeNode(b *strings.Builder, n *xmlquery.Node, sc *scope) {
	switch n.Type {
	case xmlquery.DocumentNode:
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == xmlquery.ElementNode {
				writeNode(b, c, sc)
			}
		}
	case xmlquery.ElementNode:
		writeElement(b, n, sc)
	case xmlquery.TextNode, xmlquery.CharDataNode:
		b.WriteString(textEscaper.Replace(n.Data))
	case xmlquery.AttributeNode:
		b.WriteString(textEscaper.Replace(textOf(n)))
	}
}

func writeElement(b *strings.Builder, n *xmlquery.Node, sc *scope) {
	var decls []binding
	declare := func(prefix, uri string) {
		if prefix == xmlPrefix {
			return
		}
		if current, _ := sc.lookup(prefix); current == uri {
			return
		}
		for _, d := range decls {
			if d.prefix == prefix {
				return
			}
		}
		decls = append(decls, binding{prefix: prefix, uri: uri})
	}

	declare(n.Prefix, n.NamespaceURI)
	attrs := make([]attribute, 0, len(n.Attr))
	for _, a := range n.Attr {
		if isNamespaceDecl(a) {
			continue
		}
		attr := newAttribute(a)
		if attr.prefix != "" {
			declare(attr.prefix, attr.uri)
		}
		attrs = append(attrs, attr)
	}

	slices.SortFunc(decls, func(x, y binding) int {
		return cmp.Compare(x.prefix, y.prefix)
	})
	slices.SortStableFunc(attrs, func(x, y attribute) int {
		return cmp.Or(cmp.Compare(x.uri, y.uri), cmp.Compare(x.local, y.local))
	})

	name := qualify(n.Prefix, n.Data)
	b.WriteByte('<')
	b.WriteString(name)
	for _, d := range decls {
		b.WriteByte(' ')
		b.WriteString(xmlnsPrefix)
		if d.prefix != "" {
			b.WriteByte(':')
			b.WriteString(d.prefix)
		}
		b.WriteString(`="`)
		b.WriteString(attrEscaper.Replace(d.uri))
		b.WriteByte('"')
		sc = &scope{parent: sc, binding: d}
	}
	for _, a := range attrs {
		b.WriteByte(' ')
		b.WriteString(qualify(a.prefix, a.local))
		b.WriteString(`="`)
		b.WriteString(attrEscaper.Replace(a.value))
		b.WriteByte('"')
	}
	b.WriteByte('>')
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeNode(b, c, sc)
	}
	b.WriteString("</")
	b.WriteString(name)
	b.WriteByte('>')
}

type binding struct {
	prefix string
	uri    string
}

// scope is the chain of namespace bindings declared by output ancestors.
type scope struct {
	parent *scope
	binding
}

func (s *scope) lookup(prefix string) (string, bool) {
	for ; s != nil; s = s.parent {
		if s.prefix == prefix {
			return s.uri, true
		}
	}
	return "", false
}

type attribute struct {
	prefix string
	local  string
	uri    string
	value  string
}

func newAttribute(a xmlquery.Attr) attribute {
	attr := attribute{
		prefix: a.Name.Space,
		local:  a.Name.Local,
		uri:    a.NamespaceURI,
		value:  a.Value,
	}
	if attr.uri == xmlNamespace || attr.prefix == xmlNamespace {
		attr.prefix = xmlPrefix
		attr.uri = xmlNamespace
	}
	if attr.prefix == "" {
		attr.uri = ""
	}
	return attr
}

func isNamespaceDecl(a xmlquery.Attr) bool {
	return a.Name.Space == xmlnsPrefix || (a.Name.Space == "" && a.Name.Local == xmlnsPrefix)
}

func qualify(prefix, local string) string {
	if prefix == "" {
		return local
	}
	return prefix + ":" + local
}

func textOf(n *xmlquery.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.TextNode || c.Type == xmlquery.CharDataNode {
			b.WriteString(c.Data)
		}
	}
	return b.String()
}
