package query

import (
	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
)

const xmlNamespace = "http://www.w3.org/XML/1998/namespace"

// navigator implements xpath.NodeNavigator over an xmlquery tree. Unlike
// xmlquery's own navigator it keeps the document root apart from the context
// node, so "/" always selects the owning document.
type navigator struct {
	root *xmlquery.Node
	curr *xmlquery.Node
	attr int
}

var _ xpath.NodeNavigator = (*navigator)(nil)

func newNavigator(context *xmlquery.Node) *navigator {
	root := context
	for root.Parent != nil {
		root = root.Parent
	}
	return &navigator{root: root, curr: context, attr: -1}
}

// node returns the xmlquery node under the cursor. Attributes are returned
// as detached AttributeNode values holding a single text child.
func (n *navigator) node() *xmlquery.Node {
	if n.attr == -1 {
		return n.curr
	}
	a := n.curr.Attr[n.attr]
	node := &xmlquery.Node{
		Type:         xmlquery.AttributeNode,
		Data:         a.Name.Local,
		Prefix:       attrPrefix(a),
		NamespaceURI: a.NamespaceURI,
		Parent:       n.curr,
	}
	xmlquery.AddChild(node, &xmlquery.Node{Type: xmlquery.TextNode, Data: a.Value})
	return node
}

func (n *navigator) NodeType() xpath.NodeType {
	switch n.curr.Type {
	case xmlquery.DocumentNode:
		return xpath.RootNode
	case xmlquery.ElementNode:
		if n.attr != -1 {
			return xpath.AttributeNode
		}
		return xpath.ElementNode
	case xmlquery.AttributeNode:
		return xpath.AttributeNode
	case xmlquery.CommentNode:
		return xpath.CommentNode
	default:
		return xpath.TextNode
	}
}

func (n *navigator) LocalName() string {
	if n.attr != -1 {
		return n.curr.Attr[n.attr].Name.Local
	}
	return n.curr.Data
}

func (n *navigator) Prefix() string {
	if n.attr != -1 {
		return attrPrefix(n.curr.Attr[n.attr])
	}
	return n.curr.Prefix
}

// NamespaceURL is used by the runtime for prefixed name tests and namespace-uri().
func (n *navigator) NamespaceURL() string {
	if n.attr != -1 {
		return n.curr.Attr[n.attr].NamespaceURI
	}
	return n.curr.NamespaceURI
}

func (n *navigator) Value() string {
	switch {
	case n.attr != -1:
		return n.curr.Attr[n.attr].Value
	case n.curr.Type == xmlquery.TextNode, n.curr.Type == xmlquery.CharDataNode, n.curr.Type == xmlquery.CommentNode:
		return n.curr.Data
	default:
		return n.curr.InnerText()
	}
}

func (n *navigator) Copy() xpath.NodeNavigator {
	c := *n
	return &c
}

func (n *navigator) MoveToRoot() {
	n.curr = n.root
	n.attr = -1
}

func (n *navigator) MoveToParent() bool {
	if n.attr != -1 {
		n.attr = -1
		return true
	}
	if n.curr == n.root || n.curr.Parent == nil {
		return false
	}
	n.curr = n.curr.Parent
	return true
}

// MoveToNextAttribute skips namespace declarations, which are not
// attributes in the XPath data model.
func (n *navigator) MoveToNextAttribute() bool {
	if n.curr.Type != xmlquery.ElementNode {
		return false
	}
	for i := n.attr + 1; i < len(n.curr.Attr); i++ {
		if !isNamespaceDecl(n.curr.Attr[i]) {
			n.attr = i
			return true
		}
	}
	return false
}

func (n *navigator) MoveToChild() bool {
	if n.attr != -1 {
		return false
	}
	if c := forward(n.curr.FirstChild); c != nil {
		n.curr = c
		return true
	}
	return false
}

func (n *navigator) MoveToFirst() bool {
	if n.attr != -1 || n.curr == n.root {
		return false
	}
	first := n.curr
	for first.PrevSibling != nil {
		first = first.PrevSibling
	}
	first = forward(first)
	if first == nil || first == n.curr {
		return false
	}
	n.curr = first
	return true
}

func (n *navigator) MoveToNext() bool {
	if n.attr != -1 || n.curr == n.root {
		return false
	}
	if s := forward(n.curr.NextSibling); s != nil {
		n.curr = s
		return true
	}
	return false
}

func (n *navigator) MoveToPrevious() bool {
	if n.attr != -1 || n.curr == n.root {
		return false
	}
	if s := backward(n.curr.PrevSibling); s != nil {
		n.curr = s
		return true
	}
	return false
}

func (n *navigator) MoveTo(other xpath.NodeNavigator) bool {
	o, ok := other.(*navigator)
	if !ok || o.root != n.root {
		return false
	}
	n.curr = o.curr
	n.attr = o.attr
	return true
}

// forward and backward skip XML declarations, which have no XPath node type.
func forward(n *xmlquery.Node) *xmlquery.Node {
	for n != nil && n.Type == xmlquery.DeclarationNode {
		n = n.NextSibling
	}
	return n
}

func backward(n *xmlquery.Node) *xmlquery.Node {
	for n != nil && n.Type == xmlquery.DeclarationNode {
		n = n.PrevSibling
	}
	return n
}

func isNamespaceDecl(a xmlquery.Attr) bool {
	return a.Name.Space == "xmlns" || (a.Name.Space == "" && a.Name.Local == "xmlns")
}

// attrPrefix maps the xml namespace, which the parser leaves unresolved, to its fixed prefix.
func attrPrefix(a xmlquery.Attr) string {
	if a.Name.Space == xmlNamespace || a.NamespaceURI == xmlNamespace {
		return "xml"
	}
	return a.Name.Space
}
