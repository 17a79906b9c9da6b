package canonical

import (
	"errors"
	"strings"

	"github.com/abdul-hamid-achik/xpathspec/packages/failure"
	"github.com/antchfx/xmlquery"
)

var errFragmentShape = errors.New("content escapes the fragment boundary")

// Fragment parses text as an XML fragment: any sequence of elements and
// character data, with or without a single root. Whitespace-only text next
// to elements is dropped. The returned nodes are siblings under a private
// holder element, so namespace declarations in text stay in scope.
func Fragment(text string) ([]*xmlquery.Node, error) {
	doc, err := xmlquery.Parse(strings.NewReader("<" + fragmentHolder + ">" + text + "</" + fragmentHolder + ">"))
	if err != nil {
		return nil, failure.Malformed(text, err)
	}

	var holder *xmlquery.Node
	for c := doc.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case xmlquery.ElementNode:
			if holder != nil || c.Data != fragmentHolder || c.Prefix != "" {
				return nil, failure.Malformed(text, errFragmentShape)
			}
			holder = c
		case xmlquery.TextNode, xmlquery.CharDataNode:
			if strings.TrimSpace(c.Data) != "" {
				return nil, failure.Malformed(text, errFragmentShape)
			}
		}
	}
	if holder == nil {
		return nil, failure.Malformed(text, errFragmentShape)
	}

	stripBlanks(holder)
	var nodes []*xmlquery.Node
	for c := holder.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case xmlquery.ElementNode, xmlquery.TextNode, xmlquery.CharDataNode:
			nodes = append(nodes, c)
		}
	}
	return nodes, nil
}

// stripBlanks removes whitespace-only text from elements that contain
// other elements.
func stripBlanks(n *xmlquery.Node) {
	mixed := false
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode {
			mixed = true
			break
		}
	}

	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		switch c.Type {
		case xmlquery.ElementNode:
			stripBlanks(c)
		case xmlquery.TextNode:
			if mixed && strings.TrimSpace(c.Data) == "" {
				xmlquery.RemoveFromTree(c)
			}
		case xmlquery.CommentNode, xmlquery.DeclarationNode:
			xmlquery.RemoveFromTree(c)
		}
		c = next
	}
}
