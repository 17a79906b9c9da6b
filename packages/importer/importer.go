package importer

import (
	"errors"

	"github.com/abdul-hamid-achik/xpathspec/packages/failure"
	"github.com/abdul-hamid-achik/xpathspec/packages/value"
	"github.com/antchfx/xmlquery"
)

const (
	// Placeholder is the tag of the tree root and of every array item.
	Placeholder = "_"
	// DefaultMaxDepth is the default number of composite levels materialized below the root.
	DefaultMaxDepth = 100

	attrType = "type"
	attrName = "name"
)

var errNativeNode = errors.New("native nodes are evaluated directly")

// Importer converts values into typed XML trees.
type Importer struct {
	maxDepth int
}

// Option is a functional option for configuring an Importer.
type Option func(*Importer)

// WithMaxDepth limits how many composite levels are expanded. Negative values count as 0.
func WithMaxDepth(depth int) Option {
	return func(im *Importer) {
		im.maxDepth = max(0, depth)
	}
}

func New(opts ...Option) *Importer {
	im := &Importer{maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(im)
	}
	return im
}

// Import is a convenience wrapper around New(opts...).Import(x).
func Import(x any, opts ...Option) (*xmlquery.Node, error) {
	return New(opts...).Import(x)
}

// MaxDepth returns the configured depth budget.
func (im *Importer) MaxDepth() int {
	return im.maxDepth
}

// Import converts x into a document whose element root is tagged "_".
// Every element carries a type attribute (null, boolean, number, string,
// array or object); object members also carry their original key as name.
// Composite values deeper than the depth budget keep their type attribute
// but get no children.
func (im *Importer) Import(x any) (*xmlquery.Node, error) {
	if _, ok := x.(*xmlquery.Node); ok {
		return nil, failure.Unsupported(1, x, errNativeNode)
	}
	v, err := value.Of(x)
	if err != nil {
		return nil, failure.WithArgument(err, 1)
	}

	doc := &xmlquery.Node{Type: xmlquery.DocumentNode}
	root := element(Placeholder)
	xmlquery.AddChild(doc, root)
	if err := im.transfer(root, v, im.maxDepth); err != nil {
		return nil, failure.WithArgument(err, 1)
	}
	return doc, nil
}

func (im *Importer) transfer(target *xmlquery.Node, v value.Value, depth int) error {
	v, err := value.Resolve(v)
	if err != nil {
		return err
	}

	kind := value.Classify(v)
	xmlquery.AddAttr(target, attrType, kind.String())

	switch kind {
	case value.KindNull:
		return nil
	case value.KindArray:
		if depth < 1 {
			return nil
		}
		for _, item := range v.Items() {
			child := element(Placeholder)
			xmlquery.AddChild(target, child)
			if err := im.transfer(child, item, depth-1); err != nil {
				return err
			}
		}
		return nil
	case value.KindObject:
		if depth < 1 {
			return nil
		}
		for _, e := range v.Entries() {
			child := element(SanitizeName(e.Key, Placeholder))
			xmlquery.AddAttr(child, attrName, e.Key)
			xmlquery.AddChild(target, child)
			if err := im.transfer(child, e.Value, depth-1); err != nil {
				return err
			}
		}
		return nil
	default:
		xmlquery.AddChild(target, &xmlquery.Node{Type: xmlquery.TextNode, Data: v.String()})
		return nil
	}
}

func element(tag string) *xmlquery.Node {
	return &xmlquery.Node{Type: xmlquery.ElementNode, Data: tag}
}
