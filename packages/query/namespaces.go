package query

import (
	"fmt"
	"sort"
	"strings"
)

// Binding associates a prefix used in expressions with a namespace URI.
type Binding struct {
	Prefix string
	URI    string
}

// Namespaces is an ordered list of prefix bindings. Bindings are registered
// in order, so a later binding for the same prefix replaces an earlier one.
type Namespaces []Binding

// NS returns a binding list holding a single prefix.
func NS(prefix, uri string) Namespaces {
	return Namespaces{{Prefix: prefix, URI: uri}}
}

// NamespacesFromMap converts m into bindings sorted by prefix.
func NamespacesFromMap(m map[string]string) Namespaces {
	if len(m) == 0 {
		return nil
	}
	prefixes := make([]string, 0, len(m))
	for p := range m {
		prefixes = append(prefixes, p)
	}
	sort.Strings(prefixes)

	ns := make(Namespaces, 0, len(prefixes))
	for _, p := range prefixes {
		ns = append(ns, Binding{Prefix: p, URI: m[p]})
	}
	return ns
}

// ParseBinding parses a "prefix=uri" pair.
func ParseBinding(s string) (Binding, error) {
	prefix, uri, ok := strings.Cut(s, "=")
	prefix = strings.TrimSpace(prefix)
	if !ok || prefix == "" {
		return Binding{}, fmt.Errorf("invalid namespace binding %q, expected prefix=uri", s)
	}
	return Binding{Prefix: prefix, URI: strings.TrimSpace(uri)}, nil
}

// With returns a copy of ns with prefix bound to uri after the existing bindings.
func (ns Namespaces) With(prefix, uri string) Namespaces {
	out := make(Namespaces, len(ns), len(ns)+1)
	copy(out, ns)
	return append(out, Binding{Prefix: prefix, URI: uri})
}

// Lookup returns the URI registered last for prefix.
func (ns Namespaces) Lookup(prefix string) (string, bool) {
	for i := len(ns) - 1; i >= 0; i-- {
		if ns[i].Prefix == prefix {
			return ns[i].URI, true
		}
	}
	return "", false
}

// Map returns the effective prefix to URI mapping. The result is never nil,
// so undefined prefixes are reported by the compiler instead of being
// matched literally.
func (ns Namespaces) Map() map[string]string {
	m := make(map[string]string, len(ns))
	for _, b := range ns {
		m[b.Prefix] = b.URI
	}
	return m
}
