package query

import (
	"strings"
	"unicode"
)

// noNamespacePrefix is bound to the empty namespace URI. Unprefixed name
// tests are qualified with it, so they select only nodes in no namespace
// instead of any node whose prefix happens to be empty.
const noNamespacePrefix = "xpathspec-no-namespace"

// qualifyNameTests rewrites every unprefixed name test in expression to use
// noNamespacePrefix. Function names, node type tests, axis names, variable
// references, operator names, string literals and wildcards are left as
// they are. Tokens follow the lexical rules of the XPath runtime.
func qualifyNameTests(expression string) string {
	src := []rune(expression)
	var b strings.Builder
	b.Grow(len(expression))

	// operand is true after a token that completes an operand. A name or '*'
	// that follows one is an operator.
	operand := false
	variable := false

	for i := 0; i < len(src); {
		r := src[i]
		switch {
		case unicode.IsSpace(r):
			b.WriteRune(r)
			i++

		case r == '"' || r == '\'':
			j := i + 1
			for j < len(src) && src[j] != r {
				j++
			}
			if j < len(src) {
				j++
			}
			b.WriteString(string(src[i:j]))
			i = j
			operand = true

		case unicode.IsDigit(r) || (r == '.' && i+1 < len(src) && unicode.IsDigit(src[i+1])):
			j := i + 1
			for j < len(src) && (unicode.IsDigit(src[j]) || src[j] == '.') {
				j++
			}
			b.WriteString(string(src[i:j]))
			i = j
			operand = true

		case r == '.':
			j := i + 1
			if j < len(src) && src[j] == '.' {
				j++
			}
			b.WriteString(string(src[i:j]))
			i = j
			operand = true

		case r == ')' || r == ']':
			b.WriteRune(r)
			i++
			operand = true

		case r == '*':
			b.WriteRune(r)
			i++
			operand = !operand

		case r == '$':
			b.WriteRune(r)
			i++
			variable = true
			operand = false

		case isNameStart(r):
			i = qualifyName(&b, src, i, &operand, variable)
			variable = false

		default:
			b.WriteRune(r)
			i++
			operand = false
		}
	}
	return b.String()
}

// qualifyName writes the name starting at src[i] and returns the index after it.
func qualifyName(b *strings.Builder, src []rune, i int, operand *bool, variable bool) int {
	j := i + 1
	for j < len(src) && isNamePart(src[j]) {
		j++
	}
	name := string(src[i:j])

	if j < len(src) && src[j] == ':' {
		if j+1 < len(src) && src[j+1] == ':' {
			// axis name
			b.WriteString(name)
			*operand = false
			return j
		}
		// prefix:local or prefix:*
		k := j + 1
		if k < len(src) && src[k] == '*' {
			k++
		} else {
			for k < len(src) && isNamePart(src[k]) {
				k++
			}
		}
		b.WriteString(string(src[i:k]))
		*operand = true
		return k
	}

	next := j
	for next < len(src) && unicode.IsSpace(src[next]) {
		next++
	}
	axis := next+1 < len(src) && src[next] == ':' && src[next+1] == ':'
	call := next < len(src) && src[next] == '('

	switch {
	case variable:
		b.WriteString(name)
		*operand = true
	case axis, call:
		b.WriteString(name)
		*operand = false
	case *operand:
		// and, or, mod, div
		b.WriteString(name)
		*operand = false
	default:
		b.WriteString(noNamespacePrefix)
		b.WriteByte(':')
		b.WriteString(name)
		*operand = true
	}
	return j
}

func isNameStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

// isNamePart matches the runtime's name scanner, which also accepts '*'
// inside a name.
func isNamePart(r rune) bool {
	switch {
	case r == ':' || r == '/':
		return false
	case isNameStart(r), unicode.IsDigit(r), r == '-', r == '.', r == '*', r == 0xB7:
		return true
	}
	return unicode.Is(unicode.Mn, r) || unicode.Is(unicode.Mc, r)
}

// unqualify removes the added prefix from runtime messages that quote the
// rewritten expression.
func unqualify(msg string) string {
	return strings.ReplaceAll(msg, noNamespacePrefix+":", "")
}
