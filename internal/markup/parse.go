package markup

import (
	"errors"
	"strings"

	"notifyd/pkg/logx"
)

// errMalformed marks input the grammar cannot consume (unbalanced or
// unterminated tags). Parse recovers from it with the plain-text fallback;
// it never escapes this package.
var errMalformed = errors.New("markup: malformed input")

// parseNodes consumes the whole input and returns the markup tree.
//
// At each position the candidates are tried in order: image tag, hyperlink
// tag, generic formatting tag, plain text up to the next '<'. If the input
// sits on a '<' and no tag form matches, the whole parse fails.
func (p Parser) parseNodes(input string) ([]Node, error) {
	var nodes []Node
	rest := input
	for rest != "" {
		if rest[0] == '<' {
			if node, rem, ok := p.parseImage(rest); ok {
				nodes = append(nodes, node)
				rest = rem
				continue
			}
			if node, rem, ok := p.parseHyperlink(rest); ok {
				nodes = append(nodes, node)
				rest = rem
				continue
			}
			if node, rem, ok := p.parseTag(rest); ok {
				nodes = append(nodes, node)
				rest = rem
				continue
			}
			return nil, errMalformed
		}

		// Plain text up to the next '<'; with no further '<' the text
		// consumes the remainder.
		if i := strings.IndexByte(rest, '<'); i >= 0 {
			nodes = append(nodes, Text(rest[:i]))
			rest = rest[i:]
		} else {
			nodes = append(nodes, Text(rest))
			rest = ""
		}
	}
	return nodes, nil
}

// parseImage matches a self-closing <img .../> with src and alt attributes in
// either order.
func (p Parser) parseImage(input string) (Node, string, bool) {
	rest, ok := strings.CutPrefix(input, "<img")
	if !ok {
		return nil, "", false
	}

	var src, alt string
	var haveSrc, haveAlt bool
	for !haveSrc || !haveAlt {
		if !haveSrc {
			if v, rem, ok := cutField(rest, "src"); ok {
				src, rest, haveSrc = v, rem, true
				continue
			}
		}
		if !haveAlt {
			if v, rem, ok := cutField(rest, "alt"); ok {
				alt, rest, haveAlt = v, rem, true
				continue
			}
		}
		return nil, "", false
	}

	rest, ok = strings.CutPrefix(rest, "/>")
	if !ok {
		return nil, "", false
	}
	return Image{Src: src, Alt: alt}, rest, true
}

// parseHyperlink matches <a href="...">...</a> and parses the inner content
// as markup. The contents run to the first closing </a>, so hyperlinks do not
// nest.
func (p Parser) parseHyperlink(input string) (Node, string, bool) {
	rest, ok := strings.CutPrefix(input, "<a")
	if !ok {
		return nil, "", false
	}
	href, rest, ok := cutField(rest, "href")
	if !ok {
		return nil, "", false
	}
	rest, ok = strings.CutPrefix(rest, ">")
	if !ok {
		return nil, "", false
	}

	contents, rest, ok := cutUntil(rest, "</a>")
	if !ok {
		return nil, "", false
	}
	children, err := p.parseNodes(contents)
	if err != nil {
		return nil, "", false
	}
	return Hyperlink{Href: href, Children: children}, rest, true
}

// parseTag matches any other <name>...</name> pair and classifies it by the
// first letter of the tag name: b is bold, i italic, u underline. Anything
// else keeps its inner text verbatim and drops the markers.
func (p Parser) parseTag(input string) (Node, string, bool) {
	rest, ok := strings.CutPrefix(input, "<")
	if !ok {
		return nil, "", false
	}
	name, rest, ok := cutUntil(rest, ">")
	if !ok || name == "" {
		return nil, "", false
	}

	contents, rest, ok := cutUntil(rest, "</"+name)
	if !ok {
		return nil, "", false
	}
	// Consume the rest of the closing tag.
	if _, rest, ok = cutUntil(rest, ">"); !ok {
		return nil, "", false
	}

	switch name[0] {
	case 'b':
		children, err := p.parseNodes(contents)
		if err != nil {
			return nil, "", false
		}
		return Bold(children), rest, true
	case 'i':
		children, err := p.parseNodes(contents)
		if err != nil {
			return nil, "", false
		}
		return Italic(children), rest, true
	case 'u':
		children, err := p.parseNodes(contents)
		if err != nil {
			return nil, "", false
		}
		return Underline(children), rest, true
	default:
		// Lossy fallback: the tag name is dropped, the content survives
		// as plain text without re-parsing.
		p.Log.Debug("dropping unknown markup tag", logx.String("tag", name))
		return Text(contents), rest, true
	}
}

// cutField matches `name = "value"` with optional whitespace around the name,
// the equals sign and the quoted value. The value must be non-empty.
func cutField(input, name string) (value, rest string, ok bool) {
	rest = strings.TrimLeft(input, " \t\r\n")
	if rest, ok = strings.CutPrefix(rest, name); !ok {
		return "", "", false
	}
	rest = strings.TrimLeft(rest, " \t\r\n")
	if rest, ok = strings.CutPrefix(rest, "="); !ok {
		return "", "", false
	}
	rest = strings.TrimLeft(rest, " \t\r\n")
	if rest, ok = strings.CutPrefix(rest, `"`); !ok {
		return "", "", false
	}
	value, rest, ok = cutUntil(rest, `"`)
	if !ok || value == "" {
		return "", "", false
	}
	rest = strings.TrimLeft(rest, " \t\r\n")
	return value, rest, true
}

// cutUntil splits input at the first occurrence of sep, consuming sep.
func cutUntil(input, sep string) (before, rest string, ok bool) {
	i := strings.Index(input, sep)
	if i < 0 {
		return "", "", false
	}
	return input[:i], input[i+len(sep):], true
}
