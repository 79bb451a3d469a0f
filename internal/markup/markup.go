// Package markup turns the inline body markup allowed by the notification
// spec into flattened, styled text runs grouped with inline images.
//
// Parsing is total: malformed input degrades to a single unstyled run
// carrying the original text, never an error.
package markup

import "notifyd/pkg/logx"

// Parser parses notification bodies. The zero value is usable; Log may be
// set to record dropped tags and fallbacks.
type Parser struct {
	Log logx.Logger
}

// Parse converts a raw body into renderable body elements.
//
// If the input is not valid markup the entire original string is returned as
// one plain-text run, so client content is never lost. An empty input yields
// no elements.
func (p Parser) Parse(raw string) []BodyElement {
	nodes, err := p.parseNodes(raw)
	if err != nil {
		p.Log.Debug("body is not valid markup, rendering as plain text", logx.Err(err))
		return []BodyElement{RichText{{Text: raw}}}
	}
	return group(flatten(nodes))
}

// Parse is the plain-function form of Parser.Parse with no logging.
func Parse(raw string) []BodyElement {
	return Parser{}.Parse(raw)
}
