package markup

// Node is one vertex of the parsed markup tree.
//
// The grammar is the small inline subset the notification spec allows:
// formatting tags (recognized by the first letter of the tag name),
// hyperlinks, self-closing images, and plain text.
type Node interface{ isNode() }

// Text is a literal run with no markup of its own.
type Text string

// Bold, Italic and Underline carry their children; style is applied to the
// whole subtree when flattening.
type (
	Bold      []Node
	Italic    []Node
	Underline []Node
)

// Hyperlink keeps its target around even though the flatten pass currently
// drops it; the renderer has no link affordance yet.
type Hyperlink struct {
	Href     string
	Children []Node
}

// Image is a self-closing <img src="..." alt="..."/> tag. It doubles as the
// grouped body element for inline images.
type Image struct {
	Src string
	Alt string
}

func (Text) isNode()      {}
func (Bold) isNode()      {}
func (Italic) isNode()    {}
func (Underline) isNode() {}
func (Hyperlink) isNode() {}
func (Image) isNode()     {}

// BodyElement is one renderable unit of a notification body: a block of
// styled text runs, or an inline image that breaks the text flow.
type BodyElement interface{ isBodyElement() }

// RichText is a maximal sequence of adjacent styled runs. Grouping guarantees
// two RichText blocks are never adjacent and no block is empty.
type RichText []Run

// Style is the accumulated formatting state of a run. Flags are inherited
// top-down through nested tags and never reset by a sibling.
type Style struct {
	Bold      bool
	Italic    bool
	Underline bool
}

// Run is a contiguous span of text sharing one style combination.
type Run struct {
	Style Style
	Text  string
}

func (RichText) isBodyElement() {}
func (Image) isBodyElement()    {}
