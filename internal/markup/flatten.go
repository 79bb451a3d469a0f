package markup

// flatUnit is an intermediate element: a styled run or an inline image,
// before adjacent runs are grouped into RichText blocks.
type flatUnit struct {
	run     Run
	image   Image
	isImage bool
}

// flatten walks the tree depth-first, left-to-right, accumulating style flags
// top-down. A flag set by an ancestor stays set for the whole subtree; exiting
// a tag reverts only that tag's flag.
func flatten(tree []Node) []flatUnit {
	return flattenWith(tree, Style{})
}

func flattenWith(tree []Node, style Style) []flatUnit {
	var out []flatUnit
	for _, node := range tree {
		switch n := node.(type) {
		case Text:
			out = append(out, flatUnit{run: Run{Style: style, Text: string(n)}})
		case Bold:
			s := style
			s.Bold = true
			out = append(out, flattenWith(n, s)...)
		case Italic:
			s := style
			s.Italic = true
			out = append(out, flattenWith(n, s)...)
		case Underline:
			s := style
			s.Underline = true
			out = append(out, flattenWith(n, s)...)
		case Hyperlink:
			// The href is dropped here; only the content is rendered.
			out = append(out, flattenWith(n.Children, style)...)
		case Image:
			out = append(out, flatUnit{image: n, isImage: true})
		}
	}
	return out
}

// group coalesces adjacent runs into one RichText block and starts a fresh
// block at every image. It never emits an empty RichText and never two
// adjacent ones.
func group(units []flatUnit) []BodyElement {
	var grouped []BodyElement
	var block RichText
	for _, u := range units {
		if u.isImage {
			if len(block) > 0 {
				grouped = append(grouped, block)
				block = nil
			}
			grouped = append(grouped, u.image)
			continue
		}
		block = append(block, u.run)
	}
	if len(block) > 0 {
		grouped = append(grouped, block)
	}
	return grouped
}
