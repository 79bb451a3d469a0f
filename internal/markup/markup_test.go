package markup

import (
	"reflect"
	"testing"
)

func TestParsePlainText(t *testing.T) {
	t.Parallel()
	got := Parse("some text")
	want := []BodyElement{RichText{{Text: "some text"}}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Parse = %#v, want %#v", got, want)
	}
}

func TestParseEmpty(t *testing.T) {
	t.Parallel()
	if got := Parse(""); len(got) != 0 {
		t.Fatalf("Parse(\"\") = %#v, want no elements", got)
	}
}

func TestParseFormatting(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		raw  string
		want []BodyElement
	}{
		{
			name: "siblings merge into one block",
			raw:  "<b>X</b><i>Y</i>",
			want: []BodyElement{RichText{
				{Style: Style{Bold: true}, Text: "X"},
				{Style: Style{Italic: true}, Text: "Y"},
			}},
		},
		{
			name: "all three tags",
			raw:  "<b>Bold</b><i>Italic</i><u>Underline</u>",
			want: []BodyElement{RichText{
				{Style: Style{Bold: true}, Text: "Bold"},
				{Style: Style{Italic: true}, Text: "Italic"},
				{Style: Style{Underline: true}, Text: "Underline"},
			}},
		},
		{
			name: "nesting accumulates and reverts only the inner flag",
			raw:  "<b>A<i>B</i>C</b>",
			want: []BodyElement{RichText{
				{Style: Style{Bold: true}, Text: "A"},
				{Style: Style{Bold: true, Italic: true}, Text: "B"},
				{Style: Style{Bold: true}, Text: "C"},
			}},
		},
		{
			name: "text around tags",
			raw:  "Some <i>italic</i> text",
			want: []BodyElement{RichText{
				{Text: "Some "},
				{Style: Style{Italic: true}, Text: "italic"},
				{Text: " text"},
			}},
		},
		{
			name: "tag family matched by first letter",
			raw:  "<big>X</big>",
			want: []BodyElement{RichText{{Style: Style{Bold: true}, Text: "X"}}},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Parse(tt.raw)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Parse(%q) = %#v, want %#v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestParseUnknownTagKeepsContent(t *testing.T) {
	t.Parallel()
	got := Parse("<asdf>Hello!</asdf>")
	want := []BodyElement{RichText{{Text: "Hello!"}}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Parse = %#v, want %#v", got, want)
	}
}

func TestParseHyperlinkDropsHref(t *testing.T) {
	t.Parallel()
	got := Parse(`click <a href="https://example.com"><b>here</b></a>!`)
	want := []BodyElement{RichText{
		{Text: "click "},
		{Style: Style{Bold: true}, Text: "here"},
		{Text: "!"},
	}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Parse = %#v, want %#v", got, want)
	}
}

func TestParseImage(t *testing.T) {
	t.Parallel()
	want := []BodyElement{Image{Src: "/path/to/image", Alt: "Alternative text"}}

	for _, raw := range []string{
		`<img src="/path/to/image" alt="Alternative text"/>`,
		`<img alt="Alternative text" src="/path/to/image"/>`,
	} {
		got := Parse(raw)
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("Parse(%q) = %#v, want %#v", raw, got, want)
		}
	}
}

func TestParseImageSplitsTextBlocks(t *testing.T) {
	t.Parallel()
	got := Parse(`before<img src="p" alt="a"/>after`)
	want := []BodyElement{
		RichText{{Text: "before"}},
		Image{Src: "p", Alt: "a"},
		RichText{{Text: "after"}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Parse = %#v, want %#v", got, want)
	}
}

func TestParseFallback(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		raw  string
	}{
		{name: "unterminated tag", raw: "<b>unterminated"},
		{name: "bare angle bracket", raw: "1 < 2"},
		{name: "broken image", raw: `<img src="p"`},
		{name: "unbalanced nesting", raw: `<a href="u"><b>x</a>`},
		{name: "empty tag name", raw: "<>x</>"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Parse(tt.raw)
			want := []BodyElement{RichText{{Text: tt.raw}}}
			if !reflect.DeepEqual(got, want) {
				t.Fatalf("Parse(%q) = %#v, want %#v", tt.raw, got, want)
			}
		})
	}
}

func TestFlattenStyleInheritance(t *testing.T) {
	t.Parallel()
	tree := []Node{Bold{
		Text("Some "),
		Italic{Text("bold and italic")},
		Text(" text"),
	}}
	units := flatten(tree)
	want := []flatUnit{
		{run: Run{Style: Style{Bold: true}, Text: "Some "}},
		{run: Run{Style: Style{Bold: true, Italic: true}, Text: "bold and italic"}},
		{run: Run{Style: Style{Bold: true}, Text: " text"}},
	}
	if !reflect.DeepEqual(units, want) {
		t.Fatalf("flatten = %#v, want %#v", units, want)
	}
}

func TestGroupNeverEmitsEmptyOrAdjacentBlocks(t *testing.T) {
	t.Parallel()
	units := []flatUnit{
		{image: Image{Src: "a", Alt: "a"}, isImage: true},
		{image: Image{Src: "b", Alt: "b"}, isImage: true},
		{run: Run{Text: "tail"}},
	}
	got := group(units)
	want := []BodyElement{
		Image{Src: "a", Alt: "a"},
		Image{Src: "b", Alt: "b"},
		RichText{{Text: "tail"}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("group = %#v, want %#v", got, want)
	}
}
