// Package mef decodes the Model Exchange Format documents spec §6 describes
// into a domain.Model ready for Model.Validate (Load itself does not
// validate): fault trees, gates, formulae, primary
// events, parameters and CCF groups, each carrying the (file, line) it was
// declared at for diagnostics. There is no third-party XML library in the
// retrieval pack this module draws on, so decoding goes through the
// standard library's encoding/xml; see DESIGN.md.
package mef

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
)

// node is a generic XML element: its tag, attributes, child elements in
// document order, and the line it starts on. The loader parses MEF
// documents into a tree of these first, then walks the tree to build
// domain objects — decoupling "is this well-formed XML" from "does this
// tag sequence make a valid fault tree".
type node struct {
	Tag      string
	Attrs    map[string]string
	Children []*node
	Line     int
}

func (n *node) attr(name string) (string, bool) {
	v, ok := n.Attrs[name]
	return v, ok
}

func (n *node) childrenTagged(tag string) []*node {
	var out []*node
	for _, c := range n.Children {
		if c.Tag == tag {
			out = append(out, c)
		}
	}
	return out
}

// parseDocument decodes the whole of r into a single root node. Line
// numbers come from the decoder's byte InputOffset translated against a
// precomputed newline index, since encoding/xml doesn't track lines itself.
func parseDocument(r io.Reader) (*node, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	lines := newLineIndex(data)

	dec := xml.NewDecoder(bytes.NewReader(data))
	var stack []*node
	var root *node

	for {
		offset := dec.InputOffset()
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			n := &node{
				Tag:   t.Name.Local,
				Attrs: make(map[string]string, len(t.Attr)),
				Line:  lines.lineAt(offset),
			}
			for _, a := range t.Attr {
				n.Attrs[a.Name.Local] = a.Value
			}
			if len(stack) > 0 {
				top := stack[len(stack)-1]
				top.Children = append(top.Children, n)
			}
			stack = append(stack, n)
		case xml.EndElement:
			if len(stack) == 0 {
				return nil, fmt.Errorf("mef: unbalanced end element %q", t.Name.Local)
			}
			root = stack[len(stack)-1]
			stack = stack[:len(stack)-1]
		}
	}
	if root == nil {
		return nil, fmt.Errorf("mef: empty document")
	}
	return root, nil
}

// lineIndex maps a byte offset into the source document to a 1-based line
// number via the sorted list of newline offsets.
type lineIndex struct {
	newlines []int
}

func newLineIndex(data []byte) *lineIndex {
	var nl []int
	for i, b := range data {
		if b == '\n' {
			nl = append(nl, i)
		}
	}
	return &lineIndex{newlines: nl}
}

func (idx *lineIndex) lineAt(offset int64) int {
	lo, hi := 0, len(idx.newlines)
	for lo < hi {
		mid := (lo + hi) / 2
		if int64(idx.newlines[mid]) < offset {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo + 1
}
