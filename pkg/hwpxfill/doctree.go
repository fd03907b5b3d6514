package hwpxfill

import (
	"fmt"

	"github.com/beevik/etree"
)

// Marker and structure element names, matched on the local tag only.
// HWPX producers are not consistent about namespace prefixes, so matching
// is prefix-insensitive throughout.
const (
	tagFieldBegin = "fieldBegin"
	tagFieldEnd   = "fieldEnd"
	tagText       = "t"
	tagCell       = "tc"
	tagCellAddr   = "cellAddr"
	tagPicture    = "pic"
	tagImage      = "img"

	attrName      = "name"
	attrID        = "id"
	attrType      = "type"
	attrFieldID   = "fieldid"
	attrBeginRef  = "beginIDRef"
	attrBinaryRef = "binaryItemIDRef"
	attrHref      = "href"
	attrRow       = "rowAddr"
	attrCol       = "colAddr"
)

// partTree is one parsed XML part together with a flat preorder index.
// The index is built once per parse; every "first matching element after X"
// and "elements between A and B" query is a scan over it rather than a
// repeated tree walk. Parent back-links come from the underlying tree.
type partTree struct {
	doc   *etree.Document
	nodes []*etree.Element
	pos   map[*etree.Element]int
}

// parsePart parses raw XML part bytes into a partTree
func parsePart(data []byte) (*partTree, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, err
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("no root element")
	}

	t := &partTree{
		doc: doc,
		pos: make(map[*etree.Element]int),
	}
	t.flatten(root)
	return t, nil
}

func (t *partTree) flatten(el *etree.Element) {
	t.pos[el] = len(t.nodes)
	t.nodes = append(t.nodes, el)
	for _, child := range el.ChildElements() {
		t.flatten(child)
	}
}

// serialize writes the (possibly modified) tree back to bytes.
// Callers must only do this when something actually changed.
func (t *partTree) serialize() ([]byte, error) {
	return t.doc.WriteToBytes()
}

// elements returns all elements in document order
func (t *partTree) elements() []*etree.Element {
	return t.nodes
}

// firstAfter returns the first element strictly after el in document order
// that satisfies pred, or nil
func (t *partTree) firstAfter(el *etree.Element, pred func(*etree.Element) bool) *etree.Element {
	start, ok := t.pos[el]
	if !ok {
		return nil
	}
	for i := start + 1; i < len(t.nodes); i++ {
		if pred(t.nodes[i]) {
			return t.nodes[i]
		}
	}
	return nil
}

// between returns the elements strictly between begin and end in document
// order that satisfy pred
func (t *partTree) between(begin, end *etree.Element, pred func(*etree.Element) bool) []*etree.Element {
	lo, ok := t.pos[begin]
	if !ok {
		return nil
	}
	hi, ok := t.pos[end]
	if !ok || hi <= lo {
		return nil
	}
	var out []*etree.Element
	for i := lo + 1; i < hi; i++ {
		if pred(t.nodes[i]) {
			out = append(out, t.nodes[i])
		}
	}
	return out
}

// attrValue returns the value of the attribute with the given local key,
// ignoring any namespace prefix. Returns "" when absent.
func attrValue(el *etree.Element, key string) string {
	for _, a := range el.Attr {
		if a.Key == key {
			return a.Value
		}
	}
	return ""
}

// endMarkerFor resolves the matching end marker for a begin marker: the
// first fieldEnd in document order after the begin whose back-reference
// equals the begin id. Returns nil when no end marker exists.
func (t *partTree) endMarkerFor(begin *etree.Element) *etree.Element {
	beginID := attrValue(begin, attrID)
	if beginID == "" {
		return nil
	}
	return t.firstAfter(begin, func(el *etree.Element) bool {
		return el.Tag == tagFieldEnd && attrValue(el, attrBeginRef) == beginID
	})
}

// findDescendant returns the first descendant of el (preorder) that
// satisfies pred, or nil
func findDescendant(el *etree.Element, pred func(*etree.Element) bool) *etree.Element {
	for _, child := range el.ChildElements() {
		if pred(child) {
			return child
		}
		if found := findDescendant(child, pred); found != nil {
			return found
		}
	}
	return nil
}

// qualifiedTag builds a tag carrying the same namespace prefix as ref,
// so inserted elements blend into their surrounding markup
func qualifiedTag(ref *etree.Element, local string) string {
	if ref.Space != "" {
		return ref.Space + ":" + local
	}
	return local
}
