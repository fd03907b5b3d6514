package hwpxfill

import (
	"github.com/beevik/etree"
)

// stripPlaceholderMarkers removes the begin/end marker pairs whose begin
// carries the designated placeholder type tag. Other marker types (page
// numbers, tables of contents and the like) must survive, so end markers
// are removed only when their back-reference belongs to a removed begin.
// Sibling ordering of everything else is untouched.
//
// Returns true if any marker was removed.
func stripPlaceholderMarkers(tree *partTree, placeholderType string) bool {
	if placeholderType == "" {
		return false
	}

	// Collect ids first so the matching end markers can be removed exactly
	beginIDs := make(map[string]bool)
	var begins, ends []*etree.Element
	for _, el := range tree.elements() {
		switch el.Tag {
		case tagFieldBegin:
			if attrValue(el, attrType) == placeholderType {
				if id := attrValue(el, attrID); id != "" {
					beginIDs[id] = true
				}
				begins = append(begins, el)
			}
		case tagFieldEnd:
			ends = append(ends, el)
		}
	}

	removed := false
	for _, el := range begins {
		if parent := el.Parent(); parent != nil {
			parent.RemoveChild(el)
			removed = true
		}
	}
	for _, el := range ends {
		ref := attrValue(el, attrBeginRef)
		if ref == "" || !beginIDs[ref] {
			continue
		}
		if parent := el.Parent(); parent != nil {
			parent.RemoveChild(el)
			removed = true
		}
	}

	return removed
}
