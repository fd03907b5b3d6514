package hwpxfill

import (
	"github.com/beevik/etree"
)

// fillTextSlots writes text values into every matching occurrence of one
// parsed part. For each begin marker whose name has a value:
//
//  1. The matching end marker is the first fieldEnd after it in document
//     order whose back-reference equals the begin id; if none exists the
//     occurrence is skipped.
//  2. Text leaves strictly between the markers collapse to a single
//     visible copy of the value: the first leaf gets it, the rest are
//     emptied.
//  3. When the range holds no text leaf at all, a new one is inserted
//     immediately before the end marker.
//
// Returns true if any occurrence actually changed.
func fillTextSlots(tree *partTree, values map[string]string) bool {
	if len(values) == 0 {
		return false
	}

	// Snapshot the begin markers up front; insertions below must not
	// affect the iteration
	var begins []*etree.Element
	for _, el := range tree.elements() {
		if el.Tag == tagFieldBegin && attrValue(el, attrName) != "" && attrValue(el, attrID) != "" {
			begins = append(begins, el)
		}
	}

	changed := false
	for _, begin := range begins {
		name := attrValue(begin, attrName)
		value, ok := values[name]
		if !ok {
			continue
		}

		end := tree.endMarkerFor(begin)
		if end == nil {
			GetLogger().Debug("slot %q: begin marker %s has no matching end marker, skipping occurrence",
				name, attrValue(begin, attrID))
			continue
		}

		leaves := tree.between(begin, end, func(el *etree.Element) bool {
			return el.Tag == tagText
		})

		if len(leaves) > 0 {
			if leaves[0].Text() != value {
				leaves[0].SetText(value)
				changed = true
			}
			for _, extra := range leaves[1:] {
				if extra.Text() != "" {
					extra.SetText("")
					changed = true
				}
			}
			continue
		}

		// No text leaf in range: insert one just before the end marker
		parent := end.Parent()
		if parent == nil {
			continue
		}
		leaf := etree.NewElement(qualifiedTag(end, tagText))
		leaf.SetText(value)
		parent.InsertChildAt(end.Index(), leaf)
		changed = true
	}

	return changed
}

// fillPart applies text values (and, when enabled, the marker strip pass)
// to one content part's raw bytes. The input bytes come back untouched
// unless something actually changed, so unrelated formatting never goes
// through a serialize round trip.
func fillPart(data []byte, part string, values map[string]string, strip bool, placeholderType string) ([]byte, bool, error) {
	tree, err := parsePart(data)
	if err != nil {
		return data, false, NewPartError(part, err)
	}

	changed := fillTextSlots(tree, values)
	if strip && stripPlaceholderMarkers(tree, placeholderType) {
		changed = true
	}

	if !changed {
		return data, false, nil
	}

	out, err := tree.serialize()
	if err != nil {
		return data, false, NewPartError(part, err)
	}
	return out, true, nil
}
