package hwpxfill

import (
	"strconv"

	"github.com/beevik/etree"
)

// SlotKind distinguishes text slots from image slots
type SlotKind int

const (
	SlotText SlotKind = iota
	SlotImage
)

func (k SlotKind) String() string {
	switch k {
	case SlotText:
		return "text"
	case SlotImage:
		return "image"
	default:
		return "unknown"
	}
}

// Occurrence is one physical placement of a slot within a part.
// Row and Col are informational hints only (the nearest enclosing table
// cell, when there is one); they are never required for correctness.
type Occurrence struct {
	Part    string `json:"part"`
	Slot    string `json:"slot"`
	BeginID string `json:"begin_id"`
	FieldID string `json:"field_id,omitempty"`
	Row     int    `json:"row"`
	Col     int    `json:"col"`
}

// Directory maps slot names to their occurrences across the container.
// It is computed once from the unmodified source, before any value is
// applied, and never mutated afterwards.
type Directory struct {
	slots       map[string][]Occurrence
	names       []string
	imagePrefix string
}

func newDirectory(imagePrefix string) *Directory {
	return &Directory{
		slots:       make(map[string][]Occurrence),
		imagePrefix: imagePrefix,
	}
}

func (d *Directory) add(occ Occurrence) {
	if _, ok := d.slots[occ.Slot]; !ok {
		d.names = append(d.names, occ.Slot)
	}
	d.slots[occ.Slot] = append(d.slots[occ.Slot], occ)
}

// Names returns all slot names in first-seen document order
func (d *Directory) Names() []string {
	names := make([]string, len(d.names))
	copy(names, d.names)
	return names
}

// Occurrences returns the occurrences recorded for a slot name
func (d *Directory) Occurrences(name string) []Occurrence {
	return d.slots[name]
}

// Has reports whether the directory knows the slot name
func (d *Directory) Has(name string) bool {
	_, ok := d.slots[name]
	return ok
}

// Kind returns the slot kind for a name, decided by the configured
// name-prefix convention
func (d *Directory) Kind(name string) SlotKind {
	if len(d.imagePrefix) > 0 && len(name) >= len(d.imagePrefix) && name[:len(d.imagePrefix)] == d.imagePrefix {
		return SlotImage
	}
	return SlotText
}

// Len returns the number of distinct slot names
func (d *Directory) Len() int {
	return len(d.names)
}

// scanPart collects the occurrences in one parsed part, in document order.
// Every begin marker carrying a name attribute counts as an occurrence,
// whatever its type tag.
func scanPart(tree *partTree, partName string) []Occurrence {
	var out []Occurrence
	for _, el := range tree.elements() {
		if el.Tag != tagFieldBegin {
			continue
		}
		name := attrValue(el, attrName)
		if name == "" {
			continue
		}

		row, col := nearestCellAddr(el)
		out = append(out, Occurrence{
			Part:    partName,
			Slot:    name,
			BeginID: attrValue(el, attrID),
			FieldID: attrValue(el, attrFieldID),
			Row:     row,
			Col:     col,
		})
	}
	return out
}

// nearestCellAddr walks the parent chain from el looking for the nearest
// enclosing table cell and reads its address. Slots outside tables get
// (-1, -1). Addresses are hints; unreadable values degrade to -1.
func nearestCellAddr(el *etree.Element) (int, int) {
	for cur := el.Parent(); cur != nil; cur = cur.Parent() {
		if cur.Tag != tagCell {
			continue
		}
		// cellAddr is a direct child of the cell; a nested table's
		// address must not leak upward
		for _, child := range cur.ChildElements() {
			if child.Tag == tagCellAddr {
				return parseAddr(attrValue(child, attrRow)), parseAddr(attrValue(child, attrCol))
			}
		}
		return -1, -1
	}
	return -1, -1
}

func parseAddr(s string) int {
	if s == "" {
		return -1
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return -1
	}
	return n
}

// buildDirectory scans every content part of the container and aggregates
// the slot directory. A part that fails to parse contributes zero
// occurrences and does not abort the scan.
func buildDirectory(cr *ContainerReader, cfg *Config) *Directory {
	dir := newDirectory(cfg.ImagePrefix)

	for _, name := range cr.PartNames() {
		if !cfg.isContentPart(name) {
			continue
		}

		data, err := cr.GetPart(name)
		if err != nil {
			GetLogger().WithField("part", name).Debug("skipping unreadable part: %v", err)
			continue
		}

		tree, err := parsePart(data)
		if err != nil {
			GetLogger().WithField("part", name).Debug("skipping unparsable part: %v", err)
			continue
		}

		for _, occ := range scanPart(tree, name) {
			dir.add(occ)
		}
	}

	return dir
}
