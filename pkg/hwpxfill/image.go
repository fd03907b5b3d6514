package hwpxfill

import (
	"regexp"
	"strings"

	"github.com/beevik/etree"
)

// pictureBinaryRef finds the indirect binary-item reference for an image
// slot within one parsed part: for each occurrence of the slot, resolve
// its end marker, take the first embedded-picture element following it in
// document order, and read the reference id off its image descendant.
// Returns ("", false) when no occurrence in this part yields a reference.
func pictureBinaryRef(tree *partTree, slot string) (string, bool) {
	for _, el := range tree.elements() {
		if el.Tag != tagFieldBegin || attrValue(el, attrName) != slot || attrValue(el, attrID) == "" {
			continue
		}

		end := tree.endMarkerFor(el)
		if end == nil {
			continue
		}

		pic := tree.firstAfter(end, func(e *etree.Element) bool {
			return e.Tag == tagPicture
		})
		if pic == nil {
			continue
		}

		img := findDescendant(pic, func(e *etree.Element) bool {
			return e.Tag == tagImage && attrValue(e, attrBinaryRef) != ""
		})
		if img == nil {
			continue
		}
		return attrValue(img, attrBinaryRef), true
	}
	return "", false
}

// binaryRefAttrs is the ordered list of identifier attribute names tried
// when resolving a binary id against manifest parts. The container format
// is not self-consistent about attribute naming across producers; fixed
// priority, first match wins.
var binaryRefAttrs = []string{attrID, "itemID", "itemId", attrBinaryRef}

// resolveAssetPath maps a binary-item id to the concrete binary-asset
// part name it refers to. Manifest candidate parts are searched in
// archive order: first structurally, trying each identifier attribute
// variant against elements that also carry a path attribute pointing into
// the binary area; then, as a fallback, by raw text, taking the first
// path-shaped token following the id in a part's decoded bytes.
func resolveAssetPath(order []string, parts map[string][]byte, binaryID, binaryRoot string) (string, bool) {
	if binaryID == "" {
		return "", false
	}

	for _, name := range order {
		tree, err := parsePart(parts[name])
		if err != nil {
			continue
		}
		for _, attr := range binaryRefAttrs {
			for _, el := range tree.elements() {
				if attrValue(el, attr) != binaryID {
					continue
				}
				href := normalizeHref(attrValue(el, attrHref))
				if href != "" && strings.HasPrefix(href, binaryRoot) {
					return href, true
				}
			}
		}
	}

	// Raw-text fallback for parts that fail to parse or use an unknown
	// relationship shape
	pat := rawAssetPattern(binaryID, binaryRoot)
	for _, name := range order {
		text := string(parts[name])
		if m := pat.FindStringSubmatch(text); m != nil {
			return normalizeHref(m[1]), true
		}
	}

	return "", false
}

// rawAssetPattern matches the first binary-area path token after the id
func rawAssetPattern(binaryID, binaryRoot string) *regexp.Regexp {
	root := regexp.QuoteMeta(strings.TrimSuffix(binaryRoot, "/"))
	return regexp.MustCompile(`(?s)` + regexp.QuoteMeta(binaryID) + `.*?(` + root + `[\\/][^"'<\s]+)`)
}

// normalizeHref folds backslash path separators seen in some producers
func normalizeHref(href string) string {
	return strings.ReplaceAll(href, "\\", "/")
}
