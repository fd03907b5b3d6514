package hwpxfill

import (
	"testing"
)

func countElements(t *testing.T, data []byte, tag string) int {
	t.Helper()
	tree, err := parsePart(data)
	if err != nil {
		t.Fatalf("parsePart() unexpected error = %v", err)
	}
	n := 0
	for _, el := range tree.elements() {
		if el.Tag == tag {
			n++
		}
	}
	return n
}

func totalElements(t *testing.T, data []byte) int {
	t.Helper()
	tree, err := parsePart(data)
	if err != nil {
		t.Fatalf("parsePart() unexpected error = %v", err)
	}
	return len(tree.elements())
}

func TestStripPlaceholderMarkers(t *testing.T) {
	// Two placeholder pairs and one PAGE_NUMBER pair; stripping must
	// remove exactly 2N = 4 elements and spare the other type
	data := sectionXML(
		textSlot("NAME", "1", "Alice") +
			textSlot("DATE", "2", "2024-01-01") +
			`<hp:p><hp:run><hp:fieldBegin id="3" type="PAGE_NUMBER"/><hp:fieldEnd beginIDRef="3"/></hp:run></hp:p>`,
	)
	before := totalElements(t, data)

	tree, err := parsePart(data)
	if err != nil {
		t.Fatalf("parsePart() unexpected error = %v", err)
	}
	if !stripPlaceholderMarkers(tree, "CLICK_HERE") {
		t.Fatal("stripPlaceholderMarkers() = false, want true")
	}
	out, err := tree.serialize()
	if err != nil {
		t.Fatalf("serialize() unexpected error = %v", err)
	}

	after := totalElements(t, out)
	if before-after != 4 {
		t.Errorf("stripped %d elements, want 4", before-after)
	}
	if got := countElements(t, out, tagFieldBegin); got != 1 {
		t.Errorf("%d begin markers left, want 1 (the PAGE_NUMBER pair)", got)
	}
	if got := countElements(t, out, tagFieldEnd); got != 1 {
		t.Errorf("%d end markers left, want 1 (the PAGE_NUMBER pair)", got)
	}
	// Injected content survives the strip
	if got := countElements(t, out, tagText); got != 2 {
		t.Errorf("%d text leaves left, want 2", got)
	}
}

func TestStripPlaceholderMarkersNoTargets(t *testing.T) {
	data := sectionXML(
		`<hp:p><hp:run><hp:fieldBegin id="1" type="PAGE_NUMBER"/><hp:fieldEnd beginIDRef="1"/></hp:run></hp:p>`,
	)
	tree, err := parsePart(data)
	if err != nil {
		t.Fatalf("parsePart() unexpected error = %v", err)
	}
	if stripPlaceholderMarkers(tree, "CLICK_HERE") {
		t.Error("stripPlaceholderMarkers() = true with no placeholder pairs")
	}
}

func TestStripPreservesSiblingOrder(t *testing.T) {
	data := sectionXML(
		`<hp:p><hp:run>` +
			`<hp:t>before</hp:t>` +
			`<hp:fieldBegin id="1" type="CLICK_HERE" name="NAME"/>` +
			`<hp:t>middle</hp:t>` +
			`<hp:fieldEnd beginIDRef="1"/>` +
			`<hp:t>after</hp:t>` +
			`</hp:run></hp:p>`,
	)
	tree, err := parsePart(data)
	if err != nil {
		t.Fatalf("parsePart() unexpected error = %v", err)
	}
	stripPlaceholderMarkers(tree, "CLICK_HERE")
	out, err := tree.serialize()
	if err != nil {
		t.Fatalf("serialize() unexpected error = %v", err)
	}

	reparsed, err := parsePart(out)
	if err != nil {
		t.Fatalf("parsePart() after strip unexpected error = %v", err)
	}
	var texts []string
	for _, el := range reparsed.elements() {
		if el.Tag == tagText {
			texts = append(texts, el.Text())
		}
	}
	want := []string{"before", "middle", "after"}
	if len(texts) != len(want) {
		t.Fatalf("text leaves = %v, want %v", texts, want)
	}
	for i := range want {
		if texts[i] != want[i] {
			t.Errorf("text leaf %d = %q, want %q", i, texts[i], want[i])
		}
	}
}
