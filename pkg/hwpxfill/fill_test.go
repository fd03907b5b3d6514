package hwpxfill

import (
	"bytes"
	"io"
	"strings"
	"testing"
)

func prepareBytes(t *testing.T, data []byte, opts ...Option) *PreparedTemplate {
	t.Helper()
	engine, err := NewWithOptions(opts...)
	if err != nil {
		t.Fatalf("NewWithOptions() unexpected error = %v", err)
	}
	tmpl, err := engine.Prepare(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Prepare() unexpected error = %v", err)
	}
	return tmpl
}

func fillToParts(t *testing.T, tmpl *PreparedTemplate, values SlotValues) ([]string, map[string][]byte, *Report) {
	t.Helper()
	out, report, err := tmpl.FillWithReport(values)
	if err != nil {
		t.Fatalf("FillWithReport() unexpected error = %v", err)
	}
	raw, err := io.ReadAll(out)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	order, parts, err := readContainerParts(raw)
	if err != nil {
		t.Fatalf("reading output container: %v", err)
	}
	return order, parts, report
}

func TestFillNoOpClosure(t *testing.T) {
	// An empty values mapping yields output byte-identical to the
	// source, part for part
	source := defaultTestContainer()
	srcOrder, srcParts, err := readContainerParts(source)
	if err != nil {
		t.Fatalf("reading source container: %v", err)
	}

	tmpl := prepareBytes(t, source)
	defer tmpl.Close()
	order, parts, report := fillToParts(t, tmpl, SlotValues{})

	if len(order) != len(srcOrder) {
		t.Fatalf("output has %d parts, want %d", len(order), len(srcOrder))
	}
	for i := range srcOrder {
		if order[i] != srcOrder[i] {
			t.Errorf("part %d = %q, want %q (order must be preserved)", i, order[i], srcOrder[i])
		}
	}
	for name, src := range srcParts {
		if !bytes.Equal(parts[name], src) {
			t.Errorf("part %q differs from source on a no-op fill", name)
		}
	}
	if len(report.Changed) != 0 {
		t.Errorf("report.Changed = %v, want empty", report.Changed)
	}
}

func TestFillFanOut(t *testing.T) {
	// One value fills every occurrence of the name, across parts
	tmpl := prepareBytes(t, defaultTestContainer())
	defer tmpl.Close()

	_, parts, report := fillToParts(t, tmpl, SlotValues{
		"NAME": Text("Alice"),
		"DATE": Text("2024-06-01"),
	})

	section := parts["Contents/section0.xml"]
	if got := bytes.Count(section, []byte(">Alice<")); got != 2 {
		t.Errorf("section0 contains %d copies of Alice, want 2", got)
	}
	if !bytes.Contains(section, []byte(">2024-06-01<")) {
		t.Error("section0 is missing the DATE value")
	}
	if !bytes.Contains(parts["Contents/header.xml"], []byte(">2024-06-01<")) {
		t.Error("header is missing the DATE value (cross-part fan-out)")
	}

	if len(report.Changed) != 2 {
		t.Errorf("report.Changed = %v, want both content parts", report.Changed)
	}
}

func TestFillLeavesUnrelatedPartsIdentical(t *testing.T) {
	source := defaultTestContainer()
	_, srcParts, _ := readContainerParts(source)

	tmpl := prepareBytes(t, source)
	defer tmpl.Close()
	_, parts, _ := fillToParts(t, tmpl, SlotValues{"NAME": Text("Alice")})

	for _, name := range []string{"mimetype", "version.xml", "styles.xml", "Contents/content.hpf", "Contents/header.xml", "BinData/image1.png"} {
		if !bytes.Equal(parts[name], srcParts[name]) {
			t.Errorf("unrelated part %q was modified", name)
		}
	}
}

func TestFillImageReplacement(t *testing.T) {
	// The only byte differences are confined to the resolved asset
	// part, whose new bytes equal the payload exactly
	source := defaultTestContainer()
	_, srcParts, _ := readContainerParts(source)

	tmpl := prepareBytes(t, source)
	defer tmpl.Close()
	_, parts, report := fillToParts(t, tmpl, SlotValues{
		"IMG_PHOTO": Image("image/png", tinyPNG),
	})

	if !bytes.Equal(parts["BinData/image1.png"], tinyPNG) {
		t.Error("asset bytes do not equal the supplied payload")
	}
	for name, src := range srcParts {
		if name == "BinData/image1.png" {
			continue
		}
		if !bytes.Equal(parts[name], src) {
			t.Errorf("part %q changed during an image-only fill", name)
		}
	}

	if got := report.Replaced["IMG_PHOTO"]; got != "BinData/image1.png" {
		t.Errorf("report.Replaced[IMG_PHOTO] = %q, want BinData/image1.png", got)
	}
	if len(report.Unresolved) != 0 {
		t.Errorf("report.Unresolved = %v, want empty", report.Unresolved)
	}
}

func TestFillUnsupportedMediaType(t *testing.T) {
	source := defaultTestContainer()
	_, srcParts, _ := readContainerParts(source)

	tmpl := prepareBytes(t, source)
	defer tmpl.Close()
	_, parts, report := fillToParts(t, tmpl, SlotValues{
		"IMG_PHOTO": Image("image/webp", tinyPNG),
		"NAME":      Text("Alice"),
	})

	// The rejected image leaves the asset alone; the rest of the run
	// proceeds
	if !bytes.Equal(parts["BinData/image1.png"], srcParts["BinData/image1.png"]) {
		t.Error("asset was replaced despite a rejected media type")
	}
	if len(report.Rejected) != 1 {
		t.Fatalf("report.Rejected has %d entries, want 1", len(report.Rejected))
	}
	if !IsMediaTypeError(report.Rejected[0]) {
		t.Errorf("report.Rejected[0] = %T, want *MediaTypeError", report.Rejected[0])
	}
	if !bytes.Contains(parts["Contents/section0.xml"], []byte(">Alice<")) {
		t.Error("text fill did not proceed after the image rejection")
	}
}

func TestFillUnresolvedImage(t *testing.T) {
	// Manifest maps a different id, so the picture reference cannot be
	// resolved; the slot is reported and the image left unmodified
	data := buildContainerBytes([]testPart{
		{"Contents/content.hpf", manifestHPF(map[string]string{"other": "BinData/other.png"})},
		{"Contents/section0.xml", sectionXML(imageSlot("IMG_PHOTO", "1", "image1"))},
		{"BinData/image1.png", []byte("old")},
	})

	tmpl := prepareBytes(t, data)
	defer tmpl.Close()
	_, parts, report := fillToParts(t, tmpl, SlotValues{
		"IMG_PHOTO": Image("image/png", tinyPNG),
	})

	if !bytes.Equal(parts["BinData/image1.png"], []byte("old")) {
		t.Error("asset was replaced despite an unresolved reference")
	}
	if len(report.Unresolved) != 1 {
		t.Fatalf("report.Unresolved has %d entries, want 1", len(report.Unresolved))
	}
	if !IsResolveError(report.Unresolved[0]) {
		t.Errorf("report.Unresolved[0] = %T, want *ResolveError", report.Unresolved[0])
	}
}

func TestFillFaultIsolation(t *testing.T) {
	// A part that passes the textual pre-check but fails to parse is
	// emitted unchanged; every other part still fills, and the run
	// neither errors nor aborts
	broken := []byte(`<?xml version="1.0"?><hp:sec><hp:t>NAME</hp:t><unclosed`)
	data := buildContainerBytes([]testPart{
		{"Contents/content.hpf", manifestHPF(nil)},
		{"Contents/broken.xml", broken},
		{"Contents/section0.xml", sectionXML(textSlot("NAME", "1", "click here"))},
	})

	tmpl := prepareBytes(t, data)
	defer tmpl.Close()
	_, parts, report := fillToParts(t, tmpl, SlotValues{"NAME": Text("Alice")})

	if !bytes.Equal(parts["Contents/broken.xml"], broken) {
		t.Error("unparsable part was not emitted unchanged")
	}
	if !bytes.Contains(parts["Contents/section0.xml"], []byte(">Alice<")) {
		t.Error("healthy part did not fill")
	}
	if _, ok := report.PartErrors["Contents/broken.xml"]; !ok {
		t.Error("report.PartErrors is missing the broken part")
	}
}

func TestFillWithMarkerStripping(t *testing.T) {
	source := defaultTestContainer()
	tmpl := prepareBytes(t, source, WithStripPlaceholders(true))
	defer tmpl.Close()

	_, parts, _ := fillToParts(t, tmpl, SlotValues{"NAME": Text("Alice")})

	section := parts["Contents/section0.xml"]
	if bytes.Contains(section, []byte("fieldBegin")) || bytes.Contains(section, []byte("fieldEnd")) {
		t.Error("placeholder markers survived the strip pass")
	}
	if got := bytes.Count(section, []byte(">Alice<")); got != 2 {
		t.Errorf("section0 contains %d copies of Alice after stripping, want 2", got)
	}
}

func TestFillStripWithoutValues(t *testing.T) {
	// Stripping alone, with nothing submitted, still rewrites parts
	// that carry placeholder markers
	tmpl := prepareBytes(t, defaultTestContainer(), WithStripPlaceholders(true))
	defer tmpl.Close()

	_, parts, report := fillToParts(t, tmpl, SlotValues{})

	if bytes.Contains(parts["Contents/section0.xml"], []byte("fieldBegin")) {
		t.Error("placeholder markers survived a strip-only run")
	}
	if len(report.Changed) == 0 {
		t.Error("report.Changed is empty, want the stripped parts")
	}
}

func TestFillExampleScenario(t *testing.T) {
	// NAME twice (free-standing and in a table), IMG_PHOTO once; both
	// NAME occurrences read Alice, the photo asset equals the payload,
	// and the style part is byte-identical
	source := defaultTestContainer()
	_, srcParts, _ := readContainerParts(source)

	tmpl := prepareBytes(t, source)
	defer tmpl.Close()

	dir := tmpl.Slots()
	if !dir.Has("NAME") || !dir.Has("IMG_PHOTO") {
		t.Fatalf("slot directory = %v, want NAME and IMG_PHOTO", dir.Names())
	}

	_, parts, report := fillToParts(t, tmpl, SlotValues{
		"NAME":      Text("Alice"),
		"IMG_PHOTO": Image("image/png", tinyPNG),
	})

	if got := bytes.Count(parts["Contents/section0.xml"], []byte(">Alice<")); got != 2 {
		t.Errorf("section0 contains %d copies of Alice, want 2", got)
	}
	if !bytes.Equal(parts["BinData/image1.png"], tinyPNG) {
		t.Error("photo asset bytes do not equal the supplied PNG")
	}
	if !bytes.Equal(parts["styles.xml"], srcParts["styles.xml"]) {
		t.Error("style part is not byte-identical to the source")
	}
	if report.Replaced["IMG_PHOTO"] != "BinData/image1.png" {
		t.Errorf("report.Replaced = %v", report.Replaced)
	}
}

func TestFillAfterClose(t *testing.T) {
	tmpl := prepareBytes(t, defaultTestContainer())
	if err := tmpl.Close(); err != nil {
		t.Fatalf("Close() unexpected error = %v", err)
	}

	_, err := tmpl.Fill(SlotValues{})
	if err == nil {
		t.Fatal("Fill() after Close error = nil, want error")
	}
	if !strings.Contains(err.Error(), "closed") {
		t.Errorf("Fill() after Close error = %v, want mention of closed template", err)
	}
}

func TestFillRepeatedRunsAreIndependent(t *testing.T) {
	// No state leaks between Fill calls on one prepared template
	tmpl := prepareBytes(t, defaultTestContainer())
	defer tmpl.Close()

	_, first, _ := fillToParts(t, tmpl, SlotValues{"NAME": Text("Alice")})
	_, second, _ := fillToParts(t, tmpl, SlotValues{"NAME": Text("Bob")})

	if !bytes.Contains(first["Contents/section0.xml"], []byte(">Alice<")) {
		t.Error("first run missing its value")
	}
	if bytes.Contains(second["Contents/section0.xml"], []byte(">Alice<")) {
		t.Error("second run sees the first run's value")
	}
	if !bytes.Contains(second["Contents/section0.xml"], []byte(">Bob<")) {
		t.Error("second run missing its value")
	}
}
