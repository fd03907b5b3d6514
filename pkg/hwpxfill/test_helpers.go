// test_helpers.go contains functions that are exposed only for testing purposes.
// These should not be used in production code.

package hwpxfill

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
)

// testPart is one named part of an in-memory test container
type testPart struct {
	name string
	data []byte
}

// buildContainerBytes assembles an in-memory HWPX container from parts in
// the given order
func buildContainerBytes(parts []testPart) []byte {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, p := range parts {
		fw, _ := w.Create(p.name)
		fw.Write(p.data)
	}
	w.Close()
	return buf.Bytes()
}

// readContainerParts reads a container back into part order and contents
func readContainerParts(data []byte) ([]string, map[string][]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, nil, err
	}
	var order []string
	parts := make(map[string][]byte)
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return nil, nil, err
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, nil, err
		}
		order = append(order, f.Name)
		parts[f.Name] = content
	}
	return order, parts, nil
}

// sectionXML wraps body markup in a section root with the HWPML namespaces
func sectionXML(body string) []byte {
	return []byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n" +
		`<hp:sec xmlns:hp="http://www.hancom.co.kr/hwpml/2011/paragraph"` +
		` xmlns:hc="http://www.hancom.co.kr/hwpml/2011/core">` + body + `</hp:sec>`)
}

// textSlot builds a paragraph holding one marker-delimited text slot with
// a single text leaf
func textSlot(name, id, content string) string {
	return fmt.Sprintf(`<hp:p><hp:run>`+
		`<hp:fieldBegin id="%s" type="CLICK_HERE" name="%s" fieldid="850"/>`+
		`<hp:t>%s</hp:t>`+
		`<hp:fieldEnd beginIDRef="%s"/>`+
		`</hp:run></hp:p>`, id, name, content, id)
}

// splitTextSlot builds a slot whose content is physically split across
// several text runs
func splitTextSlot(name, id string, pieces ...string) string {
	runs := ""
	for _, piece := range pieces {
		runs += `<hp:run><hp:t>` + piece + `</hp:t></hp:run>`
	}
	return fmt.Sprintf(`<hp:p><hp:run>`+
		`<hp:fieldBegin id="%s" type="CLICK_HERE" name="%s"/>`+
		`</hp:run>%s<hp:run>`+
		`<hp:fieldEnd beginIDRef="%s"/>`+
		`</hp:run></hp:p>`, id, name, runs, id)
}

// emptyTextSlot builds a slot whose marker range contains no text leaf
func emptyTextSlot(name, id string) string {
	return fmt.Sprintf(`<hp:p><hp:run>`+
		`<hp:fieldBegin id="%s" type="CLICK_HERE" name="%s"/>`+
		`<hp:fieldEnd beginIDRef="%s"/>`+
		`</hp:run></hp:p>`, id, name, id)
}

// tableSlot builds a one-cell table wrapping a text slot at the given
// cell address
func tableSlot(name, id string, row, col int, content string) string {
	return fmt.Sprintf(`<hp:tbl><hp:tr><hp:tc>`+
		`<hp:cellAddr rowAddr="%d" colAddr="%d"/>`+
		`%s`+
		`</hp:tc></hp:tr></hp:tbl>`, row, col, textSlot(name, id, content))
}

// imageSlot builds an image slot: markers followed by a picture element
// carrying an indirect binary-item reference
func imageSlot(name, id, binaryRef string) string {
	return fmt.Sprintf(`<hp:p><hp:run>`+
		`<hp:fieldBegin id="%s" type="CLICK_HERE" name="%s"/>`+
		`<hp:fieldEnd beginIDRef="%s"/>`+
		`<hp:pic><hc:img binaryItemIDRef="%s"/></hp:pic>`+
		`</hp:run></hp:p>`, id, name, id, binaryRef)
}

// manifestHPF builds a package manifest mapping binary ids to asset paths
func manifestHPF(items map[string]string) []byte {
	body := ""
	for id, href := range items {
		body += fmt.Sprintf(`<opf:item id="%s" href="%s" media-type="image/png"/>`, id, href)
	}
	return []byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n" +
		`<opf:package xmlns:opf="http://www.idpf.org/2007/opf/">` +
		`<opf:manifest>` + body + `</opf:manifest></opf:package>`)
}

// tinyPNG is a minimal stand-in for binary image bytes in tests; the
// engine never inspects payload content
var tinyPNG = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0x00, 0x01, 0x02, 0x03}

// defaultTestContainer builds the example scenario container: slot NAME
// occurring twice (free-standing and inside a table cell), slot IMG_PHOTO
// once, an unrelated style part, and the usual auxiliary parts
func defaultTestContainer() []byte {
	section := sectionXML(
		textSlot("NAME", "10", "click here") +
			tableSlot("NAME", "11", 0, 1, "click here") +
			textSlot("DATE", "12", "") +
			imageSlot("IMG_PHOTO", "13", "image1"),
	)
	return buildContainerBytes([]testPart{
		{"mimetype", []byte("application/hwp+zip")},
		{"version.xml", []byte(`<?xml version="1.0" encoding="UTF-8"?><hv:HCFVersion xmlns:hv="http://www.hancom.co.kr/hwpml/2011/version"/>`)},
		{"Contents/content.hpf", manifestHPF(map[string]string{"image1": "BinData/image1.png"})},
		{"Contents/header.xml", sectionXML(textSlot("DATE", "20", ""))},
		{"Contents/section0.xml", section},
		{"BinData/image1.png", []byte("old-image-bytes")},
		{"styles.xml", []byte(`<?xml version="1.0" encoding="UTF-8"?><hs:styles xmlns:hs="http://www.hancom.co.kr/hwpml/2011/style"/>`)},
	})
}
