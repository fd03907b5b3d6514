package hwpxfill

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// ValueKind distinguishes the two submission payload shapes
type ValueKind int

const (
	ValueText ValueKind = iota
	ValueImage
)

// Value is a submitted slot value: either plain text or an image payload
// with a declared media type. The variant is decided once, when the value
// is constructed at the boundary, and never re-inferred downstream.
type Value struct {
	kind      ValueKind
	text      string
	mediaType string
	data      []byte
}

// Text constructs a text value
func Text(s string) Value {
	return Value{kind: ValueText, text: s}
}

// Image constructs an image value from a declared media type and raw,
// already-decoded bytes. The payload is written verbatim on success; no
// re-encoding or content validation happens beyond the media-type
// allow-list check at fill time.
func Image(mediaType string, data []byte) Value {
	return Value{
		kind:      ValueImage,
		mediaType: normalizeMediaType(mediaType),
		data:      data,
	}
}

// ImageFromDataURI constructs an image value from a base64 data URI
// (data:<mediatype>;base64,<data>)
func ImageFromDataURI(dataURI string) (Value, error) {
	if dataURI == "" {
		return Value{}, fmt.Errorf("empty data URI")
	}

	if !strings.HasPrefix(dataURI, "data:") {
		return Value{}, fmt.Errorf("invalid data URI format")
	}
	dataURI = dataURI[5:]

	commaIndex := strings.Index(dataURI, ",")
	if commaIndex == -1 {
		return Value{}, fmt.Errorf("invalid data URI format")
	}

	metadata := dataURI[:commaIndex]
	dataStr := dataURI[commaIndex+1:]

	if dataStr == "" {
		return Value{}, fmt.Errorf("no image data")
	}

	if !strings.HasSuffix(metadata, ";base64") {
		return Value{}, fmt.Errorf("missing base64 marker")
	}
	mediaType := strings.TrimSuffix(metadata, ";base64")

	data, err := base64.StdEncoding.DecodeString(dataStr)
	if err != nil {
		return Value{}, fmt.Errorf("invalid base64 data: %w", err)
	}

	return Image(mediaType, data), nil
}

// Kind returns the value variant
func (v Value) Kind() ValueKind {
	return v.kind
}

// Text returns the text payload (empty for image values)
func (v Value) Text() string {
	return v.text
}

// MediaType returns the declared media type (empty for text values)
func (v Value) MediaType() string {
	return v.mediaType
}

// Data returns the raw image bytes (nil for text values)
func (v Value) Data() []byte {
	return v.data
}

// SlotValues maps slot names to submitted values. Names unknown to the
// slot directory are ignored; slots absent from the mapping are left
// exactly as found in the source.
type SlotValues map[string]Value

// normalizeMediaType lowercases a declared media type and accepts bare
// subtypes ("png" for "image/png"). "jpg" is folded into "image/jpeg".
func normalizeMediaType(mt string) string {
	mt = strings.ToLower(strings.TrimSpace(mt))
	if mt == "" {
		return ""
	}
	if !strings.Contains(mt, "/") {
		mt = "image/" + mt
	}
	if mt == "image/jpg" {
		mt = "image/jpeg"
	}
	return mt
}

// mediaTypeAllowed checks a declared media type against the configured
// allow-list
func (c *Config) mediaTypeAllowed(mediaType string) bool {
	mt := normalizeMediaType(mediaType)
	for _, allowed := range c.AllowedMediaTypes {
		if normalizeMediaType(allowed) == mt {
			return true
		}
	}
	return false
}

// partitionValues splits submitted values into text and image groups,
// keeping only names the directory knows. A value whose variant does not
// match its slot's kind is dropped with a warning rather than guessed at.
func partitionValues(values SlotValues, dir *Directory) (map[string]string, map[string]Value) {
	textVals := make(map[string]string)
	imageVals := make(map[string]Value)

	for name, val := range values {
		if !dir.Has(name) {
			GetLogger().Debug("ignoring unknown slot name %q", name)
			continue
		}

		kind := dir.Kind(name)
		switch {
		case kind == SlotText && val.Kind() == ValueText:
			textVals[name] = val.Text()
		case kind == SlotImage && val.Kind() == ValueImage:
			imageVals[name] = val
		default:
			GetLogger().Warn("value for slot %q does not match its %s kind, skipping", name, kind)
		}
	}

	return textVals, imageVals
}
