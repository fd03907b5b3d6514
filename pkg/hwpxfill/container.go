package hwpxfill

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
)

// ContainerReader handles reading HWPX containers. An HWPX container is a
// zip archive of named parts: UTF-8 XML parts under the content area,
// opaque binary assets under the binary area, plus auxiliary package parts.
type ContainerReader struct {
	reader *zip.Reader
	parts  map[string]*zip.File
	order  []string
}

// NewContainerReader creates a new container reader. The part order of the
// source archive is preserved; every rewrite emits parts in this order.
func NewContainerReader(r io.ReaderAt, size int64) (*ContainerReader, error) {
	zipReader, err := zip.NewReader(r, size)
	if err != nil {
		return nil, NewContainerError("open", "", err)
	}

	cr := &ContainerReader{
		reader: zipReader,
		parts:  make(map[string]*zip.File),
	}

	for _, file := range zipReader.File {
		cr.parts[file.Name] = file
		cr.order = append(cr.order, file.Name)
	}

	// A container without a content area has nothing to fill
	hasContent := false
	for _, name := range cr.order {
		if strings.HasSuffix(strings.ToLower(name), ".xml") {
			hasContent = true
			break
		}
	}
	if !hasContent {
		return nil, NewContainerError("open", "", fmt.Errorf("not a valid HWPX container: no XML parts"))
	}

	return cr, nil
}

// ContainerReaderFromFile creates a ContainerReader from a file path
func ContainerReaderFromFile(path string) (*ContainerReader, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, NewContainerError("read", path, err)
	}

	reader := bytes.NewReader(content)
	return NewContainerReader(reader, int64(len(content)))
}

// GetPart retrieves the content of a specific part
func (cr *ContainerReader) GetPart(name string) ([]byte, error) {
	file, ok := cr.parts[name]
	if !ok {
		return nil, fmt.Errorf("part %s not found", name)
	}

	rc, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open part %s: %w", name, err)
	}
	defer rc.Close()

	content, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read part %s: %w", name, err)
	}

	return content, nil
}

// HasPart reports whether the container holds a part with the given name
func (cr *ContainerReader) HasPart(name string) bool {
	_, ok := cr.parts[name]
	return ok
}

// PartNames returns all part names in archive order
func (cr *ContainerReader) PartNames() []string {
	names := make([]string, len(cr.order))
	copy(names, cr.order)
	return names
}

// Len returns the number of parts in the container
func (cr *ContainerReader) Len() int {
	return len(cr.order)
}

// isManifestPart reports whether a part may carry binary-item references.
// Relationship structure varies between producers, so both the package
// manifest (.hpf) and every XML part are candidates.
func isManifestPart(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".xml") || strings.HasSuffix(lower, ".hpf")
}
