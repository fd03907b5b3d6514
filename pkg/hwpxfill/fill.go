package hwpxfill

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"sync"
)

// PreparedTemplate is a source container with its slot directory already
// built. The directory comes from the unmodified source, before any value
// is applied, and is shared read-only by every Fill call; each Fill
// produces a fresh output container with no state carried between calls.
type PreparedTemplate struct {
	reader *ContainerReader
	source []byte
	dir    *Directory
	config *Config
	closed bool
	mu     sync.Mutex
}

// prepare is the internal implementation of template preparation
func prepare(r io.Reader, config *Config) (*PreparedTemplate, error) {
	buf := new(bytes.Buffer)
	size, err := buf.ReadFrom(r)
	if err != nil {
		return nil, NewContainerError("read", "", err)
	}

	source := buf.Bytes()
	reader, err := NewContainerReader(bytes.NewReader(source), size)
	if err != nil {
		return nil, err
	}

	return &PreparedTemplate{
		reader: reader,
		source: source,
		dir:    buildDirectory(reader, config),
		config: config,
	}, nil
}

// Slots returns the slot directory built from the source container
func (pt *PreparedTemplate) Slots() *Directory {
	return pt.dir
}

// Report describes what one Fill run changed and what it recovered from.
// Nothing in it is fatal: every entry corresponds to a degraded, not
// aborted, outcome.
type Report struct {
	// Changed lists the XML parts whose bytes were rewritten
	Changed []string
	// Replaced maps image slot names to the binary-asset part overwritten
	Replaced map[string]string
	// Unresolved collects image slots whose binary reference could not be
	// mapped to an asset; their images were left unmodified
	Unresolved []error
	// Rejected collects image submissions outside the media allow-list
	Rejected []error
	// PartErrors maps part names to recovered parse/serialize failures;
	// those parts were emitted unchanged
	PartErrors map[string]error
}

func newReport() *Report {
	return &Report{
		Replaced:   make(map[string]string),
		PartErrors: make(map[string]error),
	}
}

// Err aggregates every recovered failure of the run into one error, or
// nil when the run was fully clean. Useful for callers that treat any
// degradation as a failure.
func (r *Report) Err() error {
	multi := NewMultiError()
	for _, err := range r.Unresolved {
		multi.Add(err)
	}
	for _, err := range r.Rejected {
		multi.Add(err)
	}
	for _, err := range r.PartErrors {
		multi.Add(err)
	}
	return multi.Err()
}

// Fill produces a new container with the submitted values applied and
// returns a reader over its bytes. See FillWithReport for details.
func (pt *PreparedTemplate) Fill(values SlotValues) (io.Reader, error) {
	out, _, err := pt.FillWithReport(values)
	return out, err
}

// FillWithReport produces a new container with the submitted values
// applied, along with a report of what changed. Per-part and per-slot
// failures degrade gracefully and end up in the report; the only error
// returned is a container-level one.
//
// For every source part exactly one of three things happens, in source
// order: a byte-identical pass-through (the default), a text rewrite, or
// a binary swap for a resolved image asset.
func (pt *PreparedTemplate) FillWithReport(values SlotValues) (io.Reader, *Report, error) {
	pt.mu.Lock()
	closed := pt.closed
	pt.mu.Unlock()
	if closed {
		return nil, nil, NewContainerError("fill", "", fmt.Errorf("template is closed"))
	}

	cfg := pt.config
	report := newReport()
	textVals, imageVals := partitionValues(values, pt.dir)

	// Resolve every image slot to the asset part its payload replaces,
	// before touching any output
	payloadFor := pt.resolveImageTargets(imageVals, report)

	buf := new(bytes.Buffer)
	w := zip.NewWriter(buf)

	for _, name := range pt.reader.PartNames() {
		data, err := pt.reader.GetPart(name)
		if err != nil {
			return nil, nil, NewContainerError("read", name, err)
		}

		out := data
		switch {
		case payloadFor[name] != nil:
			out = payloadFor[name]

		case cfg.isContentPart(name) && pt.isRewriteCandidate(data, textVals):
			rewritten, changed, err := fillPart(data, name, textVals, cfg.StripPlaceholders, cfg.PlaceholderType)
			if err != nil {
				// Emit the original bytes; one bad part never aborts the run
				GetLogger().WithField("part", name).Warn("emitting part unchanged: %v", err)
				report.PartErrors[name] = err
			} else if changed {
				out = rewritten
				report.Changed = append(report.Changed, name)
			}
		}

		fw, err := w.Create(name)
		if err != nil {
			return nil, nil, NewContainerError("write", name, err)
		}
		if _, err := fw.Write(out); err != nil {
			return nil, nil, NewContainerError("write", name, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, nil, NewContainerError("write", "", err)
	}

	return bytes.NewReader(buf.Bytes()), report, nil
}

// isRewriteCandidate is the cheap pre-check gating which parts are even
// parsed: a part's raw bytes must textually contain a pending slot name
// (or, when stripping, the placeholder type tag) before any structural
// work happens on it.
func (pt *PreparedTemplate) isRewriteCandidate(data []byte, textVals map[string]string) bool {
	for name := range textVals {
		if bytes.Contains(data, []byte(name)) {
			return true
		}
	}
	if pt.config.StripPlaceholders && bytes.Contains(data, []byte(pt.config.PlaceholderType)) {
		return true
	}
	return false
}

// resolveImageTargets maps each accepted image payload to the binary-asset
// part it overwrites. Resolution failures are reported per slot and leave
// the corresponding image unmodified.
func (pt *PreparedTemplate) resolveImageTargets(imageVals map[string]Value, report *Report) map[string][]byte {
	payloadFor := make(map[string][]byte)
	if len(imageVals) == 0 {
		return payloadFor
	}

	cfg := pt.config

	// Manifest candidates, preloaded once in archive order
	var manifestOrder []string
	manifestParts := make(map[string][]byte)
	for _, name := range pt.reader.PartNames() {
		if !isManifestPart(name) {
			continue
		}
		data, err := pt.reader.GetPart(name)
		if err != nil {
			continue
		}
		manifestOrder = append(manifestOrder, name)
		manifestParts[name] = data
	}

	// Parsed content parts are shared across slots of this run
	trees := make(map[string]*partTree)
	contentTree := func(part string) *partTree {
		if tree, ok := trees[part]; ok {
			return tree
		}
		tree, err := parsePart(manifestParts[part])
		if err != nil {
			trees[part] = nil
			return nil
		}
		trees[part] = tree
		return tree
	}

	for slot, val := range imageVals {
		if !cfg.mediaTypeAllowed(val.MediaType()) {
			err := NewMediaTypeError(slot, val.MediaType())
			GetLogger().Warn("%v", err)
			report.Rejected = append(report.Rejected, err)
			continue
		}

		binaryID := ""
		for _, occ := range pt.dir.Occurrences(slot) {
			tree := contentTree(occ.Part)
			if tree == nil {
				continue
			}
			if id, ok := pictureBinaryRef(tree, slot); ok {
				binaryID = id
				break
			}
		}

		path, ok := "", false
		if binaryID != "" {
			path, ok = resolveAssetPath(manifestOrder, manifestParts, binaryID, cfg.BinaryRoot)
		}
		if !ok || !pt.reader.HasPart(path) {
			err := NewResolveError(slot, binaryID)
			GetLogger().Warn("%v", err)
			report.Unresolved = append(report.Unresolved, err)
			continue
		}

		payloadFor[path] = val.Data()
		report.Replaced[slot] = path
	}

	return payloadFor
}

// Close releases any resources held by the prepared template.
// After calling Close, the template should not be used.
func (pt *PreparedTemplate) Close() error {
	pt.mu.Lock()
	defer pt.mu.Unlock()

	if pt.closed {
		return nil
	}
	pt.closed = true
	pt.reader = nil
	pt.source = nil
	return nil
}
