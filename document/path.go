package document

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Path errors. Returned errors wrap one of these, so callers can use errors.Is.
var (
	ErrEmptyPath       = errors.New("path cannot be null nor empty")
	ErrFieldNotFound   = errors.New("field not present")
	ErrInvalidPath     = errors.New("cannot resolve path")
	ErrIngestReadOnly  = errors.New("ingest metadata is read-only")
	ErrIndexOutOfRange = errors.New("index out of bounds")
)

const sourcePrefix = "_source."

// GetField resolves a dot-separated path. Numeric segments index into lists.
// "_ingest" and paths starting with "_ingest." read the ingest metadata.
func (d *Document) GetField(path string) (any, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	if key, ok := ingestPath(path); ok {
		if key == "" {
			return d.IngestMetadata(), nil
		}
		v, found := d.IngestMetadata()[key]
		if !found {
			return nil, fmt.Errorf("%w: field [%s] not present as part of path [%s]", ErrFieldNotFound, key, path)
		}
		return v, nil
	}

	parts := splitPath(path)
	var current any = d.sourceAndMetadata
	for _, part := range parts {
		next, err := step(current, part, path)
		if err != nil {
			return nil, err
		}
		current = next
	}
	return current, nil
}

// HasField reports whether path resolves to a value.
func (d *Document) HasField(path string) bool {
	_, err := d.GetField(path)
	return err == nil
}

// SetField stores value at path, creating intermediate objects as needed.
// Existing list elements can be replaced by index; lists are never grown.
func (d *Document) SetField(path string, value any) error {
	if path == "" {
		return ErrEmptyPath
	}
	if _, ok := ingestPath(path); ok {
		return fmt.Errorf("%w: cannot set [%s]", ErrIngestReadOnly, path)
	}

	parts := splitPath(path)
	parent, err := d.parentOf(parts, path, true)
	if err != nil {
		return err
	}
	last := parts[len(parts)-1]
	switch p := parent.(type) {
	case map[string]any:
		p[last] = value
		return nil
	case []any:
		idx, err := listIndex(p, last, path)
		if err != nil {
			return err
		}
		p[idx] = value
		return nil
	default:
		return fmt.Errorf("%w: cannot set [%s] with parent object of type [%T] as part of path [%s]", ErrInvalidPath, last, parent, path)
	}
}

// RemoveField deletes the value at path. A missing field is an error.
func (d *Document) RemoveField(path string) error {
	if path == "" {
		return ErrEmptyPath
	}
	if _, ok := ingestPath(path); ok {
		return fmt.Errorf("%w: cannot remove [%s]", ErrIngestReadOnly, path)
	}

	parts := splitPath(path)
	parent, err := d.parentOf(parts, path, false)
	if err != nil {
		return err
	}
	last := parts[len(parts)-1]
	switch p := parent.(type) {
	case map[string]any:
		if _, ok := p[last]; !ok {
			return fmt.Errorf("%w: field [%s] not present as part of path [%s]", ErrFieldNotFound, last, path)
		}
		delete(p, last)
		return nil
	case []any:
		idx, err := listIndex(p, last, path)
		if err != nil {
			return err
		}
		// Removing shifts the remaining elements; rewrite the slice in its owner.
		return d.SetField(strings.Join(parts[:len(parts)-1], "."), append(p[:idx:idx], p[idx+1:]...))
	default:
		return fmt.Errorf("%w: cannot remove [%s] from parent object of type [%T] as part of path [%s]", ErrInvalidPath, last, parent, path)
	}
}

// parentOf walks all but the last segment. When create is set, missing map
// entries become empty objects.
func (d *Document) parentOf(parts []string, path string, create bool) (any, error) {
	var current any = d.sourceAndMetadata
	for _, part := range parts[:len(parts)-1] {
		if m, ok := current.(map[string]any); ok && create {
			next, exists := m[part]
			if !exists || next == nil {
				next = make(map[string]any)
				m[part] = next
			}
			current = next
			continue
		}
		next, err := step(current, part, path)
		if err != nil {
			return nil, err
		}
		current = next
	}
	return current, nil
}

func step(current any, part, path string) (any, error) {
	switch c := current.(type) {
	case map[string]any:
		v, ok := c[part]
		if !ok {
			return nil, fmt.Errorf("%w: field [%s] not present as part of path [%s]", ErrFieldNotFound, part, path)
		}
		return v, nil
	case []any:
		idx, err := listIndex(c, part, path)
		if err != nil {
			return nil, err
		}
		return c[idx], nil
	case nil:
		return nil, fmt.Errorf("%w: cannot resolve [%s] from null as part of path [%s]", ErrInvalidPath, part, path)
	default:
		return nil, fmt.Errorf("%w: cannot resolve [%s] from object of type [%T] as part of path [%s]", ErrInvalidPath, part, current, path)
	}
}

func listIndex(list []any, part, path string) (int, error) {
	idx, err := strconv.Atoi(part)
	if err != nil {
		return 0, fmt.Errorf("%w: [%s] is not an integer, cannot be used as an index as part of path [%s]", ErrInvalidPath, part, path)
	}
	if idx < 0 || idx >= len(list) {
		return 0, fmt.Errorf("%w: [%s] is out of bounds for array with length [%d] as part of path [%s]", ErrIndexOutOfRange, part, len(list), path)
	}
	return idx, nil
}

// ingestPath reports whether path addresses the ingest metadata. The bare
// key addresses the whole mapping and yields an empty key.
func ingestPath(path string) (string, bool) {
	if path == IngestKey {
		return "", true
	}
	if strings.HasPrefix(path, IngestKey+".") {
		return strings.TrimPrefix(path, IngestKey+"."), true
	}
	return "", false
}

func splitPath(path string) []string {
	return strings.Split(strings.TrimPrefix(path, sourcePrefix), ".")
}
