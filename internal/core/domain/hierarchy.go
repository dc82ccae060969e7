package domain

import (
	"fmt"
	"strings"
)

// HierarchyPath is the logical destination of a file under the production
// namespace. It is a '/'-separated sequence of segments, independent of any
// physical storage root.
type HierarchyPath string

// NewHierarchyPath joins segments into a validated path.
func NewHierarchyPath(segments ...string) (HierarchyPath, error) {
	return ParseHierarchyPath(strings.Join(segments, "/"))
}

// ParseHierarchyPath validates a path produced by a handler or delegate.
// Leading and trailing separators are not allowed, nor are empty, "." or
// ".." segments: a hierarchy path can never escape its storage root.
func ParseHierarchyPath(s string) (HierarchyPath, error) {
	if s == "" {
		return "", fmt.Errorf("%w: empty hierarchy path", ErrResolution)
	}
	for _, seg := range strings.Split(s, "/") {
		switch seg {
		case "", ".", "..":
			return "", fmt.Errorf("%w: invalid segment %q in %q", ErrResolution, seg, s)
		}
		if strings.ContainsAny(seg, "\\\x00\n\r") {
			return "", fmt.Errorf("%w: invalid character in segment %q", ErrResolution, seg)
		}
	}
	return HierarchyPath(s), nil
}

// Segments returns the path split into its segments.
func (p HierarchyPath) Segments() []string {
	if p == "" {
		return nil
	}
	return strings.Split(string(p), "/")
}

// Base returns the last segment, normally the file name.
func (p HierarchyPath) Base() string {
	segs := p.Segments()
	if len(segs) == 0 {
		return ""
	}
	return segs[len(segs)-1]
}

// Under prefixes the path with a root namespace, e.g. an object-store prefix.
func (p HierarchyPath) Under(root string) string {
	root = strings.Trim(root, "/")
	if root == "" {
		return string(p)
	}
	return root + "/" + string(p)
}

// String returns the string representation.
func (p HierarchyPath) String() string {
	return string(p)
}
