package keypath

// Segment represents a single component of a key path, e.g. `ports[]`.
type Segment struct {
	Name  string
	Array bool
}

// Path is the structured representation of a configuration key path.
type Path []Segment

// Child returns a new path with name appended. The receiver is not modified.
func (p Path) Child(name string, array bool) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, Segment{Name: name, Array: array})
}

// Last returns the final segment, or the zero Segment for an empty path.
func (p Path) Last() Segment {
	if len(p) == 0 {
		return Segment{}
	}
	return p[len(p)-1]
}

// Parent returns the path without its final segment.
func (p Path) Parent() Path {
	if len(p) == 0 {
		return nil
	}
	return p[:len(p)-1]
}
