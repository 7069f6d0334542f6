// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package schema

import "github.com/specialistvlad/actionref/internal/keypath"

// FlatKey pairs a key with its full path from the document root.
type FlatKey struct {
	Path keypath.Path
	Key  *Key
}

// Flatten lists keys depth-first, parents before their children.
func Flatten(keys []*Key) []FlatKey {
	var out []FlatKey
	var walk func(parent keypath.Path, keys []*Key)
	walk = func(parent keypath.Path, keys []*Key) {
		for _, k := range keys {
			p := parent.Child(k.Name, k.Type.IsArray())
			out = append(out, FlatKey{Path: p, Key: k})
			walk(p, k.Children)
		}
	}
	walk(nil, keys)
	return out
}

// Lookup finds the key at path p, or nil.
func Lookup(keys []*Key, p keypath.Path) *Key {
	var found *Key
	for _, seg := range p {
		found = findKey(keys, seg.Name)
		if found == nil || found.Type.IsArray() != seg.Array {
			return nil
		}
		keys = found.Children
	}
	return found
}
