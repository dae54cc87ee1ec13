/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package flatten

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidPath is returned when a path cannot be parsed.
var ErrInvalidPath = errors.New("invalid path")

// Segment is one step of a path: either an object key or an array index.
type Segment struct {
	Key     string
	Index   int
	IsIndex bool
}

func (s Segment) String() string {
	if s.IsIndex {
		return "[" + strconv.Itoa(s.Index) + "]"
	}

	return s.Key
}

// Parse splits a path such as "a.b[2].c" into segments.
func Parse(path string) ([]Segment, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidPath)
	}

	var segments []Segment

	for i := 0; i < len(path); {
		switch path[i] {
		case '[':
			end := strings.IndexByte(path[i:], ']')
			if end < 0 {
				return nil, fmt.Errorf("%w: unterminated index in '%s'", ErrInvalidPath, path)
			}

			idx, err := strconv.Atoi(path[i+1 : i+end])
			if err != nil || idx < 0 {
				return nil, fmt.Errorf("%w: bad index in '%s'", ErrInvalidPath, path)
			}

			segments = append(segments, Segment{Index: idx, IsIndex: true})
			i += end + 1
		case '.':
			if i == 0 || i == len(path)-1 || path[i+1] == '.' || path[i+1] == '[' {
				return nil, fmt.Errorf("%w: empty key in '%s'", ErrInvalidPath, path)
			}

			i++
		case ']':
			return nil, fmt.Errorf("%w: unexpected ']' in '%s'", ErrInvalidPath, path)
		default:
			if i > 0 && path[i-1] == ']' {
				return nil, fmt.Errorf("%w: missing '.' before key in '%s'", ErrInvalidPath, path)
			}

			end := strings.IndexAny(path[i:], ".[]")
			if end < 0 {
				end = len(path) - i
			}

			segments = append(segments, Segment{Key: path[i : i+end]})
			i += end
		}
	}

	return segments, nil
}

// Format renders segments back into path notation.
func Format(segments []Segment) string {
	var path string

	for _, s := range segments {
		if s.IsIndex {
			path = JoinIndex(path, s.Index)
		} else {
			path = JoinKey(path, s.Key)
		}
	}

	return path
}

// Lookup returns the value found at segments within root.
func Lookup(root interface{}, segments []Segment) (interface{}, bool) {
	current := root

	for _, s := range segments {
		next, ok := child(current, s)
		if !ok {
			return nil, false
		}

		current = next
	}

	return current, true
}

// Delete removes the object key addressed by segments from root and reports whether it was present.
// Array elements cannot be deleted because doing so would shift the paths of their siblings.
func Delete(root interface{}, segments []Segment) (bool, error) {
	if len(segments) == 0 {
		return false, fmt.Errorf("%w: nothing to delete", ErrInvalidPath)
	}

	last := segments[len(segments)-1]
	if last.IsIndex {
		return false, fmt.Errorf("%w: cannot delete array element '%s'", ErrInvalidPath, Format(segments))
	}

	parent, ok := Lookup(root, segments[:len(segments)-1])
	if !ok {
		return false, nil
	}

	m, ok := parent.(map[string]interface{})
	if !ok {
		return false, nil
	}

	if _, exists := m[last.Key]; !exists {
		return false, nil
	}

	delete(m, last.Key)

	return true, nil
}

func child(v interface{}, s Segment) (interface{}, bool) {
	if s.IsIndex {
		arr, ok := v.([]interface{})
		if !ok || s.Index >= len(arr) {
			return nil, false
		}

		return arr[s.Index], true
	}

	m, ok := v.(map[string]interface{})
	if !ok {
		return nil, false
	}

	e, ok := m[s.Key]

	return e, ok
}
