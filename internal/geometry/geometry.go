// Package geometry knows just enough QR structure to tell which pixels of a
// rendered symbol belong to finder, timing and alignment patterns.
package geometry

import (
	"errors"
	"fmt"
	"image"
	"sync"
)

// ErrInvalidVersion is returned for versions outside 1..MaxVersion.
var ErrInvalidVersion = errors.New("invalid QR version")

const (
	MaxVersion = 40

	// finderModules is the finder pattern plus its separator.
	finderModules = 8
	timingModule  = 6
	// alignmentRadius is the half-width of the 5x5 alignment pattern.
	alignmentRadius = 2
)

// alignmentLocations holds the alignment pattern centres in module units,
// indexed by version-2.
var alignmentLocations = [...][]int{
	{6, 18},
	{6, 22},
	{6, 26},
	{6, 30},
	{6, 34},
	{6, 22, 38},
	{6, 24, 42},
	{6, 26, 46},
	{6, 28, 50},
	{6, 30, 54},
	{6, 32, 58},
	{6, 34, 62},
	{6, 26, 46, 66},
	{6, 26, 48, 70},
	{6, 26, 50, 74},
	{6, 30, 54, 78},
	{6, 30, 56, 82},
	{6, 30, 58, 86},
	{6, 34, 62, 90},
	{6, 28, 50, 72, 94},
	{6, 26, 50, 74, 98},
	{6, 30, 54, 78, 102},
	{6, 28, 54, 80, 106},
	{6, 32, 58, 84, 110},
	{6, 30, 58, 86, 114},
	{6, 34, 62, 90, 118},
	{6, 26, 50, 74, 98, 122},
	{6, 30, 54, 78, 102, 126},
	{6, 26, 52, 78, 104, 130},
	{6, 30, 56, 82, 108, 134},
	{6, 34, 60, 86, 112, 138},
	{6, 30, 58, 86, 114, 142},
	{6, 34, 62, 90, 118, 146},
	{6, 30, 54, 78, 102, 126, 150},
	{6, 24, 50, 76, 102, 128, 154},
	{6, 28, 54, 80, 106, 132, 158},
	{6, 32, 58, 84, 110, 136, 162},
	{6, 26, 54, 82, 110, 138, 166},
	{6, 30, 58, 86, 114, 142, 170},
}

func checkVersion(version int) error {
	if version < 1 || version > MaxVersion {
		return fmt.Errorf("%w: %d", ErrInvalidVersion, version)
	}
	return nil
}

// Modules returns the side length of the symbol in modules, quiet zone excluded.
func Modules(version int) int {
	return 17 + 4*version
}

// AlignmentCenters returns the ordered alignment centre coordinates for
// version. Version 1 has none.
func AlignmentCenters(version int) ([]int, error) {
	if err := checkVersion(version); err != nil {
		return nil, err
	}
	if version == 1 {
		return nil, nil
	}
	return alignmentLocations[version-2], nil
}

// Set is a dense set of pixel coordinates over a square symbol.
type Set struct {
	size int
	bits []bool
	n    int
}

func newSet(size int) *Set {
	return &Set{size: size, bits: make([]bool, size*size)}
}

// Size is the side length of the covered area in pixels.
func (s *Set) Size() int { return s.size }

// Len is the number of protected pixels.
func (s *Set) Len() int { return s.n }

// Contains reports whether (x, y) is protected. Coordinates outside the
// symbol are never protected.
func (s *Set) Contains(x, y int) bool {
	if s == nil || x < 0 || y < 0 || x >= s.size || y >= s.size {
		return false
	}
	return s.bits[y*s.size+x]
}

// Points lists the protected pixels in row-major order.
func (s *Set) Points() []image.Point {
	pts := make([]image.Point, 0, s.n)
	for i, ok := range s.bits {
		if ok {
			pts = append(pts, image.Pt(i%s.size, i/s.size))
		}
	}
	return pts
}

// addModules marks the module rectangle [mx0,mx1) x [my0,my1) scaled by scale.
func (s *Set) addModules(mx0, my0, mx1, my1, scale int) {
	x0, y0 := max(mx0*scale, 0), max(my0*scale, 0)
	x1, y1 := min(mx1*scale, s.size), min(my1*scale, s.size)
	for y := y0; y < y1; y++ {
		row := s.bits[y*s.size : (y+1)*s.size]
		for x := x0; x < x1; x++ {
			if !row[x] {
				row[x] = true
				s.n++
			}
		}
	}
}

// ProtectedPixels computes the structural pixels of a symbol rendered at
// scale pixels per module, in coordinates relative to the symbol's top-left
// module (quiet zone excluded).
//
// A nil version means the version is unknown: the result is empty and the
// caller keeps only its own fixed exclusions.
func ProtectedPixels(version *int, scale int) (*Set, error) {
	if scale < 1 {
		scale = 1
	}
	if version == nil {
		return newSet(0), nil
	}
	v := *version
	if err := checkVersion(v); err != nil {
		return nil, err
	}

	n := Modules(v)
	s := newSet(n * scale)

	// timing row and column
	s.addModules(0, timingModule, n, timingModule+1, scale)
	s.addModules(timingModule, 0, timingModule+1, n, scale)

	// finder corners: top-left, top-right, bottom-left
	s.addModules(0, 0, finderModules, finderModules, scale)
	s.addModules(n-finderModules, 0, n, finderModules, scale)
	s.addModules(0, n-finderModules, finderModules, n, scale)

	locs, _ := AlignmentCenters(v)
	last := len(locs) - 1
	for a := range locs {
		for b := range locs {
			if (a == 0 && b == 0) || (a == last && b == 0) || (a == 0 && b == last) {
				continue
			}
			s.addModules(
				locs[a]-alignmentRadius, locs[b]-alignmentRadius,
				locs[a]+alignmentRadius+1, locs[b]+alignmentRadius+1,
				scale,
			)
		}
	}
	return s, nil
}

type cacheKey struct {
	version int
	scale   int
}

var cache sync.Map

// Cached is ProtectedPixels memoised per (version, scale). Concurrent callers
// may compute the same set twice; the first stored copy wins.
func Cached(version *int, scale int) (*Set, error) {
	if version == nil {
		return ProtectedPixels(nil, scale)
	}
	key := cacheKey{version: *version, scale: scale}
	if s, ok := cache.Load(key); ok {
		return s.(*Set), nil
	}
	s, err := ProtectedPixels(version, scale)
	if err != nil {
		return nil, err
	}
	actual, _ := cache.LoadOrStore(key, s)
	return actual.(*Set), nil
}
