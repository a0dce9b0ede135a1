// Package font implements the Font Matcher & Glyph Cache (§4.2): face
// loading and matching, text shaping, and glyph rasterization with
// caching.
//
// A Face separates "a font file" from "a font file at a concrete
// size"; faces are matched on the (family, weight, italic) tuple, and
// variation axes are not considered. Shaping is backed by a real
// HarfBuzz reimplementation (github.com/benoitkugler/textlayout/harfbuzz)
// rather than a from-scratch OpenType layout engine.
package font

import (
	"bytes"
	"errors"
	"fmt"
	"sync"

	"github.com/benoitkugler/textlayout/fonts/truetype"
	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"github.com/afishhh/subrandr/core/style"
)

// FaceID identifies a concrete, loaded font face (one weight/italic
// variant of one family, not yet scaled to a size). Stable for the
// lifetime of the process; used as part of glyph- and shaping-cache
// keys (§4.2).
type FaceID uint32

// ErrFontNotFound is returned by Match when no family in a style's
// family_list matched any candidate and even the process-wide
// last-resort face failed to load (§4.2).
var ErrFontNotFound = errors.New("font: no matching face found")

// Face is a loaded, parsed font file together with the metadata the
// matcher scored it on.
type Face struct {
	ID       FaceID
	Family   string
	Weight   style.Weight
	Italic   bool
	Data     []byte
	SFNT     *sfnt.Font      // golang.org/x/image/font/sfnt parse, used for metrics + outlines
	HBFace   *truetype.Font  // benoitkugler/textlayout parse, used for shaping
}

// Metrics returns face-wide metrics in font units scaled to size
// (26.6-free float64 here; callers convert to fixed.T once multiplied
// by the target size, since these are ratios of the font's unitsPerEm).
type Metrics struct {
	Ascent, Descent, LineGap float64 // in units of 1 em
	UnderlinePosition        float64
	UnderlineThickness       float64
}

// LoadFace parses raw font bytes into a Face usable for both metrics
// queries and shaping. id should be a process-unique identifier
// assigned by the caller (normally font.Matcher).
func LoadFace(id FaceID, family string, weight style.Weight, italic bool, data []byte) (*Face, error) {
	sf, err := sfnt.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("font: parsing sfnt: %w", err)
	}
	hbFace, err := truetype.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("font: parsing truetype for shaping: %w", err)
	}
	return &Face{
		ID:     id,
		Family: family,
		Weight: weight,
		Italic: italic,
		Data:   data,
		SFNT:   sf,
		HBFace: hbFace,
	}, nil
}

// Metrics computes face metrics as ratios of 1 em, reading the sfnt
// hmtx/OS2 tables at a large probe size and normalizing, rather than
// tying them to one point size (subrandr rescales per §4.3/§4.4 as
// each run's font_size_pt demands).
func (f *Face) Metrics() Metrics {
	const probeSize = 1000 // large probe size to minimize hinting/rounding error
	buf := &sfnt.Buffer{}
	m, err := f.SFNT.Metrics(buf, fixed.I(probeSize), xfont.HintingNone)
	if err != nil {
		return Metrics{Ascent: 0.8, Descent: 0.2, LineGap: 0.1, UnderlinePosition: -0.1, UnderlineThickness: 0.05}
	}
	scale := 1.0 / probeSize
	return Metrics{
		Ascent:              float64(m.Ascent) / 64 * scale,
		Descent:             float64(m.Descent) / 64 * scale,
		LineGap:             float64(m.Height-m.Ascent-m.Descent) / 64 * scale,
		UnderlinePosition:   -float64(m.Descent) / 64 * scale * 0.3,
		UnderlineThickness:  0.05,
	}
}

type faceRegistry struct {
	mu    sync.Mutex
	faces map[FaceID]*Face
	next  FaceID
}

func newFaceRegistry() *faceRegistry {
	return &faceRegistry{faces: make(map[FaceID]*Face)}
}

func (r *faceRegistry) store(family string, weight style.Weight, italic bool, data []byte) (*Face, error) {
	r.mu.Lock()
	id := r.next
	r.next++
	r.mu.Unlock()

	face, err := LoadFace(id, family, weight, italic, data)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.faces[id] = face
	r.mu.Unlock()
	return face, nil
}

func (r *faceRegistry) get(id FaceID) (*Face, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.faces[id]
	return f, ok
}
