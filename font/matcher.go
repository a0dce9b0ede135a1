package font

import (
	"sync"

	"github.com/npillmayer/schuko/tracing"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/afishhh/subrandr/core/style"
	"github.com/afishhh/subrandr/internal/trace"
)

func tracer() tracing.Trace {
	return trace.For("subrandr.font")
}

// Matcher implements §4.2's Match operation: it tries each family in
// a style's family_list against a list of Providers in order, scores
// the candidates each one returns, and caches the winning Face per
// matched key so repeated Match calls for the same style are O(1).
//
// Matching is mutex-guarded maps of normalized keys to loaded faces,
// keyed on the richer (family, weight, italic) tuple §4.2 specifies,
// with italic/weight scoring against subrandr's style.Weight/bool
// pair rather than an upstream font package's Style/Weight enums.
type Matcher struct {
	mu        sync.Mutex
	providers []Provider
	faces     *faceRegistry
	// cache maps a resolved match key to the match result, so repeated
	// lookups for identical (family, weight, italic) tuples are free.
	cache map[matchKey]matchResult
	// fallback is the process-wide last-resort face (§4.2).
	fallback     *Face
	fallbackOnce sync.Once
	fallbackErr  error
}

type matchKey struct {
	family string
	weight style.Weight
	italic bool
}

// NewMatcher creates a Matcher that queries providers in the given
// order. The best-scoring candidate across all providers wins; an
// earlier provider takes priority only among equally scored
// candidates.
func NewMatcher(providers ...Provider) *Matcher {
	return &Matcher{
		providers: providers,
		faces:     newFaceRegistry(),
		cache:     make(map[matchKey]matchResult),
	}
}

// AddProvider appends another Provider to be queried after the ones
// already registered.
func (m *Matcher) AddProvider(p Provider) {
	m.mu.Lock()
	m.providers = append(m.providers, p)
	m.mu.Unlock()
}

// matchResult carries a usable face plus whether the originally
// requested italic flag was honored (§4.2 step 1: "if none, falls
// back with a flag").
type matchResult struct {
	Face          *Face
	ItalicFellBack bool
}

// Match resolves sty.FamilyList against the registered providers,
// applying the scoring order from §4.2: italic exact match first,
// then minimum weight distance. Codepoint coverage (§4.2's third
// criterion) is deferred to the itemizer in layout/inline, which has
// the string being shaped; Match here only picks the best face it can
// without that context.
func (m *Matcher) Match(sty style.Style) (matchResult, error) {
	for _, family := range sty.FamilyList {
		if res, ok := m.matchFamily(family, sty.Weight, sty.Italic); ok {
			return res, nil
		}
	}
	tracer().Infof("font matcher: no family in %v matched, using fallback", sty.FamilyList)
	face, err := m.fallbackFace()
	if err != nil {
		return matchResult{}, err
	}
	return matchResult{Face: face, ItalicFellBack: sty.Italic}, nil
}

// MatchExact resolves a single family name against the registered
// providers only, reporting ok=false if none of them has it —
// without consulting family_list order or the process-wide fallback
// face the way Match does. It exists so a caller that itself knows
// how to judge whether a match is good enough (layout/inline's
// itemizer, weighing codepoint coverage per §4.2 step 1) can walk
// family_list itself and decide when to give up, rather than Match
// silently committing to the first family that merely exists.
func (m *Matcher) MatchExact(family string, weight style.Weight, italic bool) (matchResult, bool) {
	return m.matchFamily(family, weight, italic)
}

func (m *Matcher) matchFamily(family string, weight style.Weight, italic bool) (matchResult, bool) {
	m.mu.Lock()
	key := matchKey{family, weight, italic}
	if res, ok := m.cache[key]; ok {
		m.mu.Unlock()
		return res, true
	}
	providers := m.providers
	m.mu.Unlock()

	var best Candidate
	bestScore := -1
	italicFellBack := true
	for _, p := range providers {
		for _, c := range p.Query(family) {
			score, exactItalic := scoreCandidate(c, weight, italic)
			if score > bestScore {
				bestScore = score
				best = c
				italicFellBack = !exactItalic
			}
		}
	}
	if bestScore < 0 {
		return matchResult{}, false
	}

	data, err := best.Load()
	if err != nil {
		tracer().Errorf("font matcher: loading candidate for %q failed: %v", family, err)
		return matchResult{}, false
	}
	face, err := m.faces.store(best.Family, best.Weight, best.Italic, data)
	if err != nil {
		tracer().Errorf("font matcher: parsing candidate for %q failed: %v", family, err)
		return matchResult{}, false
	}

	res := matchResult{Face: face, ItalicFellBack: italicFellBack}
	m.mu.Lock()
	m.cache[key] = res
	m.mu.Unlock()
	return res, true
}

// scoreCandidate implements §4.2's first two scoring criteria,
// combined into a single integer so candidates compare directly: the
// italic flag dominates (a wrong-slant candidate always loses to a
// right-slant one), and weight distance breaks ties within a slant
// class.
func scoreCandidate(c Candidate, wantWeight style.Weight, wantItalic bool) (score int, exactItalic bool) {
	italicMatch := c.Italic == wantItalic
	const italicBonus = 10000
	dist := weightDistance(c.Weight, wantWeight)
	if italicMatch {
		return italicBonus - dist, true
	}
	// oblique/italic fallback: prefer *some* slanted face over none
	// when italic was requested, per §4.2 step 1's fallback rule.
	if wantItalic && c.Italic {
		return italicBonus/2 - dist, false
	}
	return -dist, false
}

func weightDistance(a, b style.Weight) int {
	d := int(a) - int(b)
	if d < 0 {
		d = -d
	}
	return d
}

func (m *Matcher) fallbackFace() (*Face, error) {
	m.fallbackOnce.Do(func() {
		m.fallback, m.fallbackErr = m.faces.store("fallback", style.WeightNormal, false, goregular.TTF)
	})
	if m.fallbackErr != nil {
		return nil, ErrFontNotFound
	}
	return m.fallback, nil
}

// FaceByID returns a previously matched Face by its ID, for cache
// layers above Matcher (shaping, glyph cache) that store FaceID
// rather than a *Face pointer.
func (m *Matcher) FaceByID(id FaceID) (*Face, bool) {
	return m.faces.get(id)
}
