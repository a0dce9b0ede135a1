// Package sysprovider implements the one concrete font discovery
// backend the core names but leaves out of scope (§1 "font discovery
// backends... are out of scope... We specify only the interfaces the
// core consumes from these"): a font.Provider that resolves a family
// name to files already installed on the host, for desktop platforms.
//
// Adapted from the teacher's own system-font lookup in
// core/locate/resources/resolve.go, which calls
// github.com/flopp/go-findfont's Find to turn a family name into a
// file path before loading it as a tyse ScalableFont; this package
// keeps that same lookup call but returns font.Candidate values with
// deferred Load functions instead of eagerly parsing the font file,
// since Matcher only needs bytes for the candidate it actually
// selects (§4.2 Match never needs two candidates' bytes at once).
package sysprovider

import (
	"os"

	findfont "github.com/flopp/go-findfont"

	"github.com/afishhh/subrandr/core/errs"
	"github.com/afishhh/subrandr/core/style"
	"github.com/afishhh/subrandr/font"
)

// Provider queries the host's installed fonts by family name via
// go-findfont, the same library the teacher uses for this purpose.
// go-findfont's own platform support covers Linux, Windows and macOS;
// on any other platform its search simply finds nothing, which this
// Provider reports the way font.Provider's contract requires an
// unknown family to be reported: an empty candidate slice, not an
// error.
type Provider struct{}

// New creates a system font Provider. There is no per-platform setup
// to do — go-findfont resolves its search directories internally —
// so New never fails.
func New() *Provider {
	return &Provider{}
}

// styleSuffixes are the naming conventions go-findfont's own fuzzy
// substring matching (documented against font files' internal
// sub-family name records, not just filenames) is expected to hit for
// the bold/italic variants of a family, the same handful of suffixes
// most desktop font collections ship under.
var styleSuffixes = []struct {
	suffix string
	weight style.Weight
	italic bool
}{
	{"", style.WeightNormal, false},
	{" Bold", style.WeightBold, false},
	{" Italic", style.WeightNormal, true},
	{" Bold Italic", style.WeightBold, true},
}

// Query implements font.Provider. It probes go-findfont once for the
// plain family name and once per recognized style suffix, skipping
// any probe that comes back not-found; resolve.go's own call pattern
// only ever probed the plain family name, but go-findfont's matching
// is documented as resolving by substring against a font's internal
// name records, so the same Find call naturally picks up "Family
// Bold"/"Family Italic" files when callers ask for them by that
// combined name.
func (Provider) Query(family string) []font.Candidate {
	var out []font.Candidate
	for _, v := range styleSuffixes {
		name := family + v.suffix
		path, err := findfont.Find(name)
		if err != nil || path == "" {
			continue
		}
		out = append(out, font.Candidate{
			Family: family,
			Weight: v.weight,
			Italic: v.italic,
			Load: func() ([]byte, error) {
				data, err := os.ReadFile(path)
				if err != nil {
					return nil, errs.Wrap(err, errs.IO, "sysprovider: reading font file %q", path)
				}
				return data, nil
			},
		})
	}
	return out
}

var _ font.Provider = Provider{}
