package font

import (
	"github.com/afishhh/subrandr/core/style"
)

// Candidate is one face a Provider offers for a queried family name,
// before scoring (§4.2 Match).
type Candidate struct {
	Family   string
	Weight   style.Weight
	Italic   bool
	// VariationWeightMin/Max describe the range of a variable font's
	// weight axis, when present; zero values mean "not variable".
	VariationWeightMin, VariationWeightMax style.Weight
	// Load returns the raw font bytes for this candidate. Deferred
	// behind a function so providers that enumerate a large system
	// font index (sysprovider) don't have to read every file's bytes
	// up front.
	Load func() ([]byte, error)
}

// Provider is the contract the core consumes from a font discovery
// backend (§1 "font discovery backends... are out of scope... We
// specify only the interfaces the core consumes from these").
type Provider interface {
	// Query returns every candidate face the provider knows of for
	// the given family name. An empty result means the family is
	// unknown to this provider; Matcher queries every Provider for a
	// family before moving on to the next family in family_list.
	Query(family string) []Candidate
}

// MemoryProvider is an in-memory Provider: the one concrete backend
// named directly in §1 alongside the out-of-scope system providers,
// useful for embedded-font documents and for tests that must not
// touch the host filesystem.
type MemoryProvider struct {
	byFamily map[string][]Candidate
}

// NewMemoryProvider creates an empty in-memory provider.
func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{byFamily: make(map[string][]Candidate)}
}

// AddFromMemory registers data under family (§6
// "custom_font_provider_create, _add_from_memory(bytes)"). Addition is
// immediate and synchronous, as the external interface requires.
func (p *MemoryProvider) AddFromMemory(family string, weight style.Weight, italic bool, data []byte) {
	p.byFamily[family] = append(p.byFamily[family], Candidate{
		Family: family,
		Weight: weight,
		Italic: italic,
		Load:   func() ([]byte, error) { return data, nil },
	})
}

// Query implements Provider.
func (p *MemoryProvider) Query(family string) []Candidate {
	return p.byFamily[family]
}

var _ Provider = (*MemoryProvider)(nil)
