package sysprovider

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/afishhh/subrandr/font"
)

func TestQueryUnknownFamilyReturnsNoCandidatesWithoutError(t *testing.T) {
	p := New()
	candidates := p.Query("definitely-not-a-real-font-family-xyz")
	assert.Empty(t, candidates)
}

func TestProviderSatisfiesFontProviderInterface(t *testing.T) {
	var _ font.Provider = New()
}

func TestQueryDoesNotPanicRegardlessOfHostFonts(t *testing.T) {
	p := New()
	assert.NotPanics(t, func() {
		for _, c := range p.Query("Arial") {
			data, err := c.Load()
			if err == nil {
				assert.NotEmpty(t, data)
			}
		}
	})
}
