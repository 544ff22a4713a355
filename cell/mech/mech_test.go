package mech

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltin_ContainsPerisomaticSet(t *testing.T) {
	c := Builtin()
	want := []string{"CaDynamics", "Ca_HVA", "Ca_LVA", "Ih", "Im", "K_P", "K_T", "Kv3_1", "NaTs", "Nap", "SK", "pas"}
	assert.Equal(t, want, c.Names())
}

func TestLookup_UnknownMechanism(t *testing.T) {
	_, err := Builtin().Lookup("hh")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownMechanism))
	assert.Contains(t, err.Error(), `"hh"`)
}

func TestSpec_Defaults_ReturnsFreshMap(t *testing.T) {
	s, err := Builtin().Lookup("pas")
	require.NoError(t, err)

	d := s.Defaults()
	d["g"] = 42

	assert.Equal(t, 0.001, s.Defaults()["g"])
	assert.Equal(t, -70.0, s.Defaults()["e"])
}

func TestParseRangeVar(t *testing.T) {
	c := Builtin()
	tests := []struct {
		name      string
		param     string
		mechanism string
		ok        bool
	}{
		{"gbar_K_P", "gbar", "K_P", true},
		{"gbar_Ca_HVA", "gbar", "Ca_HVA", true},
		{"gbar_Kv3_1", "gbar", "Kv3_1", true},
		{"g_pas", "g", "pas", true},
		{"e_pas", "e", "pas", true},
		{"gamma_CaDynamics", "gamma", "CaDynamics", true},
		{"decay_CaDynamics", "decay", "CaDynamics", true},
		{"ehcn_Ih", "ehcn", "Ih", true},
		{"gbar_pas", "", "", false}, // pas has no gbar
		{"gbar_hh", "", "", false},  // unknown mechanism
		{"cm", "", "", false},       // section property
		{"gbar_", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, m, ok := c.ParseRangeVar(tt.name)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.param, p)
			assert.Equal(t, tt.mechanism, m)
		})
	}
}

func TestRangeVar_RoundTripsWithParse(t *testing.T) {
	c := Builtin()
	p, m, ok := c.ParseRangeVar(RangeVar("gbar", "Ca_LVA"))
	require.True(t, ok)
	assert.Equal(t, "gbar", p)
	assert.Equal(t, "Ca_LVA", m)
}

func TestUsesIon(t *testing.T) {
	c := Builtin()
	sk, err := c.Lookup("SK")
	require.NoError(t, err)
	assert.True(t, sk.UsesIon(K))
	assert.True(t, sk.UsesIon(Ca))
	assert.False(t, sk.UsesIon(Na))
	assert.Equal(t, "ek", K.ReversalParam())
}
