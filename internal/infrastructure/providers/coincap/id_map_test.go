package coincap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIDMap(t *testing.T) {
	m := DefaultIDMap()
	assert.Equal(t, 24, m.Len())

	tests := []struct {
		canonical string
		secondary string
	}{
		{"ripple", "xrp"},
		{"avalanche-2", "avalanche"},
		{"binancecoin", "binance-coin"},
		{"matic-network", "polygon"},
		{"the-open-network", "toncoin"},
		{"near", "near-protocol"},
		{"bitcoin", "bitcoin"},
		{"unlisted-coin", "unlisted-coin"},
	}

	for _, tt := range tests {
		t.Run(tt.canonical, func(t *testing.T) {
			assert.Equal(t, tt.secondary, m.ToSecondary(tt.canonical))
			assert.Equal(t, tt.canonical, m.ToCanonical(tt.secondary))
		})
	}
}

func TestParseIDMap_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not a mapping", "- a\n- b\n"},
		{"empty value", "bitcoin: \"\"\n"},
		{"duplicate target", "a: same\nb: same\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseIDMap([]byte(tt.doc))
			require.Error(t, err)
		})
	}
}
