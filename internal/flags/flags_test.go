package flags

import (
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistry_Enabled(t *testing.T) {
	tests := []struct {
		name     string
		registry *Registry
		flag     string
		expected bool
	}{
		{
			name:     "configured on",
			registry: New(map[string]bool{FlagInvalidateOnLoaderRegistration: true}),
			flag:     FlagInvalidateOnLoaderRegistration,
			expected: true,
		},
		{
			name:     "configured off",
			registry: New(map[string]bool{FlagInvalidateOnLoaderRegistration: false}),
			flag:     FlagInvalidateOnLoaderRegistration,
			expected: false,
		},
		{
			name:     "absent falls back to the default",
			registry: New(map[string]bool{"other": true}),
			flag:     FlagInvalidateOnLoaderRegistration,
			expected: false,
		},
		{
			name:     "unknown configured flag is readable",
			registry: New(map[string]bool{"experimental-thing": true}),
			flag:     "experimental-thing",
			expected: true,
		},
		{
			name:     "unknown unconfigured flag is off",
			registry: New(nil),
			flag:     "never-heard-of-it",
			expected: false,
		},
		{
			name:     "nil registry uses defaults",
			registry: nil,
			flag:     FlagInvalidateOnLoaderRegistration,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, tt.registry.Enabled(tt.flag))
		})
	}
}

func TestRegistry_All(t *testing.T) {
	require.Equal(t, map[string]bool{FlagInvalidateOnLoaderRegistration: false}, New(nil).All())
	require.Equal(t, New(nil).All(), (*Registry)(nil).All())
	require.Equal(t,
		map[string]bool{FlagInvalidateOnLoaderRegistration: true, "extra": false},
		New(map[string]bool{FlagInvalidateOnLoaderRegistration: true, "extra": false}).All())
}

func TestRegistry_EnabledNames(t *testing.T) {
	r := New(map[string]bool{"zeta": true, "alpha": true, FlagInvalidateOnLoaderRegistration: false})
	require.Equal(t, []string{"alpha", "zeta"}, r.EnabledNames())
	require.Empty(t, New(nil).EnabledNames())
}

func TestNew_CopiesInput(t *testing.T) {
	input := map[string]bool{FlagInvalidateOnLoaderRegistration: true}
	r := New(input)
	input[FlagInvalidateOnLoaderRegistration] = false
	require.True(t, r.Enabled(FlagInvalidateOnLoaderRegistration))

	snapshot := r.All()
	snapshot[FlagInvalidateOnLoaderRegistration] = false
	require.True(t, r.Enabled(FlagInvalidateOnLoaderRegistration), "All returns a copy")
}

func TestLookup(t *testing.T) {
	d, ok := Lookup(FlagInvalidateOnLoaderRegistration)
	require.True(t, ok)
	require.NotEmpty(t, d.Description)

	_, ok = Lookup("nope")
	require.False(t, ok)
	require.True(t, slices.IsSortedFunc(Definitions, func(a, b Definition) int {
		return strings.Compare(a.Name, b.Name)
	}))
}
