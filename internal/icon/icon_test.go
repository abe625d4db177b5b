package icon

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew_Accessors(t *testing.T) {
	ic := New("hero", "pencil", "<svg/>", WithCategory("outline"), WithTags("edit", "write", "edit", " "))

	require.Equal(t, "hero", ic.Namespace())
	require.Equal(t, "pencil", ic.Name())
	require.Equal(t, "<svg/>", ic.Markup())
	require.Equal(t, "outline", ic.Category())
	require.Equal(t, []string{"edit", "write"}, ic.Tags())
	require.Equal(t, "hero:pencil", ic.Key())
	require.True(t, ic.HasTag("write"))
	require.False(t, ic.HasTag("delete"))
}

func TestIcon_TagsReturnsCopy(t *testing.T) {
	ic := New("ion", "home", "<svg/>", WithTags("house"))

	tags := ic.Tags()
	tags[0] = "mutated"

	require.Equal(t, []string{"house"}, ic.Tags())
}

func TestIcon_EmptyMarkupIsStillAnIcon(t *testing.T) {
	ic := New("ion", "blank", "")
	require.Equal(t, "", ic.Markup())
	require.Empty(t, ic.Tags())
}

func TestParseReference(t *testing.T) {
	tests := []struct {
		ref    string
		defNS  string
		wantNS string
		wantN  string
	}{
		{"home", "ion", "ion", "home"},
		{"ion:home", "hero", "ion", "home"},
		{"hero:pencil", "ion", "hero", "pencil"},
		{"fa:brands:github", "ion", "fa", "brands:github"},
		{":home", "ion", "", "home"},
		{"", "ion", "ion", ""},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			ns, name := ParseReference(tt.ref, tt.defNS)
			require.Equal(t, tt.wantNS, ns)
			require.Equal(t, tt.wantN, name)
		})
	}
}

func TestIsQualified(t *testing.T) {
	require.True(t, IsQualified("ion:home"))
	require.False(t, IsQualified("home"))
}
