package overlap

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractWindows(t *testing.T) {
	t.Parallel()

	got := Extract("THE AMERICANS FOR PROSPERITY")
	require.Len(t, got, 3)
	require.Equal(t, FragmentSet{"THE": {}, "AMERICANS": {}, "FOR": {}, "PROSPERITY": {}}, got[1])
	require.Equal(t, FragmentSet{"THE AMERICANS": {}, "AMERICANS FOR": {}, "FOR PROSPERITY": {}}, got[2])
	require.Equal(t, FragmentSet{"THE AMERICANS FOR": {}, "AMERICANS FOR PROSPERITY": {}}, got[3])
	_, whole := got[4]
	require.False(t, whole)
}

func TestExtractNoSelfFragment(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"A", "A B", "A B C D E F", "PAC PAC PAC"} {
		w := len(strings.Split(name, " "))
		got := Extract(name)
		for n, set := range got {
			require.GreaterOrEqual(t, n, 1)
			require.Less(t, n, w, "name %q", name)
			for frag := range set {
				require.Len(t, strings.Split(frag, " "), n)
			}
		}
		if w > 1 {
			require.Len(t, got, w-1)
		}
	}
}

func TestExtractShortNames(t *testing.T) {
	t.Parallel()

	require.Empty(t, Extract(""))
	require.Empty(t, Extract("WINNING"))
}

func TestExtractCollapsesRepeats(t *testing.T) {
	t.Parallel()

	got := Extract("PAC PAC PAC")
	require.Equal(t, FragmentSet{"PAC": {}}, got[1])
	require.Equal(t, FragmentSet{"PAC PAC": {}}, got[2])
}
