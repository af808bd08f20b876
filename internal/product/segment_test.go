package product

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSegmentEmptyInputs(t *testing.T) {
	t.Parallel()

	require.Empty(t, Segment(""))
	require.Empty(t, Segment("."))
	require.Empty(t, Segment(" . ..  . "))
	require.Empty(t, SegmentPtr(nil))
	require.NotNil(t, Segment(""), "empty result must be a list, not nil")
}

func TestSegmentSplitsAndTrims(t *testing.T) {
	t.Parallel()

	got := Segment("  Fast deployment.  Reliable support .\nScales with you.")
	require.Equal(t, []string{"Fast deployment", "Reliable support", "Scales with you"}, got)
}

func TestSegmentWithoutTerminator(t *testing.T) {
	t.Parallel()

	require.Equal(t, []string{"Cloud ready"}, Segment("  Cloud ready  "))
	text := "Cloud ready"
	require.Equal(t, []string{"Cloud ready"}, SegmentPtr(&text))
}

func TestSegmentFeatures(t *testing.T) {
	t.Parallel()

	require.Equal(t, []string{"Fast", "Reliable"}, Segment("Fast.Reliable."))
}

func TestSegmentReconstructsText(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"One. Two. Three.",
		"Alpha.Beta",
		"Single sentence",
		"Trailing spaces .  here. ",
	}
	for _, in := range inputs {
		frags := Segment(in)
		require.NotEmpty(t, frags, in)
		require.Equal(t, normalise(in), strings.Join(frags, ".")+".", in)
	}
}

// normalise trims each sentence and drops empty ones, the same view of the
// text that joining fragments with '.' produces.
func normalise(s string) string {
	var parts []string
	for _, p := range strings.Split(s, ".") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ".") + "."
}
