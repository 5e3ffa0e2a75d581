package finding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSet_DedupInvariant verifies no two findings in a set share both
// location and payload, including the nil-payload case.
func TestSet_DedupInvariant(t *testing.T) {
	t.Parallel()

	s := NewSet()
	require.True(t, s.Add(New(SQLInjection, "id", High, "", `' OR '1'='1`)))
	assert.False(t, s.Add(New(SQLInjection, "id", High, "other detail", `' OR '1'='1`)),
		"identical (location, payload) must not be added twice")

	// Same location, different payload: distinct.
	assert.True(t, s.Add(New(SQLInjection, "id", High, "", `' UNION SELECT NULL--`)))

	// Same payload, different location: distinct.
	assert.True(t, s.Add(New(SQLInjection, "user", High, "", `' OR '1'='1`)))

	// Nil payloads are equal to each other only when location also matches.
	require.True(t, s.Add(New(DOMXSS, "page-content", Medium, "sink", "")))
	assert.False(t, s.Add(New(DOMXSS, "page-content", Medium, "sink again", "")))
	assert.True(t, s.Add(New(DOMXSS, "fragment", Medium, "sink", "")))

	assert.Equal(t, 5, s.Len())
}

func TestSet_Has(t *testing.T) {
	t.Parallel()

	s := NewSet()
	s.Add(New(ReflectedXSS, "q", High, "", "<script>x</script>"))
	assert.True(t, s.Has("q", "<script>x</script>"))
	assert.False(t, s.Has("q", "other"))
	assert.False(t, s.Has("page", "<script>x</script>"))
}

// TestGrade_Monotonicity: one high always grades F regardless of coexisting
// findings; zero findings always grades A.
func TestGrade_Monotonicity(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "A", Grade(nil))
	assert.Equal(t, "A", Grade([]Finding{}))

	high := New(SQLInjection, "id", High, "", "'")
	med := New(DOMXSS, "page", Medium, "", "")
	low := New(MissingHeader, "Content-Security-Policy", Low, "", "")

	assert.Equal(t, "F", Grade([]Finding{high}))
	assert.Equal(t, "F", Grade([]Finding{med, med, med, low, high}))

	assert.Equal(t, "C", Grade([]Finding{med}))
	assert.Equal(t, "C", Grade([]Finding{med, med}))
	assert.Equal(t, "D", Grade([]Finding{med, med, med}))
	assert.Equal(t, "B", Grade([]Finding{low}))
}

func TestNew_AttachesFixedText(t *testing.T) {
	t.Parallel()

	f := New(ReflectedXSS, "q", High, "confirmed by token retest", "<script>alert('XSS')</script>")
	require.NotNil(t, f.Payload)
	assert.NotEmpty(t, f.Description)
	assert.NotEmpty(t, f.Remediation)

	structural := New(PotentialStoredXSS, "form[0]", Medium, "free-text input", "")
	assert.Nil(t, structural.Payload)
}

func TestSeverityRank(t *testing.T) {
	t.Parallel()
	assert.Greater(t, High.Rank(), Medium.Rank())
	assert.Greater(t, Medium.Rank(), Low.Rank())
}
