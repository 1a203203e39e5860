package publisher

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubjectToken(t *testing.T) {
	assert.Equal(t, "morning_commute", subjectToken("morning commute"))
	assert.Equal(t, "driving_routed", subjectToken("driving_routed"))
	assert.Equal(t, "a_b_c", subjectToken("a.b/c"))
	assert.Equal(t, "_", subjectToken("  "))
	assert.Equal(t, "_", subjectToken("*"))
}
