package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRound2(t *testing.T) {
	assert.Equal(t, 83.33, Round2(83.3333))
	assert.Equal(t, 66.67, Round2(66.6666))
	assert.Equal(t, 1.5, Round2(1.499999))
}

func TestPercent(t *testing.T) {
	assert.Equal(t, 83.33, Percent(10, 12))
	assert.Equal(t, 33.33, Percent(1, 3))
	assert.Equal(t, 0.0, Percent(5, 0))
}
