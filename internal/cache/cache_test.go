package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPathSetKeyIsDeterministic(t *testing.T) {
	a := PathSetKey(1, 2, 3, "fp")
	b := PathSetKey(1, 2, 3, "fp")
	assert.Equal(t, a, b)
}

func TestPathSetKeyVariesWithInputs(t *testing.T) {
	a := PathSetKey(1, 2, 3, "fp")
	b := PathSetKey(1, 2, 4, "fp")
	assert.NotEqual(t, a, b)
}

func TestFrequencyFingerprintIsDeterministicAndOrderSensitive(t *testing.T) {
	a := FrequencyFingerprint([][]int{{1, 2}, {3, 4}})
	b := FrequencyFingerprint([][]int{{1, 2}, {3, 4}})
	c := FrequencyFingerprint([][]int{{3, 4}, {1, 2}})
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}
