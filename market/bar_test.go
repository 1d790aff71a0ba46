package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestItem(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "BTCUSDT_1d", Item("BTCUSDT", "1d"))

	b := Bar{Symbol: "ETHUSDT", Interval: "4h"}
	assert.Equal(t, "ETHUSDT_4h", b.Item())
}

func TestKnownInterval(t *testing.T) {
	t.Parallel()

	assert.True(t, KnownInterval("1m"))
	assert.True(t, KnownInterval("1d"))
	assert.True(t, KnownInterval("1M"))
	assert.False(t, KnownInterval("2d"))
	assert.False(t, KnownInterval(""))
}

func TestNormalizeMillis(t *testing.T) {
	t.Parallel()

	// Ten decimal digits means seconds.
	assert.Equal(t, int64(1704067200000), NormalizeMillis(1704067200))

	// Thirteen digits is already milliseconds.
	assert.Equal(t, int64(1704067200000), NormalizeMillis(1704067200000))

	// Small and non-positive values are left alone.
	assert.Equal(t, int64(0), NormalizeMillis(0))
	assert.Equal(t, int64(-1704067200), NormalizeMillis(-1704067200))
	assert.Equal(t, int64(123456789), NormalizeMillis(123456789))
}
