package command

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCooldownBuckets(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	cd := NewCooldown(BucketUser, 2, time.Minute)
	cd.now = func() time.Time { return now }

	assert.NoError(t, cd.take("alice"))
	assert.NoError(t, cd.take("alice"))

	err := cd.take("alice")
	var ce *CooldownError
	require.ErrorAs(t, err, &ce)
	assert.InDelta(t, 30.0, ce.RetryAfter.Seconds(), 1.0)

	// Other users have their own bucket.
	assert.NoError(t, cd.take("bob"))

	now = now.Add(31 * time.Second)
	assert.NoError(t, cd.take("alice"))
}

func TestCooldownReset(t *testing.T) {
	cd := NewCooldown(BucketGlobal, 1, time.Hour)
	require.NoError(t, cd.take(""))
	require.Error(t, cd.take(""))
	cd.Reset()
	assert.NoError(t, cd.take(""))
}

func TestCooldownInDefinition(t *testing.T) {
	d := MustNew(Spec{Name: "x", Kinds: KindPrefix, Cooldown: NewCooldown(BucketUser, 1, time.Hour)})
	require.NoError(t, run(t, d, prefixSource("")))

	var ce *CooldownError
	assert.ErrorAs(t, run(t, d, prefixSource("")), &ce)
}
