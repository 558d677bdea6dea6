package command

import (
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Bucket selects what a cooldown is keyed on.
type Bucket uint8

const (
	BucketUser Bucket = iota
	BucketChannel
	BucketGuild
	BucketGlobal
)

// CooldownError is returned when a bucket has no uses left.
type CooldownError struct {
	RetryAfter time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("command is on cooldown, try again in %.1fs", e.RetryAfter.Seconds())
}

// Cooldown allows a number of uses per period for each bucket key.
type Cooldown struct {
	bucket Bucket
	limit  rate.Limit
	burst  int
	now    func() time.Time

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewCooldown allows uses invocations per period in each bucket.
func NewCooldown(bucket Bucket, uses int, per time.Duration) *Cooldown {
	if uses < 1 {
		uses = 1
	}
	return &Cooldown{
		bucket:   bucket,
		limit:    rate.Every(per / time.Duration(uses)),
		burst:    uses,
		now:      time.Now,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Take consumes one use for the invocation's bucket.
func (cd *Cooldown) Take(c *Context) error {
	return cd.take(cd.key(c))
}

func (cd *Cooldown) take(key string) error {
	cd.mu.Lock()
	lim, ok := cd.limiters[key]
	if !ok {
		lim = rate.NewLimiter(cd.limit, cd.burst)
		cd.limiters[key] = lim
	}
	cd.mu.Unlock()

	now := cd.now()
	r := lim.ReserveN(now, 1)
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return &CooldownError{RetryAfter: delay}
	}
	return nil
}

// Reset forgets all buckets.
func (cd *Cooldown) Reset() {
	cd.mu.Lock()
	cd.limiters = make(map[string]*rate.Limiter)
	cd.mu.Unlock()
}

func (cd *Cooldown) key(c *Context) string {
	switch cd.bucket {
	case BucketChannel:
		return c.ChannelID()
	case BucketGuild:
		if id := c.GuildID(); id != "" {
			return id
		}
		return "dm:" + c.ChannelID()
	case BucketGlobal:
		return ""
	default:
		if a := c.Author(); a != nil {
			return a.ID
		}
		return ""
	}
}
