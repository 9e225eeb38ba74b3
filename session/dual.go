package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// DualStats counts degradation events on a Dual store.
type DualStats struct {
	PrimaryErrors  uint64
	FallbackWrites uint64
	FallbackReads  uint64
}

// Dual composes the primary (persistent, shared) backend with the
// process-local fallback so authentication keeps working while the primary
// is down. The trade-off is explicit: during an outage, sessions minted
// here are invisible to other instances until the primary recovers.
type Dual struct {
	primary  Store
	fallback *MemoryStore

	primaryErrors  atomic.Uint64
	fallbackWrites atomic.Uint64
	fallbackReads  atomic.Uint64

	purgeStop chan struct{}
	stopOnce  sync.Once
}

// NewDual wires primary and fallback together. When purgeInterval is
// positive, a background ticker sweeps expired records out of the fallback
// map; lazy read-time expiry keeps correctness either way, the sweep only
// bounds memory.
func NewDual(primary Store, fallback *MemoryStore, purgeInterval time.Duration) *Dual {
	d := &Dual{
		primary:   primary,
		fallback:  fallback,
		purgeStop: make(chan struct{}),
	}

	if purgeInterval > 0 {
		go d.purgeLoop(purgeInterval)
	}

	return d
}

func (d *Dual) purgeLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			d.fallback.Purge(now)
		case <-d.purgeStop:
			return
		}
	}
}

// Close stops the purge ticker. Safe to call more than once.
func (d *Dual) Close() {
	d.stopOnce.Do(func() {
		close(d.purgeStop)
	})
}

// Save writes the fallback first as a last-resort mirror, then attempts the
// primary. A primary failure degrades durability, never availability: the
// session is still usable on this instance and Save reports success.
func (d *Dual) Save(ctx context.Context, sess *Session, ttl time.Duration) error {
	if err := d.fallback.Save(ctx, sess, ttl); err != nil {
		return err
	}

	if err := d.primary.Save(ctx, sess, ttl); err != nil {
		d.primaryErrors.Add(1)
		d.fallbackWrites.Add(1)
	}
	return nil
}

// Get resolves the primary first; when the primary is unreachable or has no
// live row, the local map is consulted, which again enforces expiry.
func (d *Dual) Get(ctx context.Context, sessionID string) (*Session, error) {
	sess, err := d.primary.Get(ctx, sessionID)
	if err == nil {
		return sess, nil
	}
	if errors.Is(err, ErrSessionExpired) {
		// a definitive answer; the fallback holds the same timestamps
		return nil, err
	}
	if errors.Is(err, ErrRedisUnavailable) {
		d.primaryErrors.Add(1)
	}

	sess, ferr := d.fallback.Get(ctx, sessionID)
	if ferr != nil {
		return nil, ferr
	}
	d.fallbackReads.Add(1)
	return sess, nil
}

// Delete revokes from both backends unconditionally. A primary failure is
// swallowed: revocation is best-effort there, but the fallback removal
// always happens so local correctness holds even mid-outage.
func (d *Dual) Delete(ctx context.Context, sessionID string) error {
	if err := d.primary.Delete(ctx, sessionID); err != nil {
		d.primaryErrors.Add(1)
	}
	return d.fallback.Delete(ctx, sessionID)
}

// Stats returns a snapshot of degradation counters.
func (d *Dual) Stats() DualStats {
	return DualStats{
		PrimaryErrors:  d.primaryErrors.Load(),
		FallbackWrites: d.fallbackWrites.Load(),
		FallbackReads:  d.fallbackReads.Load(),
	}
}
