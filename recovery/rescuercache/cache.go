// Copyright (C) 2019-2025 Algorand, Inc.
// This file is part of go-recovery
//
// go-recovery is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// go-recovery is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with go-recovery.  If not, see <https://www.gnu.org/licenses/>.

// Package rescuercache keeps recent competing-rescuer scans so that repeated
// questions about one lost account do not rescan the whole active set.
package rescuercache

import (
	"context"
	"time"

	"github.com/algorand/go-deadlock"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"

	"github.com/algorand/go-recovery/data/basics"
	"github.com/algorand/go-recovery/recovery"
	"github.com/algorand/go-recovery/util/metrics"
)

// scanTimeout bounds a shared scan, which outlives the callers waiting on it.
const scanTimeout = time.Minute

var (
	scansTotal     = metrics.MakeCounter(metrics.RescuerScansTotal)
	cacheHitsTotal = metrics.MakeCounter(metrics.RescuerScanCacheHitsTotal)
)

// ScanFunc lists every rescuer of lost.
type ScanFunc func(ctx context.Context, lost basics.Address) ([]recovery.Rescuer, error)

// Cache is a recovery.RescuerSource that serves scans younger than its TTL.
// Concurrent misses on the same account share one scan. A scan that was
// running when its account got invalidated is returned to its callers but
// never cached.
type Cache struct {
	scan  ScanFunc
	lru   *expirable.LRU[basics.Address, []recovery.Rescuer]
	group singleflight.Group

	mu       deadlock.Mutex
	inflight map[basics.Address]*scanState
}

// scanState tracks the scans running for one account. gen moves on every
// Invalidate; a scan only stores its result if gen did not move meanwhile.
type scanState struct {
	gen     uint64
	running int
}

// New builds a cache of at most size accounts whose entries expire after ttl.
func New(scan ScanFunc, size int, ttl time.Duration) *Cache {
	return &Cache{
		scan:     scan,
		lru:      expirable.NewLRU[basics.Address, []recovery.Rescuer](size, nil, ttl),
		inflight: make(map[basics.Address]*scanState),
	}
}

// ForCoordinator caches the direct scans of c and installs itself as c's rescuer source.
func ForCoordinator(c *recovery.Coordinator, size int, ttl time.Duration) *Cache {
	cache := New(func(ctx context.Context, lost basics.Address) ([]recovery.Rescuer, error) {
		return c.EnumerateCompetingRescuers(ctx, lost)
	}, size, ttl)
	c.UseRescuerSource(cache)
	return cache
}

// CompetingRescuers implements recovery.RescuerSource. The shared scan does
// not stop when ctx is done; only this caller stops waiting for it.
func (c *Cache) CompetingRescuers(ctx context.Context, lost basics.Address, exclude ...basics.Address) ([]recovery.Rescuer, error) {
	if all, ok := c.lru.Get(lost); ok {
		cacheHitsTotal.Inc()
		return recovery.ExcludeRescuers(all, exclude...), nil
	}
	scanCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(string(lost[:]), func() (interface{}, error) {
		return c.runScan(scanCtx, lost)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return recovery.ExcludeRescuers(res.Val.([]recovery.Rescuer), exclude...), nil
	}
}

func (c *Cache) runScan(ctx context.Context, lost basics.Address) ([]recovery.Rescuer, error) {
	gen := c.beginScan(lost)
	scansTotal.Inc()
	ctx, cancel := context.WithTimeout(ctx, scanTimeout)
	defer cancel()
	all, err := c.scan(ctx, lost)
	c.endScan(lost, gen, all, err == nil)
	if err != nil {
		return nil, err
	}
	return all, nil
}

func (c *Cache) beginScan(lost basics.Address) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	st, ok := c.inflight[lost]
	if !ok {
		st = &scanState{}
		c.inflight[lost] = st
	}
	st.running++
	return st.gen
}

func (c *Cache) endScan(lost basics.Address, gen uint64, all []recovery.Rescuer, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := c.inflight[lost]
	if ok && st.gen == gen {
		c.lru.Add(lost, all)
	}
	st.running--
	if st.running == 0 {
		delete(c.inflight, lost)
	}
}

// Invalidate drops the scan of lost, typically after a call changed its
// attempts. Scans of lost still running are not cached, and later callers
// start a new one instead of joining them.
func (c *Cache) Invalidate(lost basics.Address) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if st, ok := c.inflight[lost]; ok {
		st.gen++
	}
	c.group.Forget(string(lost[:]))
	c.lru.Remove(lost)
}

// Len returns the number of cached scans.
func (c *Cache) Len() int {
	return c.lru.Len()
}
