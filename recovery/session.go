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

package recovery

import (
	"context"
	"fmt"

	"github.com/algorand/go-deadlock"
	"golang.org/x/sync/errgroup"

	"github.com/algorand/go-recovery/data/basics"
)

// View is a resolved picture of one (lost, rescuer) pair.
type View struct {
	Lost    basics.Address `codec:"lost" json:"lost"`
	Rescuer basics.Address `codec:"rescuer" json:"rescuer"`
	Inputs  Inputs         `codec:"inputs" json:"inputs"`
	State   State          `codec:"state" json:"state"`
}

// Session follows the queries about one pair while they are in flight. Every
// answer starts Pending and fills in whenever its query returns, in any
// order; State is meaningful at any time.
type Session struct {
	lost, rescuer basics.Address

	mu     deadlock.Mutex
	inputs Inputs

	group errgroup.Group
	done  chan struct{}
	err   error
}

// Start issues the config, attempt, proxy and round queries for the pair in
// parallel and returns immediately.
func (c *Coordinator) Start(ctx context.Context, lost, rescuer basics.Address) *Session {
	s := &Session{lost: lost, rescuer: rescuer, done: make(chan struct{})}
	s.group.Go(func() error {
		cfg, err := c.ResolveConfig(ctx, lost)
		if err != nil {
			return err
		}
		s.update(func(in *Inputs) { in.Config = cfg })
		return nil
	})
	s.group.Go(func() error {
		a, err := c.TrackAttempt(ctx, lost, rescuer)
		if err != nil {
			return err
		}
		s.update(func(in *Inputs) { in.Attempt = a })
		return nil
	})
	s.group.Go(func() error {
		p, err := c.IsProxy(ctx, lost, rescuer)
		if err != nil {
			return err
		}
		s.update(func(in *Inputs) { in.Proxy = p })
		return nil
	})
	s.group.Go(func() error {
		rnd, err := c.gw.CurrentRound(ctx)
		if err != nil {
			return fmt.Errorf("query current round: %w", err)
		}
		s.update(func(in *Inputs) { in.Round, in.HasRound = rnd, true })
		return nil
	})
	go func() {
		s.err = s.group.Wait()
		close(s.done)
	}()
	return s
}

func (s *Session) update(f func(*Inputs)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f(&s.inputs)
}

// Inputs returns the answers received so far.
func (s *Session) Inputs() Inputs {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inputs
}

// State derives the state from the answers received so far.
func (s *Session) State() State {
	return DeriveState(s.Inputs())
}

// Done is closed once every query has returned.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Err returns the first query failure once Done is closed. Failed answers stay Pending.
func (s *Session) Err() error {
	select {
	case <-s.done:
		return s.err
	default:
		return nil
	}
}

// Wait blocks until every query returned or ctx is done, and returns the view.
// On failure the view still carries whatever resolved.
func (s *Session) Wait(ctx context.Context) (View, error) {
	select {
	case <-s.done:
	case <-ctx.Done():
		return s.view(), ctx.Err()
	}
	return s.view(), s.err
}

func (s *Session) view() View {
	in := s.Inputs()
	return View{Lost: s.lost, Rescuer: s.rescuer, Inputs: in, State: DeriveState(in)}
}

// Observe queries the pair and returns its resolved view.
func (c *Coordinator) Observe(ctx context.Context, lost, rescuer basics.Address) (View, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	v, err := c.Start(ctx, lost, rescuer).Wait(ctx)
	if err != nil {
		return v, err
	}
	c.log.Debugf("pair %s/%s is %s", lost, rescuer, v.State)
	return v, nil
}

// Role classifies acting for the viewed pair.
func (v View) Role(acting basics.Address) Role {
	return RoleOf(acting, v.Lost, v.Rescuer, v.Inputs.Config)
}

// Actions lists what acting may do on the viewed pair.
func (v View) Actions(acting basics.Address) []Action {
	vouched := v.Inputs.Attempt.Status == Present && v.Inputs.Attempt.Attempt.HasVouched(acting)
	return LegalActions(v.State, v.Role(acting), vouched)
}

// Timing is the display timing of an open attempt.
type Timing struct {
	Round            basics.Round `codec:"round" json:"round"`
	ClaimableAt      basics.Round `codec:"claimableAt" json:"claimableAt"`
	Elapsed          basics.Round `codec:"elapsed" json:"elapsed"`
	Remaining        basics.Round `codec:"remaining" json:"remaining"`
	EstimatedSeconds uint64       `codec:"estimatedSeconds" json:"estimatedSeconds"`
}

// Timing returns the timing of the pair's attempt, or nil when the view has
// no attempt or no round.
func (v View) Timing(blockTimeMs uint64) (*Timing, error) {
	in := v.Inputs
	if in.Attempt.Status != Present || in.Config.Status != Present || !in.HasRound {
		return nil, nil
	}
	remaining := RemainingBlocks(in.Attempt.Attempt, in.Config.Config, in.Round)
	secs, err := EstimatedSeconds(remaining, blockTimeMs)
	if err != nil {
		return nil, err
	}
	return &Timing{
		Round:            in.Round,
		ClaimableAt:      ClaimableAt(in.Attempt.Attempt, in.Config.Config),
		Elapsed:          ElapsedBlocks(in.Attempt.Attempt, in.Round),
		Remaining:        remaining,
		EstimatedSeconds: secs,
	}, nil
}
