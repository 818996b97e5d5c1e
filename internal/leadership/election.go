/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package leadership elects one instance to run singleton background work,
// the campaign status sweeper, when several instances share a database.
package leadership

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/harborlight/portkiosk/internal/telemetry"
)

const (
	electionKey = "portkiosk:leader:sweeper"

	// The leader must renew within the lease or a follower takes over.
	defaultLeaseDuration = 15 * time.Second
	defaultRetryInterval = 5 * time.Second
)

// Election acquires and renews a redis lease. Callers poll IsLeader before
// running singleton work.
type Election struct {
	client     *redis.Client
	logger     zerolog.Logger
	instanceID string

	lease time.Duration
	retry time.Duration

	mu       sync.RWMutex
	isLeader bool

	cancel context.CancelFunc
	done   chan struct{}
}

// NewElection wraps an existing redis client. The client stays owned by the
// caller and is not closed here.
func NewElection(client *redis.Client, instanceID string, logger zerolog.Logger) *Election {
	return &Election{
		client:     client,
		logger:     logger.With().Str("component", "leader_election").Logger(),
		instanceID: instanceID,
		lease:      defaultLeaseDuration,
		retry:      defaultRetryInterval,
		done:       make(chan struct{}),
	}
}

// Start begins campaigning for leadership in the background.
func (e *Election) Start(ctx context.Context) {
	ctx, e.cancel = context.WithCancel(ctx)

	e.logger.Info().
		Str("instance_id", e.instanceID).
		Dur("lease", e.lease).
		Msg("starting leader election")

	go func() {
		defer close(e.done)

		// Campaign immediately so a fresh single instance does not wait a
		// full retry interval before sweeping.
		e.attempt(ctx)

		ticker := time.NewTicker(e.retry)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				e.attempt(ctx)
			}
		}
	}()
}

// Stop halts campaigning and releases the lease if held.
func (e *Election) Stop() {
	if e.cancel != nil {
		e.cancel()
	}
	<-e.done

	if e.IsLeader() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := e.release(ctx); err != nil {
			e.logger.Error().Err(err).Msg("failed to release leadership lease")
		}
	}
}

// IsLeader reports whether this instance currently holds the lease.
func (e *Election) IsLeader() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.isLeader
}

// Leader returns the instance ID holding the lease, or empty when vacant.
func (e *Election) Leader(ctx context.Context) (string, error) {
	leader, err := e.client.Get(ctx, electionKey).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get leader: %w", err)
	}
	return leader, nil
}

func (e *Election) attempt(ctx context.Context) {
	held, err := e.acquire(ctx)
	if err != nil {
		e.logger.Error().Err(err).Msg("leadership attempt failed")
		e.setLeader(false)
		return
	}
	e.setLeader(held)
}

// acquire takes the lease if vacant, or renews it if already ours.
func (e *Election) acquire(ctx context.Context) (bool, error) {
	ok, err := e.client.SetNX(ctx, electionKey, e.instanceID, e.lease).Result()
	if err != nil {
		return false, fmt.Errorf("set lease: %w", err)
	}
	if ok {
		return true, nil
	}

	current, err := e.client.Get(ctx, electionKey).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get current leader: %w", err)
	}
	if current != e.instanceID {
		return false, nil
	}

	if err := e.client.Expire(ctx, electionKey, e.lease).Err(); err != nil {
		return false, fmt.Errorf("renew lease: %w", err)
	}
	return true, nil
}

// release deletes the lease only if we still own it.
func (e *Election) release(ctx context.Context) error {
	script := `
		if redis.call("get", KEYS[1]) == ARGV[1] then
			return redis.call("del", KEYS[1])
		else
			return 0
		end
	`
	if err := e.client.Eval(ctx, script, []string{electionKey}, e.instanceID).Err(); err != nil {
		return fmt.Errorf("release lease: %w", err)
	}
	e.logger.Info().Msg("released leadership lease")
	return nil
}

func (e *Election) setLeader(isLeader bool) {
	e.mu.Lock()
	changed := e.isLeader != isLeader
	e.isLeader = isLeader
	e.mu.Unlock()

	if !changed {
		return
	}
	if isLeader {
		e.logger.Info().Str("instance_id", e.instanceID).Msg("acquired leadership")
		telemetry.LeaderStatus.WithLabelValues(e.instanceID).Set(1)
	} else {
		e.logger.Warn().Str("instance_id", e.instanceID).Msg("lost leadership")
		telemetry.LeaderStatus.WithLabelValues(e.instanceID).Set(0)
	}
}
