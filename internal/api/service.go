/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package api

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ducduc1118-design/recash/internal/events"
	"github.com/ducduc1118-design/recash/internal/models"
	"github.com/ducduc1118-design/recash/internal/store"

	"go.uber.org/zap"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("admin role required")
	// ErrInsufficientBalance is returned unchanged from the store
	ErrInsufficientBalance = store.ErrInsufficientBalance
)

// RewardsService exposes wallet, check-in and withdrawal operations over a LedgerStore
type RewardsService struct {
	store     store.LedgerStore
	rewards   models.RewardsConfig
	publisher events.Publisher
	now       func() time.Time
}

type Option func(*RewardsService)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *RewardsService) { s.now = now }
}

func NewRewardsService(ledger store.LedgerStore, rewards models.RewardsConfig, publisher events.Publisher, opts ...Option) *RewardsService {
	if publisher == nil {
		publisher = events.LogPublisher{}
	}
	if rewards.Location == nil {
		rewards.Location = time.Local
	}
	s := &RewardsService{
		store:     ledger,
		rewards:   rewards,
		publisher: publisher,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RewardsService) HealthCheck(ctx context.Context) error {
	_, err := s.store.GetUsers(ctx)
	if err != nil {
		return fmt.Errorf("ledger store health check failed: %w", err)
	}
	return nil
}

// publish never fails the caller; the ledger write has already committed.
func (s *RewardsService) publish(ctx context.Context, event models.LedgerEvent) {
	event.OccurredAt = s.now().UTC()
	if err := s.publisher.Publish(ctx, event); err != nil {
		zap.L().Warn("Failed to publish ledger event",
			zap.String("type", event.Type),
			zap.String("user_id", event.UserId),
			zap.Error(err))
	}
}

func invalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// displayDate renders dates like "Jan 2" in the rewards time zone.
func (s *RewardsService) displayDate(t time.Time) string {
	return t.In(s.rewards.Location).Format("Jan 2")
}
