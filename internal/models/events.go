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

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	EventCheckinCompleted    = "checkin.completed"
	EventWithdrawalRequested = "withdrawal.requested"
	EventWithdrawalSettled   = "withdrawal.settled"
	EventCashbackRecorded    = "cashback.recorded"
	EventEntrySettled        = "entry.settled"
	EventBonusCredited       = "bonus.credited"
)

// LedgerEvent is published after a ledger write has been committed
type LedgerEvent struct {
	Type       string          `json:"type"`
	UserId     string          `json:"user_id"`
	EntryId    string          `json:"entry_id,omitempty"`
	Title      string          `json:"title,omitempty"`
	Amount     decimal.Decimal `json:"amount"`
	Status     string          `json:"status,omitempty"`
	Streak     int             `json:"streak,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
}
