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

// WalletView is the presentation form of a WalletSummary
type WalletView struct {
	Balance  string `json:"balance"`
	Pending  string `json:"pending"`
	Lifetime string `json:"lifetime"`
}

// LedgerRecord represents an entry in the user's wallet history
type LedgerRecord struct {
	Id     string `json:"id"`
	Title  string `json:"title"`
	Amount string `json:"amount"`
	Type   string `json:"type"`   // "earning", "withdrawal", "bonus"
	Status string `json:"status"` // "pending", "completed", "failed"
	Date   string `json:"date"`
}

// WithdrawalRecord represents a withdrawal request in the user's history.
// The user fields are only filled in the admin queue.
type WithdrawalRecord struct {
	Id       string `json:"id"`
	UserId   string `json:"user_id,omitempty"`
	UserName string `json:"user_name,omitempty"`
	Method   string `json:"method"`
	Details  string `json:"details"`
	Amount   string `json:"amount"`
	Status   string `json:"status"`
	Date     string `json:"date"`
}

// WithdrawalResult represents the result of requesting a withdrawal
type WithdrawalResult struct {
	Success      bool   `json:"success"`
	WithdrawalId string `json:"withdrawal_id,omitempty"`
	Amount       string `json:"amount,omitempty"`
	NewBalance   string `json:"new_balance,omitempty"`
	Error        string `json:"error,omitempty"`
}

// UserBalance is one line of the admin wallet report
type UserBalance struct {
	UserId  string     `json:"user_id"`
	Name    string     `json:"name"`
	Email   string     `json:"email"`
	Joined  string     `json:"joined"`
	Summary WalletView `json:"summary"`
}

// Profile is the public view of the authenticated user
type Profile struct {
	Id           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	ReferralCode string `json:"referral_code"`
	Role         Role   `json:"role"`
}
