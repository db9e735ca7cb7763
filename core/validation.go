// Copyright 2025 Ailsa Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import "fmt"

// ValidateGrant validates a Grant according to domain rules.
//
// Validation rules:
//   - Id must be a well-formed "source:number" composite
//   - Title must not be empty
//   - Status must be a valid GrantStatus
//   - EligibilitySignal must be in [0,1] when present
//
// NOT validated (optional feed data):
//   - URL, OpensAt/ClosesAt, TotalFundGBP (zero means unknown)
func ValidateGrant(grant *Grant) error {
	if grant == nil {
		return fmt.Errorf("%w: grant is nil", ErrInvalidGrant)
	}

	if !grant.Id.Valid() {
		return fmt.Errorf("%w: %w: %q", ErrInvalidGrant, ErrInvalidGrantID, grant.Id)
	}

	if grant.Title == "" {
		return fmt.Errorf("%w: %w", ErrInvalidGrant, ErrEmptyTitle)
	}

	if err := ValidateGrantStatus(grant.Status); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidGrant, err)
	}

	if grant.HasEligibilitySignal && (grant.EligibilitySignal < 0 || grant.EligibilitySignal > 1) {
		return fmt.Errorf("%w: %w: %v", ErrInvalidGrant, ErrSignalOutOfRange, grant.EligibilitySignal)
	}

	return nil
}

// ValidateChunk validates a Chunk according to domain rules.
//
// Validation rules:
//   - GrantId must be a well-formed "source:number" composite
//   - Text must not be empty
//
// NOT validated (populated by the ingestion pipeline):
//   - Vector (can be empty until the embedding stage runs)
//   - Id (derived from content at persist time)
func ValidateChunk(chunk *Chunk) error {
	if chunk == nil {
		return fmt.Errorf("%w: chunk is nil", ErrInvalidChunk)
	}

	if !chunk.GrantId.Valid() {
		return fmt.Errorf("%w: %w: %q", ErrInvalidChunk, ErrInvalidGrantID, chunk.GrantId)
	}

	if chunk.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyText)
	}

	return nil
}

// ValidateTurn validates a conversation Turn according to domain rules.
func ValidateTurn(turn *Turn) error {
	if turn == nil {
		return fmt.Errorf("%w: turn is nil", ErrInvalidTurn)
	}

	if turn.Content == "" {
		return fmt.Errorf("%w: %w", ErrInvalidTurn, ErrEmptyContent)
	}

	if err := ValidateRole(turn.Role); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidTurn, err)
	}

	return nil
}

// ValidateGrantStatus validates that a GrantStatus has a valid value.
func ValidateGrantStatus(status GrantStatus) error {
	if status != StatusOpen && status != StatusClosed {
		return fmt.Errorf("%w: value %d", ErrInvalidStatus, status)
	}
	return nil
}

// ValidateRole validates that a Role has a valid value.
func ValidateRole(role Role) error {
	if role != RoleUser && role != RoleAssistant {
		return fmt.Errorf("%w: value %d", ErrInvalidRole, role)
	}
	return nil
}
