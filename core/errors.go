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

import "errors"

// Domain validation errors
var (
	// ErrInvalidGrant indicates a Grant failed validation.
	ErrInvalidGrant = errors.New("invalid grant")

	// ErrInvalidChunk indicates a Chunk failed validation.
	ErrInvalidChunk = errors.New("invalid chunk")

	// ErrInvalidTurn indicates a conversation Turn failed validation.
	ErrInvalidTurn = errors.New("invalid turn")

	// ErrInvalidGrantID indicates a grant id is not of the form "source:number".
	ErrInvalidGrantID = errors.New("invalid grant id")

	// ErrEmptyTitle indicates the grant Title field is empty.
	ErrEmptyTitle = errors.New("title cannot be empty")

	// ErrEmptyText indicates the chunk Text field is empty.
	ErrEmptyText = errors.New("text cannot be empty")

	// ErrEmptyContent indicates the turn Content field is empty.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrInvalidStatus indicates an invalid GrantStatus value.
	ErrInvalidStatus = errors.New("invalid grant status")

	// ErrInvalidRole indicates an invalid Role value.
	ErrInvalidRole = errors.New("invalid role")

	// ErrSignalOutOfRange indicates an eligibility signal outside [0,1].
	ErrSignalOutOfRange = errors.New("eligibility signal must be in [0,1]")
)
