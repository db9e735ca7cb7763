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


package search

import (
	"errors"
	"math"
	"time"
)

// Config holds the tuning parameters for the ranking engine.
type Config struct {
	// SemanticWeight and EligibilityWeight blend the two score signals.
	// They must sum to 1. When a candidate has no eligibility signal its
	// fused score falls back to pure semantic similarity.
	SemanticWeight    float64
	EligibilityWeight float64

	// MinThreshold is the fused score required for a candidate to be
	// surfaced. ThresholdFloor is the lowest the engine will relax to,
	// in decrements of ThresholdStep, while fewer than MinAcceptable
	// candidates qualify.
	MinThreshold   float64
	ThresholdFloor float64
	ThresholdStep  float64
	MinAcceptable  int

	// MaxResults caps the final result list.
	MaxResults int

	// DiversityWeight scales the selection penalties. A selected candidate
	// from the same source costs SameSourcePenalty x DiversityWeight;
	// a title token overlap above TitleOverlapCutoff costs
	// TitleOverlapPenalty x DiversityWeight.
	DiversityWeight     float64
	SameSourcePenalty   float64
	TitleOverlapPenalty float64
	TitleOverlapCutoff  float64

	// OverFetchFactor multiplies MaxResults to size the chunk-level vector
	// search, leaving headroom for grouping and filtering.
	OverFetchFactor int

	// FragmentTopK is the per-fragment vector search size on the
	// comparative path.
	FragmentTopK int

	// FragmentWorkers sizes the worker pool for concurrent fragment lookups.
	FragmentWorkers int

	// NeutralSemantic is the semantic score assigned to candidates fetched
	// directly by id rather than through vector search.
	NeutralSemantic float64

	// HistoryRefBound caps how many grant refs are pulled from conversation
	// history on the follow-up path.
	HistoryRefBound int

	// RequestTimeout bounds a whole search request. Zero disables the bound.
	RequestTimeout time.Duration

	// RetryAttempts and RetryBaseDelay shape the exponential backoff used
	// for embedding, vector search, and metadata calls.
	RetryAttempts  int
	RetryBaseDelay time.Duration
}

// DefaultConfig returns the production tuning.
func DefaultConfig() *Config {
	return &Config{
		SemanticWeight:      0.7,
		EligibilityWeight:   0.3,
		MinThreshold:        0.40,
		ThresholdFloor:      0.30,
		ThresholdStep:       0.05,
		MinAcceptable:       2,
		MaxResults:          5,
		DiversityWeight:     0.15,
		SameSourcePenalty:   0.5,
		TitleOverlapPenalty: 0.3,
		TitleOverlapCutoff:  0.5,
		OverFetchFactor:     3,
		FragmentTopK:        10,
		FragmentWorkers:     4,
		NeutralSemantic:     0.5,
		HistoryRefBound:     20,
		RequestTimeout:      15 * time.Second,
		RetryAttempts:       3,
		RetryBaseDelay:      200 * time.Millisecond,
	}
}

// Validate checks that the configuration is coherent.
func (c *Config) Validate() error {
	if c.SemanticWeight < 0 || c.EligibilityWeight < 0 {
		return errors.New("search config: weights must be non-negative")
	}
	if math.Abs(c.SemanticWeight+c.EligibilityWeight-1) > 1e-9 {
		return errors.New("search config: SemanticWeight and EligibilityWeight must sum to 1")
	}
	if c.MinThreshold < c.ThresholdFloor {
		return errors.New("search config: MinThreshold must be >= ThresholdFloor")
	}
	if c.ThresholdStep <= 0 {
		return errors.New("search config: ThresholdStep must be positive")
	}
	if c.MinAcceptable < 1 {
		return errors.New("search config: MinAcceptable must be at least 1")
	}
	if c.MaxResults < 1 {
		return errors.New("search config: MaxResults must be at least 1")
	}
	if c.OverFetchFactor < 1 {
		return errors.New("search config: OverFetchFactor must be at least 1")
	}
	if c.FragmentTopK < 1 {
		return errors.New("search config: FragmentTopK must be at least 1")
	}
	if c.FragmentWorkers < 1 {
		return errors.New("search config: FragmentWorkers must be at least 1")
	}
	if c.NeutralSemantic < 0 || c.NeutralSemantic > 1 {
		return errors.New("search config: NeutralSemantic must be in [0,1]")
	}
	if c.RetryAttempts < 1 {
		return errors.New("search config: RetryAttempts must be at least 1")
	}
	return nil
}
