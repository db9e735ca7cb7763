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


// Package search implements the hybrid retrieval and ranking engine.
//
// The Engine type runs a multi-stage pipeline per query:
//
//   - Intent classification: discovery, definition, comparative, or
//     follow-up. Definition queries skip retrieval entirely.
//   - Candidate retrieval: over-fetched vector search over document chunks,
//     grouped to one candidate per grant (best chunk score wins), plus a
//     single bulk metadata fetch.
//   - Score fusion: weighted blend of semantic similarity and the structured
//     eligibility signal, renormalizing to pure semantic when the signal is
//     absent.
//   - Adaptive thresholding: the minimum score relaxes stepwise toward a
//     floor while too few candidates qualify, and the response reports the
//     threshold that was actually in force.
//   - Diversity selection: greedy pick with penalties for repeating a source
//     or closely overlapping an already-selected title.
//
// Comparative queries fan each compared fragment out to concurrent vector
// lookups on a worker pool. Follow-up queries fall back to resolving grant
// references from the conversation and fetching those grants directly.
//
// Remote calls (embedding, vector search, metadata) retry with exponential
// backoff; the response carries provenance (effective threshold, relaxation,
// missing metadata) so a downstream answer generator can phrase its
// confidence honestly.
package search
