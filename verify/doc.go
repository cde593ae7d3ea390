// Copyright 2025 Poiesic Systems
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


// Package verify implements the multi-stage title verification pipeline.
//
// A candidate title passes through forward-only stages:
//
//	RuleCheck -> CombinationCheck -> SimilarityCheck -> Decided
//
// Any stage that blocks transitions directly to a rejection, skipping all
// later stages; the similarity search, being the most expensive step (it
// requires an embedding call), never runs once a cheaper stage has rejected.
//
// The similarity stage fuses two signals per nearest neighbor: semantic
// embedding similarity and phonetic string similarity (Jaro-Winkler plus a
// Double Metaphone sounds-identical test). The candidate's overall score is
// the maximum fused score across its top neighbors; approval requires the
// score to stay strictly below 50.
//
// On approval the orchestrator writes the title to the in-memory index
// first and the durable record store second, so a partial failure leaves at
// most an index entry the next hydration pass will not duplicate.
package verify
