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


// Package index implements the hybrid in-memory title index.
//
// The index keeps two representations of the title corpus in lockstep:
//
//   - an O(1) exact-match structure (normalized key -> ordinal position)
//   - a flat row-major vector matrix searched by inner product on
//     L2-normalized embeddings, with the ordinal text sequence mapping each
//     row back to its canonical title
//
// Keeping the exact-match structure separate lets cheap rule checks
// short-circuit a verification before the expensive embedding call is ever
// made.
//
// All reads may run concurrently; mutation is serialized behind a single
// writer lock so a reader can never observe the vector matrix and the
// ordinal sequence disagreeing on length.
//
// At startup, Hydrate loads a pre-built snapshot (manifest + titles.jsonl +
// raw little-endian float32 vectors) and then reconciles against the durable
// record store, embedding and appending any approved title the snapshot
// predates.
package index
