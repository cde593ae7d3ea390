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


// Package ai provides abstractions for the embedding services used by
// titlegate.
//
// The verification engine never talks to a model service directly; it depends
// on the Embedder interface, which maps a title string to a fixed-length
// vector. A Provider aggregates embedding services for convenient
// initialization and lifecycle management.
//
// # Implementation Packages
//
//   - ai/openai: production implementation using OpenAI-compatible APIs
//   - ai/mock: deterministic test doubles with call counting
//
// Production constructors return interfaces to enforce abstraction; mock
// constructors expose concrete types so tests can make assertions on call
// counts and injected behavior.
package ai
