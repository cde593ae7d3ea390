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


package rules

import "errors"

var (
	// ErrRuleDocumentMissing indicates the rule document was not found.
	// Callers may proceed with the empty rule set returned alongside it.
	ErrRuleDocumentMissing = errors.New("rule document missing")

	// ErrIndexRequired is returned when a Filter is built without an index.
	ErrIndexRequired = errors.New("title index required")
)
