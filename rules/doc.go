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


// Package rules applies the lexical rule set to candidate titles.
//
// A RuleSet enumerates disallowed words, disallowed prefixes/suffixes, and
// periodicity markers. It is loaded once from an external JSON document and
// is immutable for the process lifetime. A missing document degrades to
// empty rule lists — an explicit, logged outcome (ErrRuleDocumentMissing),
// not a silent failure.
//
// The Filter evaluates every check against a candidate and collects every
// violation, so a rejection can explain all of its grounds; the primary
// reason is the first violation in check order (words, affixes,
// periodicity).
package rules
