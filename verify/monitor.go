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


package verify

import "github.com/poiesic/titlegate/core"

// Monitor receives callbacks as a candidate moves through the pipeline.
// Implementations must be cheap; they run inline on the request path.
type Monitor interface {
	// Begin is called once before any stage runs.
	Begin(title string)

	// RuleChecked is called after the lexical rule stage with whether it
	// blocked the candidate.
	RuleChecked(blocked bool)

	// CombinationChecked is called after the combination stage with
	// whether it blocked the candidate.
	CombinationChecked(blocked bool)

	// SimilarityScored is called after the similarity stage with the
	// fused score. It is not called when an earlier stage blocked.
	SimilarityScored(score float64)

	// Decided is called once with the final decision.
	Decided(decision *core.Decision)
}

type noopMonitor struct{}

func (noopMonitor) Begin(string)             {}
func (noopMonitor) RuleChecked(bool)         {}
func (noopMonitor) CombinationChecked(bool)  {}
func (noopMonitor) SimilarityScored(float64) {}
func (noopMonitor) Decided(*core.Decision)   {}

// NoopMonitor returns a monitor that ignores every callback.
func NoopMonitor() Monitor {
	return noopMonitor{}
}
