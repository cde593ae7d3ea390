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

import (
	"github.com/antzucaro/matchr"

	"github.com/poiesic/titlegate/core"
)

// PhoneticSimilarity scores how alike two titles sound on a 0 to 100 scale.
//
// The base score is Jaro-Winkler string similarity over the normalized
// forms. When the primary Double Metaphone codes of both titles are equal
// and non-empty, the pair is treated as sounding identical regardless of
// spelling distance and the score is forced to 100; the second return
// value reports that case.
func PhoneticSimilarity(a, b string) (score float64, soundsAlike bool) {
	na := core.NormalizeKey(a)
	nb := core.NormalizeKey(b)

	score = matchr.JaroWinkler(na, nb, false) * 100

	codeA, _ := matchr.DoubleMetaphone(na)
	codeB, _ := matchr.DoubleMetaphone(nb)
	if codeA != "" && codeA == codeB {
		return 100, true
	}

	return score, false
}
