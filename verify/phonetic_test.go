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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPhoneticSimilarity(t *testing.T) {
	t.Run("identical strings sound alike", func(t *testing.T) {
		score, alike := PhoneticSimilarity("daily herald", "daily herald")
		assert.Equal(t, 100.0, score)
		assert.True(t, alike)
	})

	t.Run("case and whitespace are ignored", func(t *testing.T) {
		score, alike := PhoneticSimilarity("  Daily Herald  ", "daily herald")
		assert.Equal(t, 100.0, score)
		assert.True(t, alike)
	})

	t.Run("spelling variants with equal phonetic codes force 100", func(t *testing.T) {
		score, alike := PhoneticSimilarity("namaskar", "namascar")
		assert.Equal(t, 100.0, score)
		assert.True(t, alike)
	})

	t.Run("unrelated strings score low", func(t *testing.T) {
		score, alike := PhoneticSimilarity("zulu quorum", "axis base")
		assert.Less(t, score, 50.0)
		assert.False(t, alike)
	})

	t.Run("close spellings score high without sounding identical", func(t *testing.T) {
		score, alike := PhoneticSimilarity("morning star", "morning stars")
		assert.Greater(t, score, 80.0)
		if !alike {
			assert.Less(t, score, 100.0)
		}
	})
}
