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


package ingestion

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkText(t *testing.T) {
	t.Run("short text is one chunk", func(t *testing.T) {
		chunks := chunkText("A single short paragraph.", 100)

		require.Len(t, chunks, 1)
		assert.Equal(t, "A single short paragraph.", chunks[0])
	})

	t.Run("packs paragraphs up to the cap", func(t *testing.T) {
		text := "First paragraph here.\n\nSecond paragraph here.\n\nThird paragraph here."

		chunks := chunkText(text, 30)

		// Any pair would exceed 30 characters, so each paragraph stands alone.
		require.Len(t, chunks, 3)
		assert.Equal(t, "First paragraph here.", chunks[0])

		// With headroom the same paragraphs pack together.
		chunks = chunkText(text, 200)
		require.Len(t, chunks, 1)
		assert.Contains(t, chunks[0], "First paragraph here.\n\nSecond paragraph here.")
	})

	t.Run("splits an oversized paragraph on word boundaries", func(t *testing.T) {
		text := strings.Repeat("word ", 100) // 500 chars, no paragraph breaks

		chunks := chunkText(text, 120)

		assert.Greater(t, len(chunks), 1)
		for _, chunk := range chunks {
			assert.LessOrEqual(t, len(chunk), 120)
			assert.False(t, strings.HasPrefix(chunk, " "))
			assert.False(t, strings.HasSuffix(chunk, " "))
		}
	})

	t.Run("normalizes CRLF paragraph breaks", func(t *testing.T) {
		chunks := chunkText("First.\r\n\r\nSecond.", 10)

		require.Len(t, chunks, 2)
		assert.Equal(t, "First.", chunks[0])
		assert.Equal(t, "Second.", chunks[1])
	})

	t.Run("empty and whitespace-only text", func(t *testing.T) {
		assert.Empty(t, chunkText("", 100))
		assert.Empty(t, chunkText("   \n\n  \t ", 100))
	})

	t.Run("non-positive cap falls back to the default", func(t *testing.T) {
		chunks := chunkText("A short paragraph.", 0)

		require.Len(t, chunks, 1)
	})
}
