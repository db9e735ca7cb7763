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
	"regexp"
	"strings"
)

// defaultChunkSize is the character cap per chunk. Funding call documents
// tend toward long prose sections; this keeps each fragment small enough to
// embed as a single coherent unit.
const defaultChunkSize = 1200

var paragraphSplitRe = regexp.MustCompile(`\n\s*\n`)

// chunkText splits document text into chunks on paragraph boundaries,
// packing consecutive paragraphs together up to maxLen characters. A single
// paragraph longer than maxLen is split on word boundaries.
func chunkText(text string, maxLen int) []string {
	if maxLen < 1 {
		maxLen = defaultChunkSize
	}

	paragraphs := paragraphSplitRe.Split(strings.ReplaceAll(text, "\r\n", "\n"), -1)

	var chunks []string
	var buf strings.Builder

	flush := func() {
		if buf.Len() > 0 {
			chunks = append(chunks, buf.String())
			buf.Reset()
		}
	}

	for _, paragraph := range paragraphs {
		paragraph = strings.TrimSpace(paragraph)
		if paragraph == "" {
			continue
		}

		if len(paragraph) > maxLen {
			flush()
			chunks = append(chunks, splitLongParagraph(paragraph, maxLen)...)
			continue
		}

		if buf.Len() > 0 && buf.Len()+len(paragraph)+2 > maxLen {
			flush()
		}
		if buf.Len() > 0 {
			buf.WriteString("\n\n")
		}
		buf.WriteString(paragraph)
	}
	flush()

	return chunks
}

// splitLongParagraph breaks an oversized paragraph on word boundaries.
// A single word longer than maxLen becomes its own chunk rather than being cut.
func splitLongParagraph(paragraph string, maxLen int) []string {
	words := strings.Fields(paragraph)

	var chunks []string
	var buf strings.Builder

	for _, word := range words {
		if buf.Len() > 0 && buf.Len()+len(word)+1 > maxLen {
			chunks = append(chunks, buf.String())
			buf.Reset()
		}
		if buf.Len() > 0 {
			buf.WriteByte(' ')
		}
		buf.WriteString(word)
	}
	if buf.Len() > 0 {
		chunks = append(chunks, buf.String())
	}

	return chunks
}
