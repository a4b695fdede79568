package rag

import (
	"fmt"
	"strings"

	"github.com/poiesic/healthhub/index"
)

// contextContentLimit caps how much of each document's text is passed to
// the generator.
const contextContentLimit = 1500

// missingContentPlaceholder stands in for matches whose metadata lacks
// stored text, which happens when vectors were written by an older build.
const missingContentPlaceholder = "(Not stored in index; re-upload documents to include content.)"

// formatContext renders retrieved matches as a numbered document list for
// the generator prompt.
func formatContext(matches []index.Match) string {
	if len(matches) == 0 {
		return "No relevant documents found."
	}

	var b strings.Builder
	for i, match := range matches {
		if i > 0 {
			b.WriteString("\n\n")
		}

		content := match.Metadata["text"]
		if content == "" {
			content = missingContentPlaceholder
		} else if len(content) > contextContentLimit {
			content = content[:contextContentLimit] + "..."
		}

		fmt.Fprintf(&b, "[Document %d - %s]\n", i+1, match.ID)
		fmt.Fprintf(&b, "Domain: %s\n", match.Metadata["domain"])
		fmt.Fprintf(&b, "Source: %s\n", match.Metadata["source"])
		fmt.Fprintf(&b, "Source Type: %s\n", match.Metadata["source_type"])
		fmt.Fprintf(&b, "Classification: %s\n", match.Metadata["data_classification"])
		fmt.Fprintf(&b, "Content: %s", content)
	}
	return b.String()
}
