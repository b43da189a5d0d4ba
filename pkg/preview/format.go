// Package preview provides interactive timeline entry preview functionality using Bubble Tea TUI.
package preview

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/exyezed/xmeta/internal/extract"
)

// wrapText wraps text to the specified width, breaking at word boundaries when possible
func wrapText(text string, width int) string {
	if width <= 0 {
		width = 70
	}

	var result strings.Builder
	var line strings.Builder
	lineLen := 0

	words := strings.Fields(text)
	for i, word := range words {
		wordLen := len(word)

		// If adding this word would exceed width, start a new line
		if lineLen > 0 && lineLen+1+wordLen > width {
			result.WriteString(line.String())
			result.WriteString("\n")
			line.Reset()
			lineLen = 0
		}

		// Add space before word if not at start of line
		if lineLen > 0 {
			line.WriteString(" ")
			lineLen++
		}

		line.WriteString(word)
		lineLen += wordLen

		// Write the last line
		if i == len(words)-1 {
			result.WriteString(line.String())
		}
	}

	return result.String()
}

// FormatCompactListItem formats a single timeline entry in compact list format
// Example: "1. [photo ] 2024-01-15 10:30:00 - pbs.twimg.com/media/..."
func FormatCompactListItem(index int, entry extract.TimelineEntry) string {
	mediaType := entry.Type
	if mediaType == "" {
		mediaType = "?"
	}

	url := entry.URL
	const maxURLLength = 70
	if len(url) > maxURLLength {
		url = url[:maxURLLength-3] + "..."
	}

	marker := " "
	if entry.IsRetweet {
		marker = "R"
	}

	return fmt.Sprintf("%3d. [%-12s %s] %s  %s", index+1, mediaType, marker, entry.Date, url)
}

// FormatDetailedItem formats a single timeline entry with all metadata
func FormatDetailedItem(entry extract.TimelineEntry) string {
	var b strings.Builder

	b.WriteString("═══════════════════════════════════════════════════════════════════════\n")
	b.WriteString(fmt.Sprintf("Tweet ID: %d\n", entry.TweetID))
	b.WriteString(fmt.Sprintf("Date: %s\n", entry.Date))

	if entry.Type != "" {
		b.WriteString(fmt.Sprintf("Type: %s\n", entry.Type))
	}

	b.WriteString(fmt.Sprintf("Retweet: %t\n", entry.IsRetweet))
	if entry.RetweetID != 0 {
		b.WriteString(fmt.Sprintf("Retweet ID: %d\n", entry.RetweetID))
	}

	b.WriteString(fmt.Sprintf("Tweet Link: https://x.com/i/status/%d\n", entry.TweetID))

	// Word-wrap the media URL for readability
	b.WriteString(fmt.Sprintf("\nMedia URL:\n%s\n", wrapText(entry.URL, 70)))

	b.WriteString("═══════════════════════════════════════════════════════════════════════\n")

	return b.String()
}

// FormatJSONItem formats a single timeline entry as indented JSON, the shape
// it takes in the output document
func FormatJSONItem(entry extract.TimelineEntry) string {
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Sprintf("Error encoding entry: %s", err)
	}
	return string(data)
}
