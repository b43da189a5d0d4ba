package preview

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/exyezed/xmeta/internal/extract"
)

// FormatSummary renders a human-readable extraction summary for terminal
// output. Error responses render as a single styled error line.
func FormatSummary(resp *extract.Response) string {
	if !resp.OK() {
		errorStyle := lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("9"))
		return errorStyle.Render("Error: "+resp.Err) + "\n"
	}

	var b strings.Builder

	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12"))
	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("240"))

	divider := strings.Repeat("=", 60)

	b.WriteString("\n" + divider + "\n")
	b.WriteString(headerStyle.Render("EXTRACTION SUMMARY"))
	b.WriteString("\n" + divider + "\n")

	result := resp.Result
	if account := result.AccountInfo; account != nil {
		b.WriteString(fmt.Sprintf("\n%s @%s\n", labelStyle.Render("Account:"), account.Nick))
		b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Name:"), account.Name))
		b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Followers:"), formatThousands(account.FollowersCount)))
		b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Following:"), formatThousands(account.FriendsCount)))
		b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Total Tweets:"), formatThousands(account.StatusesCount)))
		b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Join Date:"), account.Date))
	}

	b.WriteString(fmt.Sprintf("\n%s %s\n", labelStyle.Render("Media URLs Found:"), formatThousands(result.TotalURLs)))

	switch meta := result.Metadata.(type) {
	case *extract.PaginationMetadata:
		b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("New Entries:"), formatThousands(meta.NewEntries)))
		b.WriteString(fmt.Sprintf("%s %d\n", labelStyle.Render("Page:"), meta.Page))
		b.WriteString(fmt.Sprintf("%s %d\n", labelStyle.Render("Batch Size:"), meta.BatchSize))
		b.WriteString(fmt.Sprintf("%s %t\n", labelStyle.Render("Has More:"), meta.HasMore))
	case *extract.SearchMetadata:
		b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("New Entries:"), formatThousands(meta.NewEntries)))
		b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Method:"), meta.Method))
		b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Date Range:"), meta.DateRange))
	}

	// Timeline preview, first 5 entries
	if len(result.Timeline) > 0 {
		b.WriteString("\n--- Timeline Preview (first 5 entries) ---\n")
		limit := len(result.Timeline)
		if limit > 5 {
			limit = 5
		}
		for i := 0; i < limit; i++ {
			entry := result.Timeline[i]
			url := entry.URL
			if len(url) > 80 {
				url = url[:80] + "..."
			}
			b.WriteString(fmt.Sprintf("\n%d. Date: %s\n", i+1, entry.Date))
			if entry.Type != "" {
				b.WriteString(fmt.Sprintf("   Type: %s\n", entry.Type))
			}
			b.WriteString(fmt.Sprintf("   Tweet ID: %d\n", entry.TweetID))
			b.WriteString(fmt.Sprintf("   Retweet: %t\n", entry.IsRetweet))
			b.WriteString(fmt.Sprintf("   URL: %s\n", url))
		}
	}

	b.WriteString("\n" + divider + "\n")

	return b.String()
}

// formatThousands renders an integer with comma grouping, e.g. 1234567 -> "1,234,567"
func formatThousands(n int) string {
	s := fmt.Sprintf("%d", n)
	negative := strings.HasPrefix(s, "-")
	if negative {
		s = s[1:]
	}

	var b strings.Builder
	for i, digit := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteString(",")
		}
		b.WriteRune(digit)
	}

	if negative {
		return "-" + b.String()
	}
	return b.String()
}
