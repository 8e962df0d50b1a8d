// Package report renders CatchAll results as markdown and persists finished
// reports for later listing and follow-up chat.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/newscatcherapi/catchall-go/catchall"
)

// maxCitations bounds the sources listed per record or cluster.
const maxCitations = 3

// Enrichment keys the server produces for the default summary schema.
const (
	keySummary = "schema_based_summary"
	keyEvent   = "event_description"
)

// FormatRecords renders records as a markdown section.
func FormatRecords(records []catchall.Record) string {
	if len(records) == 0 {
		return "No records found.\n"
	}
	var b strings.Builder
	for i, r := range records {
		title := r.Title
		if title == "" {
			title = fmt.Sprintf("Record %d", i+1)
		}
		fmt.Fprintf(&b, "### %d. %s\n\n", i+1, title)
		if summary := recordSummary(r.Enrichment); summary != "" {
			b.WriteString(summary)
			b.WriteString("\n\n")
		}
		writeEnrichmentFields(&b, r.Enrichment)
		writeCitations(&b, r.Citations)
	}
	return b.String()
}

// FormatClusters renders clusters as a markdown section.
func FormatClusters(clusters []catchall.Cluster) string {
	if len(clusters) == 0 {
		return "No clusters found.\n"
	}
	var b strings.Builder
	for i, c := range clusters {
		title := c.Title
		if title == "" {
			title = fmt.Sprintf("Cluster %d", i+1)
		}
		fmt.Fprintf(&b, "### %d. %s\n\n", i+1, title)
		if c.Summary != "" {
			b.WriteString(c.Summary)
			b.WriteString("\n\n")
		}
		writeEnrichmentFields(&b, c.Enrichment)
		writeCitations(&b, c.Citations)
	}
	return b.String()
}

// FormatPage renders a full pulled page, preferring records over clusters the
// same way counting does.
func FormatPage(page *catchall.PullResponse) string {
	if page == nil {
		return "No results.\n"
	}
	var b strings.Builder
	if page.Query != "" {
		fmt.Fprintf(&b, "## Results for: %s\n\n", page.Query)
	}
	if page.DateRange.StartDate != "" || page.DateRange.EndDate != "" {
		fmt.Fprintf(&b, "Period: %s to %s\n\n", page.DateRange.StartDate, page.DateRange.EndDate)
	}
	if len(page.Records) > 0 {
		b.WriteString(FormatRecords(page.Records))
	} else {
		b.WriteString(FormatClusters(page.Clusters))
	}
	return b.String()
}

func recordSummary(e catchall.Enrichment) string {
	if s := e.String(keySummary); s != "" {
		return s
	}
	return e.String(keyEvent)
}

// writeEnrichmentFields lists the remaining scalar enrichment values as
// bullets, skipping the summary keys already rendered as prose.
func writeEnrichmentFields(b *strings.Builder, e catchall.Enrichment) {
	var wrote bool
	for _, key := range sortedKeys(e) {
		if key == keySummary || key == keyEvent {
			continue
		}
		v := e.String(key)
		if v == "" || e.Map(key) != nil {
			continue
		}
		fmt.Fprintf(b, "- **%s**: %s\n", humanize(key), v)
		wrote = true
	}
	if wrote {
		b.WriteString("\n")
	}
}

func writeCitations(b *strings.Builder, citations []catchall.Citation) {
	if len(citations) == 0 {
		return
	}
	b.WriteString("Sources:\n")
	n := len(citations)
	if n > maxCitations {
		n = maxCitations
	}
	for _, c := range citations[:n] {
		title := c.Title
		if title == "" {
			title = c.Link
		}
		fmt.Fprintf(b, "- [%s](%s)\n", title, c.Link)
	}
	if len(citations) > maxCitations {
		fmt.Fprintf(b, "- and %d more\n", len(citations)-maxCitations)
	}
	b.WriteString("\n")
}

func humanize(key string) string {
	words := strings.Fields(strings.ReplaceAll(key, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// sortedKeys keeps map iteration order out of the output.
func sortedKeys(e catchall.Enrichment) []string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
