// Package render presents offload archives as markdown and sanitized HTML.
// Archives are written append-only as timestamped plain-text sections;
// ParseLog splits a log back into sections, Markdown formats them for
// reading, and HTML converts that markdown for embedding in a page.
package render

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/turnwise/recap/turns"
)

// Section is one archive span: the turns discarded by a single compaction
// round.
type Section struct {
	// At is the section timestamp; zero when the header could not be parsed
	At time.Time

	// Turns is the turn count recorded in the header, 0 when absent
	Turns int

	// Body is the role-labelled text exactly as archived
	Body string
}

// Header remainder after the section marker: "<RFC3339> (<n> turns) ====".
var sectionHeaderRE = regexp.MustCompile(`^(\S+) \((\d+) turns\) ====$`)

// ParseLog splits an offload log into its sections. Content before the
// first marker, and sections whose header line is damaged, are preserved as
// headerless sections rather than dropped: an archive reader must never
// lose turns.
func ParseLog(data []byte) []Section {
	text := string(data)
	if text == "" {
		return nil
	}

	var sections []Section
	chunks := strings.Split(text, turns.SectionMarker)
	if lead := chunks[0]; strings.TrimSpace(lead) != "" {
		sections = append(sections, Section{Body: lead})
	}
	for _, chunk := range chunks[1:] {
		header, body, _ := strings.Cut(chunk, "\n")
		m := sectionHeaderRE.FindStringSubmatch(header)
		if m == nil {
			sections = append(sections, Section{Body: turns.SectionMarker + chunk})
			continue
		}
		at, err := time.Parse(time.RFC3339, m[1])
		if err != nil {
			sections = append(sections, Section{Body: turns.SectionMarker + chunk})
			continue
		}
		var count int
		fmt.Sscanf(m[2], "%d", &count)
		sections = append(sections, Section{At: at, Turns: count, Body: body})
	}
	return sections
}

// Markdown formats archive sections as a readable document: one heading per
// section, role labels bolded, tool call and result lines left verbatim.
func Markdown(sections []Section) string {
	var sb strings.Builder
	for i, s := range sections {
		if i > 0 {
			sb.WriteString("\n---\n\n")
		}
		sb.WriteString("## ")
		if s.At.IsZero() {
			sb.WriteString("Archived turns")
		} else {
			sb.WriteString("Archived ")
			sb.WriteString(s.At.UTC().Format("2006-01-02 15:04:05 UTC"))
		}
		if s.Turns > 0 {
			fmt.Fprintf(&sb, " (%d turns)", s.Turns)
		}
		sb.WriteString("\n\n")
		sb.WriteString(bodyMarkdown(s.Body))
		sb.WriteString("\n")
	}
	return sb.String()
}

// roleLabels are the line prefixes the archive renderer emits, longest
// match first so "User (summary): " wins over "User: ".
var roleLabels = []string{
	"User (summary): ",
	"User: ",
	"Assistant: ",
	"System: ",
}

func bodyMarkdown(body string) string {
	lines := strings.Split(strings.TrimRight(body, "\n"), "\n")
	for i, line := range lines {
		for _, label := range roleLabels {
			if rest, ok := strings.CutPrefix(line, label); ok {
				lines[i] = "**" + strings.TrimSuffix(label, ": ") + ":** " + rest
				break
			}
		}
	}
	return strings.Join(lines, "\n")
}

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(html.WithHardWraps()),
)

// policy keeps user-generated content: basic formatting, links, code, no
// scripts or event handlers.
var policy = bluemonday.UGCPolicy()

// HTML converts markdown to sanitized HTML. Archive bodies carry whatever
// the conversation contained, so the output is always run through the
// sanitizer before it can reach a page.
func HTML(md string) ([]byte, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(md), &buf); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}
	return policy.SanitizeBytes(buf.Bytes()), nil
}
