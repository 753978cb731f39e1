// Package export renders a player's journal as Markdown, HTML or PDF.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/yuin/goldmark"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/wricardo/escape-room-game/game/engine"
)

// Format is a journal export format
type Format string

const (
	Markdown Format = "markdown"
	HTML     Format = "html"
	PDF      Format = "pdf"
)

var ErrUnsupportedFormat = errors.New("unsupported export format")

// ParseFormat accepts the format names and their common file extensions
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "md", "markdown":
		return Markdown, nil
	case "html", "htm":
		return HTML, nil
	case "pdf":
		return PDF, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// Journal is everything an exported journal shows
type Journal struct {
	SessionID      string
	Campaign       string
	Difficulty     engine.Difficulty
	Status         engine.GameStatus
	ElapsedSeconds int
	HintsUsed      int
	Entries        []engine.JournalEntry
	// RoomNames maps room IDs to display names; unknown rooms show their ID
	RoomNames map[string]string
}

// Document is a rendered export
type Document struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Render produces the journal in the requested format
func Render(j Journal, format Format) (*Document, error) {
	base := "journal"
	if j.SessionID != "" {
		base = "journal-" + j.SessionID
	}
	switch format {
	case Markdown:
		return &Document{Filename: base + ".md", ContentType: "text/markdown; charset=utf-8", Data: RenderMarkdown(j)}, nil
	case HTML:
		data, err := RenderHTML(j)
		if err != nil {
			return nil, err
		}
		return &Document{Filename: base + ".html", ContentType: "text/html; charset=utf-8", Data: data}, nil
	case PDF:
		data, err := RenderPDF(j)
		if err != nil {
			return nil, err
		}
		return &Document{Filename: base + ".pdf", ContentType: "application/pdf", Data: data}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

// RenderMarkdown groups entries by room, in discovery order
func RenderMarkdown(j Journal) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s Journal\n\n", title(j))
	fmt.Fprintf(&b, "- Difficulty: %s\n", j.Difficulty)
	fmt.Fprintf(&b, "- Status: %s\n", j.Status)
	fmt.Fprintf(&b, "- Time: %s\n", formatElapsed(j.ElapsedSeconds))
	fmt.Fprintf(&b, "- Hints used: %d\n\n", j.HintsUsed)

	if len(j.Entries) == 0 {
		b.WriteString("_No clues found yet._\n")
		return []byte(b.String())
	}
	for _, group := range groupByRoom(j) {
		fmt.Fprintf(&b, "## %s\n\n", group.name)
		for _, e := range group.entries {
			fmt.Fprintf(&b, "- %s _(%s)_\n", escapeMarkdown(e.Text), e.DiscoveredAt.UTC().Format(time.RFC822))
		}
		b.WriteString("\n")
	}
	return []byte(b.String())
}

// RenderHTML converts the Markdown journal to a standalone HTML page
func RenderHTML(j Journal) ([]byte, error) {
	md := goldmark.New(
		goldmark.WithRendererOptions(goldmarkhtml.WithHardWraps()),
	)
	var body bytes.Buffer
	if err := md.Convert(RenderMarkdown(j), &body); err != nil {
		return nil, fmt.Errorf("render journal html: %w", err)
	}

	var page bytes.Buffer
	page.WriteString("<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\"><title>")
	page.WriteString(htmlEscape(title(j)))
	page.WriteString(" Journal</title></head>\n<body>\n")
	page.Write(body.Bytes())
	page.WriteString("</body></html>\n")
	return page.Bytes(), nil
}

// RenderPDF lays the journal out on A4 pages
func RenderPDF(j Journal) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(title(j)+" Journal", true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, tr(title(j)+" Journal"))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	summary := fmt.Sprintf("Difficulty: %s   Status: %s   Time: %s   Hints used: %d",
		j.Difficulty, j.Status, formatElapsed(j.ElapsedSeconds), j.HintsUsed)
	pdf.MultiCell(0, 6, tr(summary), "", "L", false)
	pdf.Ln(4)

	if len(j.Entries) == 0 {
		pdf.SetFont("Helvetica", "I", 11)
		pdf.MultiCell(0, 6, "No clues found yet.", "", "L", false)
	}
	for _, group := range groupByRoom(j) {
		pdf.SetFont("Helvetica", "B", 14)
		pdf.Cell(0, 8, tr(group.name))
		pdf.Ln(9)
		pdf.SetFont("Helvetica", "", 11)
		for _, e := range group.entries {
			pdf.MultiCell(0, 6, tr("- "+e.Text), "", "L", false)
		}
		pdf.Ln(3)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render journal pdf: %w", err)
	}
	return buf.Bytes(), nil
}

type roomGroup struct {
	name    string
	entries []engine.JournalEntry
}

func groupByRoom(j Journal) []roomGroup {
	var groups []roomGroup
	index := map[string]int{}
	for _, e := range j.Entries {
		i, ok := index[e.RoomID]
		if !ok {
			name := j.RoomNames[e.RoomID]
			if name == "" {
				name = e.RoomID
			}
			groups = append(groups, roomGroup{name: name})
			i = len(groups) - 1
			index[e.RoomID] = i
		}
		groups[i].entries = append(groups[i].entries, e)
	}
	return groups
}

func title(j Journal) string {
	if j.Campaign == "" {
		return "Escape Room"
	}
	return j.Campaign
}

func formatElapsed(seconds int) string {
	return (time.Duration(seconds) * time.Second).String()
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`, "*", `\*`, "_", `\_`, "`", "\\`", "[", `\[`, "]", `\]`, "<", "&lt;", ">", "&gt;",
)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")

func htmlEscape(s string) string {
	return htmlEscaper.Replace(s)
}
