package report

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/fakeyudi/ejtrace/internal/extract"
)

// Renderer serializes a Report to bytes.
type Renderer interface {
	Render(r *Report) ([]byte, error)
	// Extension is the file extension, without the dot, for this format.
	Extension() string
}

// NewRenderer returns the renderer for format: text, markdown, json or yaml.
func NewRenderer(format string) (Renderer, error) {
	switch strings.ToLower(format) {
	case "text", "txt":
		return &TextRenderer{}, nil
	case "markdown", "md":
		return &MarkdownRenderer{}, nil
	case "json":
		return &JSONRenderer{}, nil
	case "yaml", "yml":
		return &YAMLRenderer{}, nil
	}
	return nil, fmt.Errorf("unknown report format %q (want text, markdown, json or yaml)", format)
}

// TextRenderer writes the window in journal form: the sessions in stream
// order with a separator line before, between and after them. NotFound
// reports render as empty.
type TextRenderer struct{}

func (t *TextRenderer) Render(r *Report) ([]byte, error) {
	if len(r.Sessions) == 0 {
		return nil, nil
	}
	var sb strings.Builder
	sb.WriteString(extract.Separator + "\n")
	for _, s := range r.Sessions {
		sb.WriteString(s.Text)
		sb.WriteString("\n" + extract.Separator + "\n")
	}
	return []byte(sb.String()), nil
}

func (t *TextRenderer) Extension() string { return "txt" }

// JSONRenderer renders a Report as indented JSON.
type JSONRenderer struct{}

func (j *JSONRenderer) Render(r *Report) ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

func (j *JSONRenderer) Extension() string { return "json" }

// YAMLRenderer renders a Report as a YAML document.
type YAMLRenderer struct{}

func (y *YAMLRenderer) Render(r *Report) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return nil, fmt.Errorf("encode yaml report: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (y *YAMLRenderer) Extension() string { return "yaml" }

const (
	versionSentinel = "<!-- ejtrace-report-version: 1 -->"
	dataPrefix      = "<!-- ejtrace-data: "
	dataSuffix      = " -->"
)

// MarkdownRenderer renders a Report as human-readable Markdown with an
// embedded base64 JSON payload for lossless round-trip parsing.
type MarkdownRenderer struct{}

func (m *MarkdownRenderer) Extension() string { return "md" }

func (m *MarkdownRenderer) Render(r *Report) ([]byte, error) {
	jsonBytes, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	encoded := base64.StdEncoding.EncodeToString(jsonBytes)

	var sb strings.Builder

	sb.WriteString(versionSentinel + "\n")
	fmt.Fprintf(&sb, "%s%s%s\n\n", dataPrefix, encoded, dataSuffix)

	fmt.Fprintf(&sb, "# Trace %s — terminal %s\n\n", r.Trace, r.TerminalID)

	// ## Summary
	sb.WriteString("## Summary\n\n")
	fmt.Fprintf(&sb, "- Outcome: %s\n", r.Outcome)
	fmt.Fprintf(&sb, "- Window: %d successful withdrawals each side\n", r.WindowSize)
	fmt.Fprintf(&sb, "- Withdrawals before: %d (missing %d)\n", r.Counts.SuccessesBefore, r.Counts.BeforeDeficit)
	fmt.Fprintf(&sb, "- Withdrawals after: %d (missing %d)\n", r.Counts.SuccessesAfter, r.Counts.AfterDeficit)
	if r.Counts.BeforeOpen {
		sb.WriteString("- First session starts before the supplied journals\n")
	}
	if r.Counts.AfterOpen {
		sb.WriteString("- Last session continues past the supplied journals\n")
	}
	if r.Investigator != "" {
		fmt.Fprintf(&sb, "- Investigator: %s\n", r.Investigator)
	}
	fmt.Fprintf(&sb, "- Created: %s\n", r.CreatedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&sb, "- Report ID: %s\n", r.ID)
	if r.Digest != "" {
		fmt.Fprintf(&sb, "- Digest (sha256): `%s`\n", r.Digest)
	}
	if r.Hint != "" {
		fmt.Fprintf(&sb, "\n> %s\n", r.Hint)
	}
	sb.WriteString("\n")

	// ## Window
	sb.WriteString("## Window\n\n")
	if len(r.Sessions) == 0 {
		sb.WriteString("_Trace not found._\n")
	}
	for _, s := range r.Sessions {
		fmt.Fprintf(&sb, "### Session %d%s\n\n", s.Index, badges(s))
		sb.WriteString("```\n")
		sb.WriteString(s.Text)
		sb.WriteString("\n```\n\n")
	}

	// ## Sources
	sb.WriteString("## Sources\n\n")
	if len(r.Sources) == 0 {
		sb.WriteString("_No journal files._\n")
	} else {
		sb.WriteString("| Date | Path |\n")
		sb.WriteString("|------|------|\n")
		for _, src := range r.Sources {
			fmt.Fprintf(&sb, "| %s | %s |\n", src.Date, src.Path)
		}
	}
	sb.WriteString("\n")

	return []byte(sb.String()), nil
}

func badges(s Session) string {
	var b []string
	if s.Target {
		b = append(b, "target")
	}
	if s.SuccessWithdrawal {
		b = append(b, "withdrawal")
	}
	if !s.Complete {
		b = append(b, "incomplete")
	}
	if len(b) == 0 {
		return ""
	}
	return " (" + strings.Join(b, ", ") + ")"
}
