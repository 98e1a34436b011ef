// Package cli renders resumatch results for the terminal.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hyperjump/resumatch/internal/explain"
	"github.com/hyperjump/resumatch/internal/models"
	"github.com/hyperjump/resumatch/pkg/utils"
)

// OutputFormat is the format for ranking output.
type OutputFormat string

const (
	// OutputText is human-readable text with previews (default).
	OutputText OutputFormat = "text"
	// OutputCompact is one line per candidate.
	OutputCompact OutputFormat = "compact"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseOutputFormat validates a format name.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case OutputText, OutputCompact, OutputJSON:
		return f, nil
	case "":
		return OutputText, nil
	default:
		return "", fmt.Errorf("unknown output format %q; use text, compact or json", s)
	}
}

// WriteAnalysis writes a ranked analysis to w in the given format.
func WriteAnalysis(w io.Writer, resp *models.AnalysisResponse, format OutputFormat) error {
	switch format {
	case OutputJSON:
		return writeJSON(w, resp)
	case OutputCompact:
		writeAnalysisCompact(w, resp)
		return nil
	default:
		writeAnalysisText(w, resp)
		return nil
	}
}

func writeAnalysisText(w io.Writer, resp *models.AnalysisResponse) {
	fmt.Fprintf(w, "\nRanked %d resumes in %dms", resp.Total, resp.QueryTime)
	if resp.Model != "" {
		fmt.Fprintf(w, " (model: %s)", resp.Model)
	}
	fmt.Fprintln(w)
	if resp.Shown < resp.Total {
		fmt.Fprintf(w, "Showing top %d\n", resp.Shown)
	}
	fmt.Fprintln(w)

	for _, r := range resp.Results {
		fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
		fmt.Fprintf(w, "#%d %s | %d%% match [%s] | Score: %.4f\n", r.Rank, r.Name, r.Percent, r.Band, r.Score)
		fmt.Fprintf(w, "File: %s\n", r.ID)
		if r.Preview != "" {
			fmt.Fprintf(w, "\n%s\n", r.Preview)
		}
		if r.Explanation != "" {
			if explain.IsErrorText(r.Explanation) {
				fmt.Fprintf(w, "\nExplanation unavailable: %s\n", r.Explanation)
			} else {
				fmt.Fprintf(w, "\nWhy this candidate:\n%s\n", indent(r.Explanation, "  "))
			}
		}
		fmt.Fprintln(w)
	}
	writeSkipped(w, resp.Skipped)
}

func writeAnalysisCompact(w io.Writer, resp *models.AnalysisResponse) {
	for _, r := range resp.Results {
		fmt.Fprintf(w, "%3d. %3d%%  %-6s  %s\n", r.Rank, r.Percent, r.Band, r.Name)
	}
	writeSkipped(w, resp.Skipped)
}

func writeSkipped(w io.Writer, skipped []models.ExtractionSkip) {
	if len(skipped) == 0 {
		return
	}
	fmt.Fprintf(w, "Skipped %d file(s):\n", len(skipped))
	for _, s := range skipped {
		fmt.Fprintf(w, "  %s: %s\n", s.Path, utils.Truncate(s.Reason, 120))
	}
}

// WriteStatus writes server status to w as text or JSON.
func WriteStatus(w io.Writer, status *models.StatusResponse, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, status)
	}
	fmt.Fprintf(w, "status:             %s\n", status.Status)
	fmt.Fprintf(w, "model:              %s   # loaded: %t\n", status.Model, status.ModelLoaded)
	if status.Dimensions > 0 {
		fmt.Fprintf(w, "dimensions:         %d\n", status.Dimensions)
	}
	fmt.Fprintf(w, "sessions:           %d   # live analyses\n", status.Sessions)
	fmt.Fprintf(w, "uptime_seconds:     %d\n", status.UptimeSeconds)
	fmt.Fprintf(w, "staged_files:       %d\n", status.StagedFiles)
	if status.DiskUsageBytes != nil {
		fmt.Fprintf(w, "disk_usage_bytes:   %d   # staged uploads\n", *status.DiskUsageBytes)
	}
	if c := status.Config; c != nil {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "# configuration")
		fmt.Fprintf(w, "default_top_n:      %d\n", c.DefaultTopN)
		fmt.Fprintf(w, "explain_top_n:      %d\n", c.ExplainTopN)
		if c.ExplainModel != "" {
			fmt.Fprintf(w, "explain_model:      %s\n", c.ExplainModel)
		}
		if len(c.SupportedFormats) > 0 {
			fmt.Fprintf(w, "supported_formats:  %s\n", strings.Join(c.SupportedFormats, ", "))
		}
		fmt.Fprintf(w, "max_file_size_mb:   %d\n", c.MaxFileSizeMB)
		if c.UploadDir != "" {
			fmt.Fprintf(w, "upload_dir:         %s\n", c.UploadDir)
		}
	}
	return nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func indent(s, prefix string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}
