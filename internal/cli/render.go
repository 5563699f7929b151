package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"scriptsync/internal/config"
	"scriptsync/internal/diff"
	"scriptsync/internal/model"
	"scriptsync/internal/ui"
	"scriptsync/internal/ui/tui"
)

var titleCaser = cases.Title(language.English)

// displayPriority turns "AFTER_REBOOT" into "After Reboot".
func displayPriority(p model.Priority) string {
	return titleCaser.String(strings.ToLower(strings.ReplaceAll(string(p), "_", " ")))
}

func newTable(headers ...string) *table.Table {
	styled := make([]string, len(headers))
	for i, h := range headers {
		styled[i] = ui.Header(h)
	}
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(tui.Styles.Border).
		Headers(styled...)
}

// renderScriptsTable renders the remote script listing.
func renderScriptsTable(scripts []model.RemoteScript) string {
	t := newTable("ID", "Name", "Category", "Priority")
	for _, s := range scripts {
		t.Row(
			strconv.Itoa(s.ID),
			s.Name,
			s.CategoryName,
			displayPriority(s.Priority),
		)
	}
	return t.String()
}

// renderConfigTable renders the active configuration.
func renderConfigTable(cfg *config.Config) string {
	t := newTable("Setting", "Value")
	password := "(not set)"
	if cfg.Server.Password != "" {
		password = "********"
	}
	rows := [][]string{
		{"server.url", cfg.Server.URL},
		{"server.username", cfg.Server.Username},
		{"server.password", password},
		{"server.timeout", cfg.Server.Timeout.String()},
		{"scripts.path", cfg.Scripts.Path},
		{"scripts.metadata_in_subfolder", strconv.FormatBool(cfg.Scripts.MetadataInSubfolder)},
		{"tls.verify", strconv.FormatBool(cfg.TLS.Verify)},
		{"tls.warn", strconv.FormatBool(cfg.TLS.Warn)},
		{"output.color", cfg.Output.Color},
		{"output.verbose", strconv.FormatBool(cfg.Output.Verbose)},
	}
	for _, row := range rows {
		t.Row(row...)
	}
	return t.String()
}

// recordLabel formats a diff record for the verify report.
func recordLabel(r diff.Record) string {
	name, _ := r["name"].(string)
	if id, ok := r["id"].(int); ok {
		return fmt.Sprintf("%s (id %d)", name, id)
	}
	return fmt.Sprintf("%s (unregistered)", name)
}

// changedFields lists the field names that differ within a matched pair.
func changedFields(p diff.Pair) []string {
	var fields []string
	for key, left := range p.Left {
		if right, ok := p.Right[key]; !ok || left != right {
			fields = append(fields, key)
		}
	}
	for key := range p.Right {
		if _, ok := p.Left[key]; !ok {
			fields = append(fields, key)
		}
	}
	return fields
}

// renderVerifyReport renders the three-way partition from verify.
func renderVerifyReport(res diff.Result) string {
	var sb strings.Builder

	if res.InSync() {
		sb.WriteString(ui.StatusSuccess("Local store and server are in sync."))
		sb.WriteString("\n")
		return sb.String()
	}

	if len(res.MatchedDiffs) > 0 {
		sb.WriteString(ui.StatusWarning(fmt.Sprintf("%d script(s) differ:", len(res.MatchedDiffs))))
		sb.WriteString("\n")
		for _, pair := range res.MatchedDiffs {
			sb.WriteString(fmt.Sprintf("  %s: %s\n", recordLabel(pair.Left), strings.Join(changedFields(pair), ", ")))
		}
	}

	if len(res.InList1Only) > 0 {
		sb.WriteString(ui.StatusWarning(fmt.Sprintf("%d script(s) only local:", len(res.InList1Only))))
		sb.WriteString("\n")
		for _, r := range res.InList1Only {
			sb.WriteString(fmt.Sprintf("  %s\n", recordLabel(r)))
		}
	}

	if len(res.InList2Only) > 0 {
		sb.WriteString(ui.StatusWarning(fmt.Sprintf("%d script(s) only remote:", len(res.InList2Only))))
		sb.WriteString("\n")
		for _, r := range res.InList2Only {
			sb.WriteString(fmt.Sprintf("  %s\n", recordLabel(r)))
		}
	}

	return sb.String()
}
