package formatter

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/desertthunder/playlift/internal/models"
)

// Align is a column alignment for [RenderTable].
type Align int

const (
	AlignLeft Align = iota
	AlignRight
)

// RenderTable draws rows under headers as a rounded table. Short rows are padded.
func RenderTable(headers []string, rows [][]string, aligns []Align) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := range columns {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := range columns {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for i := range columns {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == AlignRight {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{Number: i + 1, Align: align, AlignHeader: text.AlignLeft})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

// ResultTable lists every track of a finished transfer, transferred first.
// It returns "" when the view carries no result.
func ResultTable(view models.StatusView) string {
	if view.Result == nil {
		return ""
	}

	rows := make([][]string, 0, view.Result.Len())
	n := 0
	for _, t := range view.Result.Successful.Items {
		n++
		rows = append(rows, []string{fmt.Sprint(n), styles.ok.Render("✓"), t.Artist, t.Track, ""})
	}
	for _, t := range view.Result.Failed.Items {
		n++
		rows = append(rows, []string{fmt.Sprint(n), styles.err.Render("✗"), t.Artist, t.Track, t.Reason})
	}
	return RenderTable([]string{"#", "", "Artist", "Track", "Reason"}, rows, []Align{AlignRight})
}

// CredentialTable lists the stored credentials of a session.
func CredentialTable(creds []*models.Credential, now time.Time) string {
	rows := make([][]string, 0, len(creds))
	for _, c := range creds {
		expiry := "never"
		switch {
		case c.ExpiresAt.IsZero():
		case c.Expired(now):
			expiry = styles.warn.Render("expired")
		default:
			expiry = c.ExpiresAt.Local().Format(time.DateTime)
		}
		refresh := "no"
		if c.CanRefresh() {
			refresh = "yes"
		}
		rows = append(rows, []string{c.Platform.Title(), expiry, refresh, c.UpdatedAt.Local().Format(time.DateTime)})
	}
	return RenderTable([]string{"Platform", "Expires", "Refreshable", "Updated"}, rows, nil)
}

// PlaylistTable lists playlists with the id to pass as a transfer source or destination.
func PlaylistTable(playlists []models.Playlist) string {
	rows := make([][]string, 0, len(playlists))
	for i, p := range playlists {
		visibility := "private"
		if p.Public {
			visibility = "public"
		}
		rows = append(rows, []string{fmt.Sprint(i + 1), p.Name, fmt.Sprint(p.TracksCount), p.Owner, visibility, p.ID})
	}
	return RenderTable(
		[]string{"#", "Name", "Tracks", "Owner", "Visibility", "ID"},
		rows,
		[]Align{AlignRight, AlignLeft, AlignRight},
	)
}

// Summary is a one-screen, colored description of a job view.
func Summary(view models.StatusView) string {
	var lines []string
	lines = append(lines, styles.title.Render("Transfer "+view.JobID))
	lines = append(lines, "State:    "+StateLabel(view.State))

	if view.Current != nil && view.Total != nil && view.Progress != nil {
		lines = append(lines, fmt.Sprintf("Progress: %s %d/%d", ProgressBar(*view.Progress, 24), *view.Current, *view.Total))
	}
	if view.Status != "" {
		lines = append(lines, "Status:   "+view.Status)
	}
	if view.Error != "" {
		lines = append(lines, "Error:    "+styles.err.Render(string(view.ErrorKind))+" "+view.Error)
	}
	if view.Result != nil {
		lines = append(lines, fmt.Sprintf("Result:   %s transferred, %s failed",
			styles.ok.Render(fmt.Sprint(view.Result.Successful.Count)),
			styles.err.Render(fmt.Sprint(view.Result.Failed.Count))))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
