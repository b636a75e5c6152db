package report

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
)

var (
	aheadColor  = color.New(color.FgYellow).SprintfFunc()
	behindColor = color.New(color.FgRed).SprintfFunc()
	infoColor   = color.New(color.FgBlue).SprintfFunc()
)

// RenderUnsynced writes the unsynced repositories of doc, in the given format.
func RenderUnsynced(w io.Writer, format string, doc Document) error {
	if format != FormatTable {
		return Encode(w, format, doc)
	}

	table := tablewriter.NewTable(w)
	table.Header([]string{"Repo", "Skew"})

	for _, entry := range doc.Unsynced {
		skew := aheadColor(entry.Skew)
		// the slave has a newer change than its master
		if entry.SkewSeconds < 0 {
			skew = behindColor(entry.Skew)
		}

		if err := table.Append([]string{entry.Repo, skew}); err != nil {
			return fmt.Errorf("an error occurred while appending to the table: %w", err)
		}
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("an error occurred while rendering the table: %w", err)
	}

	return nil
}

// RenderMissing writes the repositories missing from the slave, in the given format.
func RenderMissing(w io.Writer, format string, doc Document) error {
	if format != FormatTable {
		return Encode(w, format, doc)
	}

	table := tablewriter.NewTable(w)
	table.Header([]string{"Repo", "Last change on master"})

	for _, entry := range doc.Missing {
		lastChange := infoColor(entry.LastChange.Format(time.RFC1123Z))
		if err := table.Append([]string{entry.Repo, lastChange}); err != nil {
			return fmt.Errorf("an error occurred while appending to the table: %w", err)
		}
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("an error occurred while rendering the table: %w", err)
	}

	return nil
}
