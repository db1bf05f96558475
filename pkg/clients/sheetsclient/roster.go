package sheetsclient

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/sheets/v4"

	"github.com/jakechorley/camp-signup/pkg/core/model"
)

// WriteRoster publishes one tab per roster day.
// Missing tabs are created, existing tabs are cleared and overwritten.
func (c *Client) WriteRoster(ctx context.Context, spreadsheetID string, roster *model.Roster) error {
	titles, err := c.sheetTitles(ctx, spreadsheetID)
	if err != nil {
		return err
	}

	for _, day := range roster.Days {
		title := day.Title(roster.Pool)

		if titles[title] {
			_, err := c.service.Spreadsheets.Values.Clear(spreadsheetID, quoteTab(title), &sheets.ClearValuesRequest{}).
				Context(ctx).
				Do()
			if err != nil {
				return fmt.Errorf("failed to clear tab %q: %w", title, err)
			}
		} else {
			if _, err := c.CreateSheet(ctx, spreadsheetID, title); err != nil {
				return fmt.Errorf("failed to create tab %q: %w", title, err)
			}
			titles[title] = true
		}

		valueRange := &sheets.ValueRange{
			Values: rosterRows(day),
		}
		_, err := c.service.Spreadsheets.Values.Update(spreadsheetID, quoteTab(title)+"!A1", valueRange).
			ValueInputOption("RAW").
			Context(ctx).
			Do()
		if err != nil {
			return fmt.Errorf("failed to write tab %q: %w", title, err)
		}
	}

	return nil
}

// rosterRows lays out a roster day as a header row followed by one row per slot.
// Participant names fill the columns after the counts.
func rosterRows(day model.RosterDay) [][]interface{} {
	maxParticipants := 0
	for _, entry := range day.Entries {
		if len(entry.Participants) > maxParticipants {
			maxParticipants = len(entry.Participants)
		}
	}

	header := []interface{}{"Activity", "Capacity", "Taken"}
	for i := 0; i < maxParticipants; i++ {
		header = append(header, fmt.Sprintf("Participant %d", i+1))
	}

	rows := make([][]interface{}, 0, len(day.Entries)+1)
	rows = append(rows, header)
	for _, entry := range day.Entries {
		row := []interface{}{entry.Slot.Name, entry.Slot.Capacity, entry.Taken}
		for i := range entry.Participants {
			row = append(row, entry.Participants[i].FullName())
		}
		rows = append(rows, row)
	}
	return rows
}

// quoteTab quotes a tab title for A1 notation
func quoteTab(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}
