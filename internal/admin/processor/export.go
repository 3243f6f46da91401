package processor

import (
	ledger "adledger-server/internal/ledger/processor"
	"adledger-server/internal/store"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"
)

var exportHeader = []string{
	"id", "display_name", "external_id", "total_earnings", "withdraw_balance",
	"ads_watched", "banned", "flagged", "created_at",
}

// ExportUsersCSV writes every user as one CSV row, most recently active first
func (p *AdminProcessor) ExportUsersCSV(ctx context.Context, callerID string, w io.Writer) (int, error) {
	ctx, err := p.verifyAdmin(ctx, callerID)
	if err != nil {
		return 0, err
	}

	users, err := p.store.ListUsers(ctx, store.ListUsersParams{})
	if err != nil {
		p.logger.Error(ctx, "failed to list users for export", err)
		return 0, fmt.Errorf("failed to list users: %w", err)
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(exportHeader); err != nil {
		return 0, fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, u := range users {
		record := []string{
			u.ID.String(),
			u.DisplayName,
			u.ExternalID,
			u.TotalEarnings.StringFixed(ledger.AmountPlaces),
			u.WithdrawBalance.StringFixed(ledger.AmountPlaces),
			strconv.FormatInt(u.AdsWatched, 10),
			strconv.FormatBool(u.Banned),
			strconv.FormatBool(u.Flagged),
			u.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := writer.Write(record); err != nil {
			return 0, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return 0, fmt.Errorf("failed to flush CSV: %w", err)
	}
	return len(users), nil
}
