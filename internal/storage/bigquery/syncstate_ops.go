package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"
)

// GetLastSyncWithClient returns the last successful statement fetch time
// for a wallet. The bool result is false when the wallet has never synced.
func GetLastSyncWithClient(ctx context.Context, client *bigquery.Client, dataset, walletID string) (time.Time, bool, error) {
	q := client.Query(fmt.Sprintf(`
		SELECT wallet_id, last_sync_ts
		FROM %s.%s
		WHERE wallet_id = @wallet_id
	`, dataset, syncStateTable))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "wallet_id", Value: walletID},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("GetLastSync: query read: %w", err)
	}

	var r SyncStateRow
	if err := it.Next(&r); err != nil {
		if err == iterator.Done {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, fmt.Errorf("GetLastSync: iter next: %w", err)
	}
	return r.LastSyncTS, true, nil
}

// SetLastSyncWithClient records a successful statement fetch. This is the
// durable cooldown marker; it survives process restarts.
func SetLastSyncWithClient(ctx context.Context, client *bigquery.Client, dataset, walletID string, ts time.Time) error {
	q := client.Query(fmt.Sprintf(`
		MERGE %s.%s t
		USING (SELECT @wallet_id AS wallet_id) s
		ON t.wallet_id = s.wallet_id
		WHEN MATCHED THEN
			UPDATE SET last_sync_ts = @last_sync_ts
		WHEN NOT MATCHED THEN
			INSERT (wallet_id, last_sync_ts) VALUES (@wallet_id, @last_sync_ts)
	`, dataset, syncStateTable))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "wallet_id", Value: walletID},
		{Name: "last_sync_ts", Value: ts},
	}
	return runDML(ctx, q, "SetLastSync")
}
