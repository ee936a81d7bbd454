package bigquery

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	"github.com/ohalushko/moneta/internal/domain"
)

// InsertTransactionsWithClient inserts a batch of rows into
// finance.transactions using the provided client.
func InsertTransactionsWithClient(ctx context.Context, client *bigquery.Client, dataset string, rows []*TransactionRow) error {
	if len(rows) == 0 {
		return nil
	}

	inserter := client.Dataset(dataset).Table(transactionsTable).Inserter()
	if err := inserter.Put(ctx, rows); err != nil {
		return fmt.Errorf("InsertTransactions: inserting rows: %w", err)
	}
	return nil
}

// QueryTransactionsWithClient queries transactions matching the filter.
// The filter's UserID is mandatory; soft-deleted rows are always excluded
// and hidden rows are excluded unless IncludeHidden is set.
func QueryTransactionsWithClient(ctx context.Context, client *bigquery.Client, dataset string, filter domain.TransactionFilter) ([]*TransactionRow, error) {
	if filter.UserID == "" {
		return nil, domain.ErrUnauthenticated
	}

	var b strings.Builder
	fmt.Fprintf(&b, `
		SELECT
			transaction_id, user_id, wallet_id, type, amount, category_id,
			label, description, transaction_date, is_deleted, is_hidden,
			external_id, source, created_ts
		FROM %s.%s
		WHERE user_id = @user_id
		  AND is_deleted = FALSE`, dataset, transactionsTable)

	params := []bigquery.QueryParameter{
		{Name: "user_id", Value: filter.UserID},
	}

	if !filter.IncludeHidden {
		b.WriteString("\n\t\t  AND is_hidden = FALSE")
	}
	if filter.WalletID != "" {
		b.WriteString("\n\t\t  AND wallet_id = @wallet_id")
		params = append(params, bigquery.QueryParameter{Name: "wallet_id", Value: filter.WalletID})
	}
	if filter.CategoryID != "" {
		b.WriteString("\n\t\t  AND category_id = @category_id")
		params = append(params, bigquery.QueryParameter{Name: "category_id", Value: filter.CategoryID})
	}
	if filter.From != nil {
		b.WriteString("\n\t\t  AND transaction_date >= @from_date")
		params = append(params, bigquery.QueryParameter{Name: "from_date", Value: *filter.From})
	}
	if filter.To != nil {
		b.WriteString("\n\t\t  AND transaction_date <= @to_date")
		params = append(params, bigquery.QueryParameter{Name: "to_date", Value: *filter.To})
	}
	if filter.MinAmount != nil {
		b.WriteString("\n\t\t  AND amount >= @min_amount")
		params = append(params, bigquery.QueryParameter{Name: "min_amount", Value: *filter.MinAmount})
	}
	if filter.MaxAmount != nil {
		b.WriteString("\n\t\t  AND amount <= @max_amount")
		params = append(params, bigquery.QueryParameter{Name: "max_amount", Value: *filter.MaxAmount})
	}
	if filter.Search != "" {
		b.WriteString("\n\t\t  AND (LOWER(label) LIKE @search OR LOWER(description) LIKE @search)")
		params = append(params, bigquery.QueryParameter{
			Name:  "search",
			Value: "%" + strings.ToLower(filter.Search) + "%",
		})
	}

	b.WriteString("\n\t\tORDER BY transaction_date DESC, created_ts DESC")
	if filter.Limit > 0 {
		fmt.Fprintf(&b, "\n\t\tLIMIT %d", filter.Limit)
		if filter.Offset > 0 {
			fmt.Fprintf(&b, " OFFSET %d", filter.Offset)
		}
	}

	q := client.Query(b.String())
	q.Parameters = params

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("QueryTransactions: query read: %w", err)
	}

	var rows []*TransactionRow
	for {
		var r TransactionRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("QueryTransactions: iter next: %w", err)
		}
		rows = append(rows, &r)
	}
	return rows, nil
}

// SoftDeleteTransactionWithClient flags a transaction deleted. The row is
// kept so bank sync can refuse to resurrect it.
func SoftDeleteTransactionWithClient(ctx context.Context, client *bigquery.Client, dataset, userID, transactionID string) error {
	q := client.Query(fmt.Sprintf(`
		UPDATE %s.%s
		SET is_deleted = TRUE
		WHERE user_id = @user_id AND transaction_id = @transaction_id
	`, dataset, transactionsTable))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
		{Name: "transaction_id", Value: transactionID},
	}
	return runDML(ctx, q, "SoftDeleteTransaction")
}

// UpdateTransactionCategoryWithClient reassigns a transaction's category.
func UpdateTransactionCategoryWithClient(ctx context.Context, client *bigquery.Client, dataset, userID, transactionID, categoryID string) error {
	q := client.Query(fmt.Sprintf(`
		UPDATE %s.%s
		SET category_id = @category_id
		WHERE user_id = @user_id AND transaction_id = @transaction_id
	`, dataset, transactionsTable))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "category_id", Value: categoryID},
		{Name: "user_id", Value: userID},
		{Name: "transaction_id", Value: transactionID},
	}
	return runDML(ctx, q, "UpdateTransactionCategory")
}

// ExternalIDsWithClient returns all bank-side ids already present for a
// wallet, mapped to their is_deleted flag. Sync uses this both for dedupe
// and for the don't-resurrect-deleted rule.
func ExternalIDsWithClient(ctx context.Context, client *bigquery.Client, dataset, userID, walletID string) (map[string]bool, error) {
	q := client.Query(fmt.Sprintf(`
		SELECT external_id, is_deleted
		FROM %s.%s
		WHERE user_id = @user_id
		  AND wallet_id = @wallet_id
		  AND external_id IS NOT NULL
	`, dataset, transactionsTable))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
		{Name: "wallet_id", Value: walletID},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ExternalIDs: query read: %w", err)
	}

	ids := make(map[string]bool)
	for {
		var r struct {
			ExternalID bigquery.NullString `bigquery:"external_id"`
			IsDeleted  bool                `bigquery:"is_deleted"`
		}
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ExternalIDs: iter next: %w", err)
		}
		if r.ExternalID.Valid {
			ids[r.ExternalID.StringVal] = r.IsDeleted
		}
	}
	return ids, nil
}

// LatestImportedDateWithClient returns the most recent imported transaction
// date for a wallet. The bool result is false when nothing was imported yet.
func LatestImportedDateWithClient(ctx context.Context, client *bigquery.Client, dataset, userID, walletID string) (time.Time, bool, error) {
	q := client.Query(fmt.Sprintf(`
		SELECT MAX(transaction_date) AS latest
		FROM %s.%s
		WHERE user_id = @user_id
		  AND wallet_id = @wallet_id
		  AND external_id IS NOT NULL
	`, dataset, transactionsTable))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
		{Name: "wallet_id", Value: walletID},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("LatestImportedDate: query read: %w", err)
	}

	var r struct {
		Latest bigquery.NullTimestamp `bigquery:"latest"`
	}
	if err := it.Next(&r); err != nil && err != iterator.Done {
		return time.Time{}, false, fmt.Errorf("LatestImportedDate: iter next: %w", err)
	}
	if !r.Latest.Valid {
		return time.Time{}, false, nil
	}
	return r.Latest.Timestamp, true, nil
}

// runDML executes a mutating query and waits for completion.
func runDML(ctx context.Context, q *bigquery.Query, op string) error {
	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("%s: run query: %w", op, err)
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("%s: wait for job: %w", op, err)
	}
	if err := status.Err(); err != nil {
		return fmt.Errorf("%s: job error: %w", op, err)
	}
	return nil
}
