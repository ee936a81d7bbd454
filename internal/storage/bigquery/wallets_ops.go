package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	"github.com/ohalushko/moneta/internal/domain"
)

// ListWalletsWithClient returns the user's non-deleted wallets, primary
// first.
func ListWalletsWithClient(ctx context.Context, client *bigquery.Client, dataset, userID string) ([]WalletRow, error) {
	q := client.Query(fmt.Sprintf(`
		SELECT wallet_id, user_id, wallet_name, currency, balance, is_primary, is_deleted
		FROM %s.%s
		WHERE user_id = @user_id AND is_deleted = FALSE
		ORDER BY is_primary DESC, wallet_name
	`, dataset, walletsTable))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListWallets: query read: %w", err)
	}

	var rows []WalletRow
	for {
		var r WalletRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListWallets: iter next: %w", err)
		}
		rows = append(rows, r)
	}
	return rows, nil
}

// GetWalletWithClient returns one non-deleted wallet or domain.ErrNotFound.
func GetWalletWithClient(ctx context.Context, client *bigquery.Client, dataset, userID, walletID string) (*WalletRow, error) {
	q := client.Query(fmt.Sprintf(`
		SELECT wallet_id, user_id, wallet_name, currency, balance, is_primary, is_deleted
		FROM %s.%s
		WHERE user_id = @user_id AND wallet_id = @wallet_id AND is_deleted = FALSE
	`, dataset, walletsTable))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
		{Name: "wallet_id", Value: walletID},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("GetWallet: query read: %w", err)
	}

	var r WalletRow
	if err := it.Next(&r); err != nil {
		if err == iterator.Done {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("GetWallet: iter next: %w", err)
	}
	return &r, nil
}

// InsertWalletWithClient inserts a wallet row.
func InsertWalletWithClient(ctx context.Context, client *bigquery.Client, dataset string, row *WalletRow) error {
	inserter := client.Dataset(dataset).Table(walletsTable).Inserter()
	if err := inserter.Put(ctx, row); err != nil {
		return fmt.Errorf("InsertWallet: inserting row: %w", err)
	}
	return nil
}

// SoftDeleteWalletWithClient flags a wallet deleted. Deleting the primary
// wallet is rejected with domain.ErrPrimaryWallet; the user must promote
// another wallet first.
func SoftDeleteWalletWithClient(ctx context.Context, client *bigquery.Client, dataset, userID, walletID string) error {
	row, err := GetWalletWithClient(ctx, client, dataset, userID, walletID)
	if err != nil {
		return err
	}
	if row.IsPrimary {
		return domain.ErrPrimaryWallet
	}

	q := client.Query(fmt.Sprintf(`
		UPDATE %s.%s
		SET is_deleted = TRUE
		WHERE user_id = @user_id AND wallet_id = @wallet_id
	`, dataset, walletsTable))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
		{Name: "wallet_id", Value: walletID},
	}
	return runDML(ctx, q, "SoftDeleteWallet")
}

// SetPrimaryWalletWithClient makes one wallet primary and demotes the rest,
// preserving the at-most-one-primary invariant.
func SetPrimaryWalletWithClient(ctx context.Context, client *bigquery.Client, dataset, userID, walletID string) error {
	if _, err := GetWalletWithClient(ctx, client, dataset, userID, walletID); err != nil {
		return err
	}

	q := client.Query(fmt.Sprintf(`
		UPDATE %s.%s
		SET is_primary = (wallet_id = @wallet_id)
		WHERE user_id = @user_id AND is_deleted = FALSE
	`, dataset, walletsTable))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "wallet_id", Value: walletID},
		{Name: "user_id", Value: userID},
	}
	return runDML(ctx, q, "SetPrimaryWallet")
}
