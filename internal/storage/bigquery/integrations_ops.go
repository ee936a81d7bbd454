package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	"github.com/ohalushko/moneta/internal/domain"
)

// ListActiveIntegrationsWithClient returns every active bank integration,
// across users. The background scheduler iterates these.
func ListActiveIntegrationsWithClient(ctx context.Context, client *bigquery.Client, dataset string) ([]BankIntegrationRow, error) {
	q := client.Query(fmt.Sprintf(`
		SELECT integration_id, user_id, provider, api_token, account, wallet_id, is_active
		FROM %s.%s
		WHERE is_active = TRUE
	`, dataset, integrationsTable))

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListActiveIntegrations: query read: %w", err)
	}

	var rows []BankIntegrationRow
	for {
		var r BankIntegrationRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListActiveIntegrations: iter next: %w", err)
		}
		rows = append(rows, r)
	}
	return rows, nil
}

// GetIntegrationForWalletWithClient returns the active integration driving
// a wallet, or domain.ErrNotFound.
func GetIntegrationForWalletWithClient(ctx context.Context, client *bigquery.Client, dataset, userID, walletID string) (*BankIntegrationRow, error) {
	q := client.Query(fmt.Sprintf(`
		SELECT integration_id, user_id, provider, api_token, account, wallet_id, is_active
		FROM %s.%s
		WHERE user_id = @user_id AND wallet_id = @wallet_id AND is_active = TRUE
	`, dataset, integrationsTable))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
		{Name: "wallet_id", Value: walletID},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("GetIntegrationForWallet: query read: %w", err)
	}

	var r BankIntegrationRow
	if err := it.Next(&r); err != nil {
		if err == iterator.Done {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("GetIntegrationForWallet: iter next: %w", err)
	}
	return &r, nil
}
