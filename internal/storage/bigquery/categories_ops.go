package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	"github.com/ohalushko/moneta/internal/domain"
)

// ListActiveCategoriesWithClient returns all active categories ordered by
// name using the provided client.
func ListActiveCategoriesWithClient(ctx context.Context, client *bigquery.Client, dataset string) ([]CategoryRow, error) {
	q := client.Query(fmt.Sprintf(`
		SELECT category_id, category_name, icon, color, is_active
		FROM %s.%s
		WHERE is_active = TRUE
		ORDER BY category_name
	`, dataset, categoriesTable))

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListActiveCategories: query read: %w", err)
	}

	var rows []CategoryRow
	for {
		var r CategoryRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListActiveCategories: iter next: %w", err)
		}
		rows = append(rows, r)
	}
	return rows, nil
}

// ListUserOverridesWithClient returns the user's sparse category overlay.
func ListUserOverridesWithClient(ctx context.Context, client *bigquery.Client, dataset, userID string) ([]UserCategoryRow, error) {
	q := client.Query(fmt.Sprintf(`
		SELECT user_id, category_id, custom_name, is_active
		FROM %s.%s
		WHERE user_id = @user_id
	`, dataset, overridesTable))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListUserOverrides: query read: %w", err)
	}

	var rows []UserCategoryRow
	for {
		var r UserCategoryRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListUserOverrides: iter next: %w", err)
		}
		rows = append(rows, r)
	}
	return rows, nil
}

// UpsertUserOverrideWithClient writes one overlay record, replacing any
// previous override for the same (user, category).
func UpsertUserOverrideWithClient(ctx context.Context, client *bigquery.Client, dataset string, ov domain.CategoryOverride) error {
	customName := bigquery.NullString{}
	if ov.CustomName != nil {
		customName = bigquery.NullString{StringVal: *ov.CustomName, Valid: true}
	}
	isActive := bigquery.NullBool{}
	if ov.IsActive != nil {
		isActive = bigquery.NullBool{Bool: *ov.IsActive, Valid: true}
	}

	q := client.Query(fmt.Sprintf(`
		MERGE %s.%s t
		USING (SELECT @user_id AS user_id, @category_id AS category_id) s
		ON t.user_id = s.user_id AND t.category_id = s.category_id
		WHEN MATCHED THEN
			UPDATE SET custom_name = @custom_name, is_active = @is_active
		WHEN NOT MATCHED THEN
			INSERT (user_id, category_id, custom_name, is_active)
			VALUES (@user_id, @category_id, @custom_name, @is_active)
	`, dataset, overridesTable))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: ov.UserID},
		{Name: "category_id", Value: ov.CategoryID},
		{Name: "custom_name", Value: customName},
		{Name: "is_active", Value: isActive},
	}
	return runDML(ctx, q, "UpsertUserOverride")
}
