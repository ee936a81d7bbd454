package notion

import (
	"fmt"
	"time"

	"github.com/jomei/notionapi"

	"github.com/ohalushko/moneta/internal/analytics"
	"github.com/ohalushko/moneta/internal/domain"
)

// SummaryRow is one exported line: a category's monthly total for a wallet.
type SummaryRow struct {
	WalletID string
	Year     int
	Month    time.Month
	Kind     analytics.Kind
	Category domain.Category
	Amount   float64
}

// Key identifies a summary row inside the Notion database, stored in the
// page title so re-exports can match pages to rows.
func (r SummaryRow) Key() string {
	return fmt.Sprintf("%s/%04d-%02d/%s/%s", r.WalletID, r.Year, int(r.Month), r.Kind, r.Category.ID)
}

// SummaryToNotionProperties converts a summary row to Notion page properties.
func SummaryToNotionProperties(row SummaryRow) notionapi.Properties {
	props := notionapi.Properties{
		"Key": notionapi.TitleProperty{
			Title: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{
						Content: row.Key(),
					},
				},
			},
		},
		"Month": notionapi.RichTextProperty{
			RichText: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{
						Content: fmt.Sprintf("%04d-%02d", row.Year, int(row.Month)),
					},
				},
			},
		},
		"Amount": notionapi.NumberProperty{
			Number: row.Amount,
		},
		"Kind": notionapi.SelectProperty{
			Select: notionapi.Option{
				Name: string(row.Kind),
			},
		},
	}

	if row.Category.Name != "" {
		props["Category"] = notionapi.SelectProperty{
			Select: notionapi.Option{
				Name: row.Category.Name,
			},
		}
	}
	if row.WalletID != "" {
		props["Wallet"] = notionapi.RichTextProperty{
			RichText: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{
						Content: row.WalletID,
					},
				},
			},
		}
	}

	return props
}

// extractKey pulls the row key back out of a page's title property.
func extractKey(page notionapi.Page) string {
	prop, ok := page.Properties["Key"]
	if !ok {
		return ""
	}
	title, ok := prop.(*notionapi.TitleProperty)
	if !ok || len(title.Title) == 0 {
		return ""
	}
	return title.Title[0].PlainText
}
