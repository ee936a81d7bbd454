package importer

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/ohalushko/moneta/internal/domain"
)

// buildWorkbook produces an export file with the two header rows the bank
// prepends, followed by the given data rows.
func buildWorkbook(t *testing.T, rows [][]any) io.Reader {
	t.Helper()

	f := excelize.NewFile()
	sheet := f.GetSheetList()[0]

	all := append([][]any{
		{"Виписка за картками"},
		{"Дата i час операції", "Категорія", "Картка", "Опис операції", "Сума в валюті картки", "Валюта"},
	}, rows...)

	for i, row := range all {
		for j, cell := range row {
			axis, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				t.Fatalf("cell name: %v", err)
			}
			if err := f.SetCellValue(sheet, axis, cell); err != nil {
				t.Fatalf("set cell: %v", err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return bytes.NewReader(buf.Bytes())
}

func TestParse(t *testing.T) {
	r := buildWorkbook(t, [][]any{
		{"15.02.2025 14:30:00", "Продукти", "*1234", "Silpo", "-1 250,50", "UAH"},
		{"16.02.2025 09:00:00", "Зарплата", "*1234", "Acme", "45000.00", "UAH"},
		{"", "Підсумок", "", "", "-1 250,50", "UAH"},
		{"17.02.2025 10:00:00", "Кафе", "*1234", "Aroma", "0", "UAH"},
		{"bad date", "Кафе", "*1234", "Aroma", "-100", "UAH"},
	})

	rows, err := Parse(r)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2 (summary, zero-amount and bad-date rows dropped)", len(rows))
	}

	first := rows[0]
	wantDate := time.Date(2025, 2, 15, 14, 30, 0, 0, time.UTC)
	if !first.Date.Equal(wantDate) {
		t.Errorf("date = %v, want %v", first.Date, wantDate)
	}
	if first.Category != "Продукти" || first.Description != "Silpo" {
		t.Errorf("row fields: %+v", first)
	}
	if first.Amount != -1250.50 {
		t.Errorf("amount = %v, want -1250.50", first.Amount)
	}
	if rows[1].Amount != 45000.00 {
		t.Errorf("second amount = %v, want 45000", rows[1].Amount)
	}
}

func TestParseEmptyWorkbook(t *testing.T) {
	rows, err := Parse(buildWorkbook(t, nil))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("got %d rows from header-only workbook", len(rows))
	}
}

func TestTransform(t *testing.T) {
	date := time.Date(2025, 2, 15, 14, 30, 0, 0, time.UTC)
	categories := []domain.Category{
		{ID: domain.CategoryGroceries, Name: "Groceries", IsActive: true},
		{ID: domain.CategoryCafe, Name: "Cafe", IsActive: true},
	}

	tests := []struct {
		name         string
		row          ParsedRow
		wantType     domain.TransactionType
		wantCategory string
		wantAmount   float64
	}{
		{
			name:         "negative amount becomes expense",
			row:          ParsedRow{Date: date, Category: "Продукти", Description: "Silpo", Amount: -150.50},
			wantType:     domain.TypeExpense,
			wantCategory: domain.CategoryGroceries,
			wantAmount:   150.50,
		},
		{
			name:         "positive amount becomes income",
			row:          ParsedRow{Date: date, Category: "Зарплата", Description: "Acme", Amount: 45000},
			wantType:     domain.TypeIncome,
			wantCategory: domain.CategoryOther,
			wantAmount:   45000,
		},
		{
			name:         "transfer keyword wins over sign",
			row:          ParsedRow{Date: date, Category: "Переказ на картку", Description: "", Amount: -500},
			wantType:     domain.TypeTransfer,
			wantCategory: domain.CategoryTransfers,
			wantAmount:   500,
		},
		{
			name:         "transfer keyword in description",
			row:          ParsedRow{Date: date, Category: "Інше", Description: "Transfer to card", Amount: 500},
			wantType:     domain.TypeTransfer,
			wantCategory: domain.CategoryTransfers,
			wantAmount:   500,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txs := Transform([]ParsedRow{tt.row}, "user-1", "wallet-1", categories, zerolog.Nop())
			if len(txs) != 1 {
				t.Fatalf("got %d transactions, want 1", len(txs))
			}
			got := txs[0]
			if got.Type != tt.wantType {
				t.Errorf("type = %s, want %s", got.Type, tt.wantType)
			}
			if got.CategoryID != tt.wantCategory {
				t.Errorf("category = %s, want %s", got.CategoryID, tt.wantCategory)
			}
			if got.Amount != tt.wantAmount {
				t.Errorf("amount = %v, want %v", got.Amount, tt.wantAmount)
			}
			if got.UserID != "user-1" || got.WalletID != "wallet-1" || got.Source != "xlsx_import" {
				t.Errorf("provenance: %+v", got)
			}
			if got.ID == "" {
				t.Error("transaction id not assigned")
			}
		})
	}
}

type fakeInserter struct {
	inserted []domain.Transaction
	err      error
}

func (f *fakeInserter) InsertTransactions(_ context.Context, txs []domain.Transaction) error {
	if f.err != nil {
		return f.err
	}
	f.inserted = append(f.inserted, txs...)
	return nil
}

func TestImport(t *testing.T) {
	r := buildWorkbook(t, [][]any{
		{"15.02.2025 14:30:00", "Продукти", "*1234", "Silpo", "-150,50", "UAH"},
		{"16.02.2025 09:00:00", "Кафе та ресторани", "*1234", "Aroma", "-85,00", "UAH"},
	})

	repo := &fakeInserter{}
	res, err := New(repo, zerolog.Nop()).Import(context.Background(), r, "user-1", "wallet-1", nil)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if res.Success != 2 || res.Failed != 0 {
		t.Fatalf("got %+v, want success=2 failed=0", res)
	}
	if len(repo.inserted) != 2 {
		t.Fatalf("stored %d transactions, want 2", len(repo.inserted))
	}
	if repo.inserted[1].CategoryID != domain.CategoryCafe {
		t.Errorf("cafe row category = %s", repo.inserted[1].CategoryID)
	}
}

func TestImportBulkFailure(t *testing.T) {
	r := buildWorkbook(t, [][]any{
		{"15.02.2025 14:30:00", "Продукти", "*1234", "Silpo", "-150,50", "UAH"},
	})

	repo := &fakeInserter{err: errors.New("storage down")}
	res, err := New(repo, zerolog.Nop()).Import(context.Background(), r, "user-1", "wallet-1", nil)
	if err == nil {
		t.Fatal("expected error from failed bulk insert")
	}
	if res.Failed != 1 || res.Success != 0 {
		t.Fatalf("got %+v, want failed=1 success=0", res)
	}
}

func TestParseAmountFormats(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"-150,50", -150.50},
		{"-150.50", -150.50},
		{"1 250,00", 1250.00},
		{" 42 ", 42},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseAmount(tt.in)
			if err != nil {
				t.Fatalf("parseAmount(%q): %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("parseAmount(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
	if _, err := parseAmount("н/д"); err == nil {
		t.Error("expected error for non-numeric amount")
	}
}
