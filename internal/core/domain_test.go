package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseCategory(t *testing.T) {
	cases := []struct {
		in   string
		want Category
		ok   bool
	}{
		{"Transport", CategoryTransport, true},
		{" Outside Food ", CategoryOutsideFood, true},
		{"Uncategorized", CategoryUncategorized, true},
		{"transport", "", false}, // case sensitive, like the sheet values
		{"Snacks", "", false},
		{"", "", false},
	}
	for i, tc := range cases {
		got, ok := ParseCategory(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("case %d: got (%q, %v), want (%q, %v)", i, got, ok, tc.want, tc.ok)
		}
	}
}

func TestCategorySelectable(t *testing.T) {
	for _, c := range Categories() {
		if !c.Selectable() {
			t.Fatalf("%q should be selectable", c)
		}
	}
	if CategoryUncategorized.Selectable() {
		t.Fatalf("Uncategorized must not be selectable")
	}
}

func TestExpenseInputValidate(t *testing.T) {
	good := ExpenseInput{Description: "Coffee", Amount: decimal.NewFromInt(5), Category: CategoryOutsideFood}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []ExpenseInput{
		{Description: "  ", Amount: decimal.NewFromInt(5), Category: CategoryOutsideFood},
		{Description: "Coffee", Amount: decimal.Zero, Category: CategoryOutsideFood},
		{Description: "Coffee", Amount: decimal.NewFromInt(-1), Category: CategoryOutsideFood},
		{Description: "Coffee", Amount: decimal.NewFromInt(5), Category: "Snacks"},
		{Description: "Coffee", Amount: decimal.NewFromInt(5), Category: CategoryUncategorized},
	}
	for i, in := range bads {
		if err := in.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestExpenseValidate(t *testing.T) {
	good := Expense{
		ID:          "a",
		Date:        "2024-05-01T10:00:00Z",
		Description: "Coffee",
		Amount:      decimal.NewFromInt(5),
		Category:    CategoryOutsideFood,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Expense{
		func() Expense { e := good; e.ID = ""; return e }(),
		func() Expense { e := good; e.Date = "yesterday"; return e }(),
		func() Expense { e := good; e.Date = "2024-05-01"; return e }(), // date only, not a timestamp
		func() Expense { e := good; e.Description = ""; return e }(),
		func() Expense { e := good; e.Amount = decimal.Zero; return e }(),
		func() Expense { e := good; e.Category = CategoryUncategorized; return e }(),
	}
	for i, e := range bads {
		if err := e.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}
