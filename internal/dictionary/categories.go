package dictionary

import "github.com/aminus007/fintrack/internal/finance"

// CategoryDef is one curated category offered to clients. Transactions and
// budgets accept any well-formed slug; the dictionary is advisory.
type CategoryDef struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

var curated = map[finance.TxType][]CategoryDef{
	finance.TxTypeExpense: {
		{Code: "groceries", Label: "Groceries"},
		{Code: "eating_out", Label: "Eating Out"},
		{Code: "rent", Label: "Rent"},
		{Code: "utilities", Label: "Utilities"},
		{Code: "transport", Label: "Transport"},
		{Code: "shopping", Label: "Shopping"},
		{Code: "entertainment", Label: "Entertainment"},
		{Code: "debt", Label: "Debt Payment"},
		{Code: "savings", Label: "Savings"},
		{Code: "general", Label: "General"},
	},
	finance.TxTypeIncome: {
		{Code: "salary", Label: "Salary"},
		{Code: "interest", Label: "Interest"},
		{Code: "refund", Label: "Refund"},
		{Code: "other_income", Label: "Other Income"},
	},
}

// CategoriesFor returns the curated categories for a transaction type, or all
// of them when t is nil.
func CategoriesFor(t *finance.TxType) []CategoryDef {
	if t == nil {
		out := make([]CategoryDef, 0)
		out = append(out, curated[finance.TxTypeExpense]...)
		out = append(out, curated[finance.TxTypeIncome]...)
		return out
	}
	return curated[*t]
}

// IsKnown reports whether code is a curated category of any type.
func IsKnown(code string) bool {
	for _, list := range curated {
		for _, c := range list {
			if c.Code == code {
				return true
			}
		}
	}
	return false
}
