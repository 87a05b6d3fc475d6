package httpapi

import (
	"net/http"

	"github.com/aminus007/fintrack/internal/dictionary"
	"github.com/aminus007/fintrack/internal/finance"
)

// GET /v1/categories?type=
func (s *Server) getCategories(w http.ResponseWriter, r *http.Request) {
	var t *finance.TxType
	if ts := r.URL.Query().Get("type"); ts != "" {
		tt := finance.TxType(ts)
		t = &tt
	}
	types := []finance.TxType{finance.TxTypeExpense, finance.TxTypeIncome}
	type typeItem struct {
		Type       finance.TxType           `json:"type"`
		Categories []dictionary.CategoryDef `json:"categories"`
	}
	out := struct {
		Items []typeItem `json:"items"`
	}{Items: []typeItem{}}
	for _, typ := range types {
		if t != nil && *t != typ {
			continue
		}
		out.Items = append(out.Items, typeItem{Type: typ, Categories: dictionary.CategoriesFor(&typ)})
	}
	toJSON(w, http.StatusOK, out)
}
