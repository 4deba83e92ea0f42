// Package render turns aggregated shopping list rows into a downloadable
// byte payload. Heavier document formats (PDF) are produced by external
// tooling from the same rows.
package render

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/foodgram-app/backend/internal/service"
)

// ShoppingList renders the aggregated rows as a plain-text document,
// one "name (unit): amount" line per ingredient.
func ShoppingList(items []service.ShoppingListItem) []byte {
	var buf bytes.Buffer
	buf.WriteString("Shopping list\n\n")
	for _, item := range items {
		fmt.Fprintf(&buf, "- %s (%s): %s\n", item.Name, item.MeasurementUnit, formatAmount(item.Amount))
	}
	return buf.Bytes()
}

// formatAmount prints whole amounts without a trailing ".0"
func formatAmount(amount float64) string {
	if amount == float64(int64(amount)) {
		return strconv.FormatInt(int64(amount), 10)
	}
	return strconv.FormatFloat(amount, 'f', -1, 64)
}
