package flatten

import (
	"strconv"
	"time"

	"github.com/campusshop/storefront/internal/domain"
)

// OrderHeaders are the fixed leading columns of every export row.
var OrderHeaders = []string{
	"Order ID", "Placed At", "Customer", "Email", "Status",
	"Product", "Quantity", "Unit Price", "Line Total",
}

// Table builds the export table for a set of orders.
//
// Headers are OrderHeaders followed by the union of every order's answer
// columns in first-seen order. There is one row per order line item, with
// the order's answer columns repeated on each. An order without items still
// yields one row. Cells for columns an order does not have are left empty.
func Table(schema domain.Schema, orders []domain.Order) domain.ExportTable {
	perOrder := make([]map[string]string, len(orders))
	var dynamic []string
	known := make(map[string]bool)

	for i, o := range orders {
		cols := Order(schema, o.Answers)
		values := make(map[string]string, len(cols))
		for _, c := range cols {
			if _, dup := values[c.Name]; dup {
				continue
			}
			values[c.Name] = c.Value
			if !known[c.Name] {
				known[c.Name] = true
				dynamic = append(dynamic, c.Name)
			}
		}
		perOrder[i] = values
	}

	headers := make([]string, 0, len(OrderHeaders)+len(dynamic))
	headers = append(headers, OrderHeaders...)
	headers = append(headers, dynamic...)

	rows := [][]string{}
	for i, o := range orders {
		items := o.Items
		if len(items) == 0 {
			items = []domain.OrderItem{{}}
		}
		for _, it := range items {
			row := make([]string, 0, len(headers))
			row = append(row, orderCells(o, it)...)
			for _, name := range dynamic {
				row = append(row, perOrder[i][name])
			}
			rows = append(rows, row)
		}
	}
	return domain.ExportTable{Headers: headers, Rows: rows}
}

func orderCells(o domain.Order, it domain.OrderItem) []string {
	cells := []string{
		o.ID.String(),
		o.CreatedAt.UTC().Format(time.RFC3339),
		o.CustomerName,
		o.CustomerEmail,
		string(o.Status),
		it.ProductName,
		"",
		"",
		"",
	}
	if it.Quantity > 0 {
		cells[6] = strconv.Itoa(it.Quantity)
		cells[7] = formatCents(it.UnitPriceCents)
		cells[8] = formatCents(it.UnitPriceCents * int64(it.Quantity))
	}
	return cells
}

// formatCents renders an amount in cents as a decimal string, e.g. 1250 → "12.50".
func formatCents(c int64) string {
	sign := ""
	if c < 0 {
		sign = "-"
		c = -c
	}
	frac := strconv.FormatInt(c%100, 10)
	if len(frac) == 1 {
		frac = "0" + frac
	}
	return sign + strconv.FormatInt(c/100, 10) + "." + frac
}
