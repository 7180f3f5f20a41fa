package compiler

import (
	"fmt"
	"strings"
)

// Table describes one table of the fixed logical sales schema. The compiler
// never introspects the live database; this is the whole world it knows.
type Table struct {
	Name        string   `json:"name"`
	Alias       string   `json:"alias"`
	Columns     []string `json:"columns"`
	Description string   `json:"description"`
}

// Schema is the fixed three-table sales schema plus its foreign-key wiring.
type Schema struct {
	Tables []Table
}

// DefaultSchema returns the sales/products/customers schema.
func DefaultSchema() *Schema {
	return &Schema{
		Tables: []Table{
			{
				Name:        "sales",
				Alias:       "s",
				Columns:     []string{"id", "date", "product_id", "customer_id", "quantity", "total_amount"},
				Description: "sales transactions",
			},
			{
				Name:        "products",
				Alias:       "p",
				Columns:     []string{"id", "name", "category", "price", "stock"},
				Description: "product information",
			},
			{
				Name:        "customers",
				Alias:       "c",
				Columns:     []string{"id", "name", "email", "region"},
				Description: "customer information",
			},
		},
	}
}

// DescribeText serializes the schema to a text block suitable for LLM prompts.
func (s *Schema) DescribeText() string {
	var sb strings.Builder
	sb.WriteString("Available tables and their relationships:\n")
	for _, t := range s.Tables {
		sb.WriteString(fmt.Sprintf("\nTABLE: %s (alias %s) // %s\n", t.Name, t.Alias, t.Description))
		for _, col := range t.Columns {
			sb.WriteString(fmt.Sprintf("  - %s\n", col))
		}
	}
	sb.WriteString("\nRelationships:\n")
	sb.WriteString("- sales.product_id references products.id\n")
	sb.WriteString("- sales.customer_id references customers.id\n")
	return sb.String()
}
