package dialect

import "fmt"

// Built-in dialects for the three supported drivers. Currency renders as the
// rand symbol followed by the amount, two decimal places, grouped thousands
// where the engine's formatter allows it.

func init() {
	Register(&Dialect{
		Name:       "postgres",
		Positional: true,
		Money: func(expr string) string {
			return fmt.Sprintf("'R' || TO_CHAR(%s, 'FM999,999,999.00')", expr)
		},
	})

	Register(&Dialect{
		Name:       "duckdb",
		Positional: false,
		Money: func(expr string) string {
			return fmt.Sprintf("'R' || format('{:,.2f}', %s)", expr)
		},
	})

	Register(&Dialect{
		Name:       "sqlite",
		Positional: false,
		Money: func(expr string) string {
			return fmt.Sprintf("'R' || printf('%%.2f', %s)", expr)
		},
	})
}
