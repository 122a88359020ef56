package dialect

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/airlens/airlens/internal/query"
)

// Prepare turns an assembled statement into executable SQL for the given
// dialect: money(expr) calls become driver formatting and named :binds become
// the driver's placeholders, with the argument list in placeholder order.
func Prepare(stmt query.Statement, d *Dialect) (string, []any, error) {
	if d == nil {
		return "", nil, fmt.Errorf("no dialect configured")
	}
	text, err := expandMoney(stmt.Text, d.Money)
	if err != nil {
		return "", nil, err
	}
	return rewriteBinds(text, stmt.Binds, d.Positional)
}

// expandMoney replaces each money(...) call with the dialect's formatting
// SQL. Arguments may nest parentheses; matches inside string literals are
// left alone.
func expandMoney(sqlText string, money func(string) string) (string, error) {
	var (
		out      strings.Builder
		inString bool
	)
	for i := 0; i < len(sqlText); {
		c := sqlText[i]
		if c == '\'' {
			inString = !inString
		}
		if inString || !strings.HasPrefix(sqlText[i:], "money(") || identBefore(sqlText, i) {
			out.WriteByte(c)
			i++
			continue
		}

		depth := 0
		end := -1
		for j := i + len("money"); j < len(sqlText); j++ {
			switch sqlText[j] {
			case '(':
				depth++
			case ')':
				depth--
				if depth == 0 {
					end = j
				}
			}
			if end >= 0 {
				break
			}
		}
		if end < 0 {
			return "", fmt.Errorf("unbalanced parentheses in money() call at offset %d", i)
		}

		inner := sqlText[i+len("money(") : end]
		out.WriteString(money(strings.TrimSpace(inner)))
		i = end + 1
	}
	return out.String(), nil
}

// identBefore reports whether position i continues an identifier, which
// rules out a money( call match inside a longer name.
func identBefore(s string, i int) bool {
	if i == 0 {
		return false
	}
	c := s[i-1]
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// rewriteBinds converts named :binds to dialect placeholders and collects
// the argument values in emit order. Positional dialects reuse one number
// per name; question-mark dialects repeat the value per occurrence.
func rewriteBinds(sqlText string, binds query.Bindings, positional bool) (string, []any, error) {
	var (
		out       strings.Builder
		args      []any
		positions = make(map[string]int)
		inString  bool
	)
	for i := 0; i < len(sqlText); {
		c := sqlText[i]
		if c == '\'' {
			inString = !inString
		}
		if inString || c != ':' {
			out.WriteByte(c)
			i++
			continue
		}
		// Leave :: casts untouched.
		if i+1 < len(sqlText) && sqlText[i+1] == ':' {
			out.WriteString("::")
			i += 2
			continue
		}

		j := i + 1
		for j < len(sqlText) && isIdentByte(sqlText[j]) {
			j++
		}
		if j == i+1 {
			out.WriteByte(c)
			i++
			continue
		}

		name := sqlText[i+1 : j]
		value, ok := binds.Get(name)
		if !ok {
			return "", nil, fmt.Errorf("no value bound for :%s", name)
		}
		if positional {
			n, seen := positions[name]
			if !seen {
				args = append(args, value)
				n = len(args)
				positions[name] = n
			}
			out.WriteString("$" + strconv.Itoa(n))
		} else {
			args = append(args, value)
			out.WriteByte('?')
		}
		i = j
	}
	return out.String(), args, nil
}

func isIdentByte(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
