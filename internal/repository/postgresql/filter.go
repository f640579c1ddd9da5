package postgresql

import (
	"fmt"
	"strings"

	"github.com/etms-hr/etms-backend-go/internal/domain/policy"
)

// whereBuilder collects AND-ed clauses with positional arguments. Each clause
// is a format string whose %[1]d verbs receive the next argument index.
type whereBuilder struct {
	clauses []string
	args    []interface{}
}

func newWhere(base ...string) *whereBuilder {
	return &whereBuilder{clauses: append([]string{}, base...)}
}

func (w *whereBuilder) add(clause string, arg interface{}) {
	w.args = append(w.args, arg)
	w.clauses = append(w.clauses, fmt.Sprintf(clause, len(w.args)))
}

// scope restricts column to the employees visible in s.
func (w *whereBuilder) scope(column string, s policy.Scope) {
	switch {
	case s.Unrestricted():
		return
	case s.Empty():
		w.clauses = append(w.clauses, "FALSE")
	default:
		w.add(column+" = ANY($%[1]d::uuid[])", s.EmployeeIDs())
	}
}

func (w *whereBuilder) String() string {
	if len(w.clauses) == 0 {
		return "TRUE"
	}
	return strings.Join(w.clauses, " AND ")
}

// page appends LIMIT and OFFSET placeholders and returns the clause.
func (w *whereBuilder) page(limit, offset int) string {
	w.args = append(w.args, limit, offset)
	return fmt.Sprintf("LIMIT $%d OFFSET $%d", len(w.args)-1, len(w.args))
}

func orderDirection(order string) string {
	if strings.EqualFold(order, "asc") {
		return "ASC"
	}
	return "DESC"
}

func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.TrimSpace(s)) + "%"
}
