package postgres

import (
	"fmt"
	"strings"

	"github.com/CHOISC1208/psi-erp/internal/domain"
	"github.com/lib/pq"
)

// buildMatrixFilterClause constructs the optional SKU/warehouse/channel
// filter clauses of the matrix aggregation. startIndex is the next free
// positional parameter.
func buildMatrixFilterClause(query domain.MatrixQuery, alias string, startIndex int) (string, []interface{}) {
	var (
		clauses []string
		args    []interface{}
	)
	idx := startIndex

	if len(query.SKUCodes) > 0 {
		clauses = append(clauses, fmt.Sprintf("%ssku_code = ANY($%d)", alias, idx))
		args = append(args, pq.Array(query.SKUCodes))
		idx++
	}
	if len(query.Warehouses) > 0 {
		clauses = append(clauses, fmt.Sprintf("%swarehouse_name = ANY($%d)", alias, idx))
		args = append(args, pq.Array(query.Warehouses))
		idx++
	}
	if len(query.Channels) > 0 {
		clauses = append(clauses, fmt.Sprintf("%schannel = ANY($%d)", alias, idx))
		args = append(args, pq.Array(query.Channels))
		idx++
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " AND " + strings.Join(clauses, " AND "), args
}
