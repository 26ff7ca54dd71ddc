package query

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"
)

// Inline renders the statement with its arguments quoted in place. Debug logging only;
// never execute the result.
func (q Query) Inline() string {
	s := q.SQL
	for i := len(q.Args); i >= 1; i-- {
		s = strings.ReplaceAll(s, "$"+strconv.Itoa(i), literal(q.Args[i-1]))
	}
	return s
}

func literal(v any) string {
	switch v := v.(type) {
	case nil:
		return "NULL"
	case string:
		return pq.QuoteLiteral(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case time.Time:
		return pq.QuoteLiteral(v.Format(time.RFC3339))
	case []string:
		parts := make([]string, len(v))
		for i, s := range v {
			parts[i] = pq.QuoteLiteral(s)
		}
		return "ARRAY[" + strings.Join(parts, ", ") + "]::text[]"
	case []int64:
		parts := make([]string, len(v))
		for i, n := range v {
			parts[i] = strconv.FormatInt(n, 10)
		}
		return "ARRAY[" + strings.Join(parts, ", ") + "]::bigint[]"
	default:
		return pq.QuoteLiteral(fmt.Sprint(v))
	}
}
