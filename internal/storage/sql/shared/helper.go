package shared

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/results-hub/results-hub/internal/messages"
	"github.com/results-hub/results-hub/internal/serviceerrors"
	"github.com/results-hub/results-hub/pkg/api"
)

// Filter operators supported by the statement builders
const (
	OpEq   = "="
	OpLike = "LIKE"
	OpGte  = ">="
	OpLte  = "<="
)

// Condition is a single column comparison of a WHERE clause.
type Condition struct {
	Column string
	Op     string
	Value  any
}

// PlaceholderFunc returns the bind parameter for the zero-based argument index.
type PlaceholderFunc func(index int) string

func ValidateFilter(filter []string, allowedColumns []string) error {
	for _, key := range filter {
		if !slices.Contains(allowedColumns, key) {
			return serviceerrors.NewServiceError(messages.QueryBadParameter, "ParameterName", key, "AllowedParameters", strings.Join(allowedColumns, ", "))
		}
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// LikeContains returns the LIKE pattern matching values that contain s
// literally. The pattern uses a backslash as the escape character.
func LikeContains(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// CreateWhereClause renders the conditions joined by AND. The placeholders
// are numbered from start so the clause can follow other arguments.
func CreateWhereClause(conditions []Condition, placeholder PlaceholderFunc, start int) (string, []any) {
	if len(conditions) == 0 {
		return "", nil
	}
	var sb strings.Builder
	args := make([]any, 0, len(conditions))
	sb.WriteString(" WHERE ")
	for i, condition := range conditions {
		if i > 0 {
			sb.WriteString(" AND ")
		}
		fmt.Fprintf(&sb, "%s %s %s", condition.Column, condition.Op, placeholder(start+i))
		if condition.Op == OpLike {
			sb.WriteString(" ESCAPE '\\'")
		}
		args = append(args, condition.Value)
	}
	return sb.String(), args
}

// CreateInList renders "column IN (p1, p2, ...)" for count arguments.
func CreateInList(column string, count int, placeholder PlaceholderFunc, start int) string {
	params := make([]string, count)
	for i := range count {
		params[i] = placeholder(start + i)
	}
	return fmt.Sprintf("%s IN (%s)", column, strings.Join(params, ", "))
}

func IntArgs(ids []int) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

// ScanTime converts a scanned column value into a UTC time. Drivers return
// either time.Time or the text the value was stored as.
func ScanTime(value any) (*time.Time, error) {
	var t time.Time
	switch v := value.(type) {
	case nil:
		return nil, nil
	case time.Time:
		t = v
	case string:
		parsed, err := parseStoredTime(v)
		if err != nil {
			return nil, err
		}
		t = parsed
	case []byte:
		parsed, err := parseStoredTime(string(v))
		if err != nil {
			return nil, err
		}
		t = parsed
	default:
		return nil, fmt.Errorf("unsupported time value %T", value)
	}
	t = t.UTC()
	return &t, nil
}

func parseStoredTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.ParseInLocation(api.DateTimeLayout, s, time.UTC); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}

// ScanDateTime is ScanTime for the API date time type.
func ScanDateTime(value any) (*api.DateTime, error) {
	t, err := ScanTime(value)
	if err != nil || t == nil || t.IsZero() {
		return nil, err
	}
	return api.NewDateTime(*t), nil
}
