package store

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/yanqian/invoice-query/internal/domain/query"
)

// CollectRows drains rows into column-keyed maps.
func CollectRows(rows pgx.Rows) (query.RowSet, error) {
	defer rows.Close()
	fields := rows.FieldDescriptions()
	columns := make([]string, len(fields))
	for i, f := range fields {
		columns[i] = f.Name
	}
	set := query.RowSet{Columns: columns, Rows: []query.Row{}}
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return query.RowSet{}, err
		}
		row := make(query.Row, len(columns))
		for i, col := range columns {
			row[col] = plainValue(values[i])
		}
		set.Rows = append(set.Rows, row)
	}
	return set, rows.Err()
}

// plainValue converts driver types into JSON friendly values.
func plainValue(v any) any {
	switch val := v.(type) {
	case pgtype.Numeric:
		if !val.Valid {
			return nil
		}
		f, err := val.Float64Value()
		if err != nil || !f.Valid {
			return nil
		}
		return f.Float64
	case [16]byte:
		return uuid.UUID(val).String()
	case []byte:
		return string(val)
	case time.Time:
		return val.UTC()
	case pgtype.Time:
		if !val.Valid {
			return nil
		}
		return time.Duration(val.Microseconds * int64(time.Microsecond)).String()
	case pgtype.Interval:
		if !val.Valid {
			return nil
		}
		return (time.Duration(val.Microseconds)*time.Microsecond +
			time.Duration(val.Days)*24*time.Hour).String()
	default:
		return v
	}
}
