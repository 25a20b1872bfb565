package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/feature"
)

const generatedKeyColumn = "id"

var errNoGeneratedKey = errors.New("driver reported no generated key")

// generatedKey holds whatever the driver handed back for an auto-increment
// insert: a keyed row when the dialect supports INSERT ... RETURNING
// (Postgres, SQLite), or only the statement result (MySQL LastInsertId).
type generatedKey struct {
	returned map[string]interface{}
	result   sql.Result
}

// insertWithKey executes an insert for model and returns the generated id.
// This is the only place that knows which shape the current dialect uses.
func insertWithKey(ctx context.Context, db bun.IDB, model interface{}) (int64, error) {
	q := db.NewInsert().Model(model)

	var key generatedKey
	var err error
	if db.Dialect().Features().Has(feature.InsertReturning) {
		key.returned = make(map[string]interface{}, 1)
		key.result, err = q.Returning(generatedKeyColumn).Exec(ctx, &key.returned)
	} else {
		key.result, err = q.Exec(ctx)
	}
	if err != nil {
		return 0, err
	}
	return key.ID()
}

// ID normalises the key into an int64, preferring the keyed row.
func (k generatedKey) ID() (int64, error) {
	if v, ok := k.returned[generatedKeyColumn]; ok && v != nil {
		return toInt64(v)
	}
	if k.result == nil {
		return 0, errNoGeneratedKey
	}
	id, err := k.result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	if id == 0 {
		return 0, errNoGeneratedKey
	}
	return id, nil
}

func toInt64(v interface{}) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case int32:
		return int64(n), nil
	case int:
		return int64(n), nil
	case uint64:
		return int64(n), nil
	case uint32:
		return int64(n), nil
	case float64:
		return int64(n), nil
	case []byte:
		return strconv.ParseInt(string(n), 10, 64)
	case string:
		return strconv.ParseInt(n, 10, 64)
	default:
		return 0, fmt.Errorf("unsupported generated key type %T", v)
	}
}
