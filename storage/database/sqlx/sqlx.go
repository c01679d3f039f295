package sqlxrepos

import (
	"database/sql/driver"
	"encoding/json"
	"strings"

	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
)

const uniqueViolation = "23505" // psql error code

// isUniqueViolation reports whether err is a duplicate-key failure. Conditional
// creates rely on it to translate a lost race into the domain's conflict error.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == uniqueViolation
	}
	return false
}

func orderBy(ordering []core.DBOrdering, dflt string) string {
	if len(ordering) == 0 {
		return dflt
	}
	orderList := make([]string, 0, len(ordering))
	for _, ord := range ordering {
		orderList = append(orderList, ord.String())
	}
	return strings.Join(orderList, ", ")
}

// jsonScan unmarshals a JSONB column value into dest.
func jsonScan(src, dest interface{}) error {
	if src == nil {
		return nil
	}
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.Errorf("unsupported JSONB source type %T", src)
	}
	return json.Unmarshal(data, dest)
}

func jsonValue(src interface{}) (driver.Value, error) {
	if src == nil {
		return nil, nil
	}
	return json.Marshal(src)
}
