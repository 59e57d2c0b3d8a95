//go:build !(sqlite_vec && cgo)

package store

import (
	"database/sql/driver"
	"fmt"

	sqlite "modernc.org/sqlite"
)

// driverName is the pure-Go SQLite driver. Build with -tags sqlite_vec,cgo to
// use go-sqlite3 with the native sqlite-vec extension instead.
const driverName = "sqlite"

// nativeVec reports whether vec_distance_cosine comes from sqlite-vec.
const nativeVec = false

func init() {
	// Same name and semantics as the sqlite-vec function so queries are
	// identical under both builds. Deterministic: same input blobs produce
	// the same distance.
	if err := sqlite.RegisterDeterministicScalarFunction("vec_distance_cosine", 2, vecDistanceCosine); err != nil {
		panic(fmt.Sprintf("store: register vec_distance_cosine: %v", err))
	}
}

func vecDistanceCosine(ctx *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("vec_distance_cosine expects 2 arguments")
	}
	a, err := decodeVector(args[0])
	if err != nil {
		return nil, err
	}
	b, err := decodeVector(args[1])
	if err != nil {
		return nil, err
	}
	return cosineDistance(a, b)
}
