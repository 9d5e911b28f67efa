package storage

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// Dialect describes how to reach one SQL engine.
type Dialect struct {
	// Name matches the DATABASE_CLIENT value.
	Name string
	// DriverName is the database/sql driver name.
	DriverName string
	// MigrationsDir is the embedded directory holding this engine's migrations.
	MigrationsDir string
	// SchemaQuery lists the schema catalogue for the /db diagnostic route.
	SchemaQuery string
	// NumberedPlaceholders is true for engines using $1, $2, ...
	NumberedPlaceholders bool
	// TextAmounts is true for engines without an exact numeric type. Amounts
	// are stored as decimal text and summed in Go.
	TextAmounts bool
}

var dialects = map[string]Dialect{
	"sqlite": {
		Name:          "sqlite",
		DriverName:    "sqlite",
		MigrationsDir: "migrations/sqlite",
		SchemaQuery:   `SELECT type, name, tbl_name, rootpage, sql FROM sqlite_schema`,
		TextAmounts:   true,
	},
	"pg": {
		Name:          "pg",
		DriverName:    "postgres",
		MigrationsDir: "migrations/postgres",
		SchemaQuery: `SELECT table_schema, table_name, table_type FROM information_schema.tables
			WHERE table_schema = current_schema() ORDER BY table_name`,
		NumberedPlaceholders: true,
	},
	"mysql": {
		Name:          "mysql",
		DriverName:    "mysql",
		MigrationsDir: "migrations/mysql",
		SchemaQuery: `SELECT table_schema, table_name, table_type FROM information_schema.tables
			WHERE table_schema = DATABASE() ORDER BY table_name`,
	},
}

// LookupDialect returns the dialect registered for a DATABASE_CLIENT value.
func LookupDialect(client string) (Dialect, error) {
	d, ok := dialects[client]
	if !ok {
		return Dialect{}, fmt.Errorf("unsupported database client %q", client)
	}
	return d, nil
}

// Rebind rewrites ? placeholders into the dialect's native form.
func (d Dialect) Rebind(query string) string {
	if !d.NumberedPlaceholders {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// DSN normalizes the connection string for the driver.
func (d Dialect) DSN(url string) (string, error) {
	switch d.Name {
	case "sqlite":
		if !strings.Contains(url, "?") {
			return url + "?_pragma=busy_timeout(5000)", nil
		}
		return url, nil
	case "mysql":
		cfg, err := mysql.ParseDSN(url)
		if err != nil {
			return "", fmt.Errorf("parse mysql dsn: %w", err)
		}
		// created_at must scan into time.Time
		cfg.ParseTime = true
		return cfg.FormatDSN(), nil
	default:
		return url, nil
	}
}
