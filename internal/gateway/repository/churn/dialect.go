package churn

import (
	"fmt"
	"strconv"
	"strings"
)

type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

func ParseDialect(raw string) (Dialect, error) {
	switch Dialect(strings.ToLower(strings.TrimSpace(raw))) {
	case Postgres, "pgx", "postgresql":
		return Postgres, nil
	case SQLite, "sqlite3":
		return SQLite, nil
	}
	return "", fmt.Errorf("unsupported db driver %q", raw)
}

// DriverName is the database/sql driver registered for the dialect.
func (d Dialect) DriverName() string {
	if d == Postgres {
		return "pgx"
	}
	return "sqlite"
}

// placeholders returns n bind markers starting after offset markers.
func (d Dialect) placeholders(n, offset int) string {
	marks := make([]string, n)
	for i := range marks {
		if d == Postgres {
			marks[i] = "$" + strconv.Itoa(offset+i+1)
		} else {
			marks[i] = "?"
		}
	}
	return strings.Join(marks, ", ")
}

func (d Dialect) placeholder(pos int) string {
	if d == Postgres {
		return "$" + strconv.Itoa(pos)
	}
	return "?"
}
