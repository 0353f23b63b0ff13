package store

import (
	"strconv"
	"strings"
)

// dialect covers the SQL differences between the supported drivers
type dialect struct {
	driver     string
	idColumn   string
	like       string
	positional bool
}

var dialects = map[string]dialect{
	"sqlite3": {
		driver:   "sqlite3",
		idColumn: "id INTEGER PRIMARY KEY AUTOINCREMENT",
		like:     "LIKE",
	},
	"pgx": {
		driver:     "pgx",
		idColumn:   "id BIGSERIAL PRIMARY KEY",
		like:       "ILIKE",
		positional: true,
	},
}

// rebind rewrites ? placeholders as $1, $2... for drivers that need it
func (d dialect) rebind(query string) string {
	if !d.positional {
		return query
	}
	var b strings.Builder
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

func (d dialect) schema() string {
	return `CREATE TABLE IF NOT EXISTS items (
	` + d.idColumn + `,
	source TEXT NOT NULL,
	title TEXT NOT NULL,
	price TEXT,
	url TEXT UNIQUE NOT NULL,
	image TEXT,
	keyword TEXT,
	category TEXT DEFAULT 'Other',
	item_condition TEXT,
	item_id TEXT,
	found_date TIMESTAMP NOT NULL,
	archived BOOLEAN NOT NULL DEFAULT FALSE
)`
}

// addedColumns were introduced after the first schema and are added to
// existing tables on Init
var addedColumns = []struct {
	name       string
	definition string
}{
	{"category", "TEXT DEFAULT 'Other'"},
	{"item_condition", "TEXT"},
	{"item_id", "TEXT"},
}
