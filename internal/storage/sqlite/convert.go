package sqlite

import (
	"database/sql"
	"time"
)

// Dates round-trip through RFC3339 TEXT columns in UTC.

func timeToDB(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func timePtrToDB(t *time.Time) any {
	if t == nil {
		return nil
	}
	return timeToDB(*t)
}

func timeFromDB(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func timePtrFromDB(ns sql.NullString) *time.Time {
	if !ns.Valid {
		return nil
	}
	t := timeFromDB(ns.String)
	return &t
}

func strPtrFromDB(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func strPtrToDB(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

// dayString truncates a time to its calendar day for sqlite date() comparison
func dayString(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
