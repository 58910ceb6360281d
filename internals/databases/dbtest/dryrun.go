// Package dbtest gives repository tests a postgres-dialect gorm handle that never connects.
package dbtest

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Recorder collects the SQL gorm would have sent, with vars inlined.
type Recorder struct {
	DB *gorm.DB

	mu   sync.Mutex
	sqls []string
}

// DryRun opens gorm in DryRun mode against an unreachable DSN and records every statement.
func DryRun(t testing.TB) *Recorder {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{DSN: "host=127.0.0.1 port=1 user=dry dbname=dry sslmode=disable"}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
		Logger:               logger.Discard,
	})
	require.NoError(t, err)

	r := &Recorder{DB: db}
	record := func(tx *gorm.DB) {
		sql := tx.Statement.SQL.String()
		if sql == "" {
			return
		}
		r.mu.Lock()
		r.sqls = append(r.sqls, tx.Dialector.Explain(sql, tx.Statement.Vars...))
		r.mu.Unlock()
	}
	cb := db.Callback()
	require.NoError(t, cb.Query().After("gorm:query").Register("dbtest:query", record))
	require.NoError(t, cb.Create().After("gorm:create").Register("dbtest:create", record))
	require.NoError(t, cb.Update().After("gorm:update").Register("dbtest:update", record))
	require.NoError(t, cb.Delete().After("gorm:delete").Register("dbtest:delete", record))
	return r
}

// SQL returns the recorded statements and clears the log.
func (r *Recorder) SQL() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.sqls
	r.sqls = nil
	return out
}

// Last returns the most recent statement, or "" when none ran.
func (r *Recorder) Last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.sqls) == 0 {
		return ""
	}
	return r.sqls[len(r.sqls)-1]
}

// Joined is every recorded statement on its own line; handy for Contains assertions.
func (r *Recorder) Joined() string {
	return strings.Join(r.SQL(), "\n")
}
