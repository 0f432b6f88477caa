package db

import (
	"io/fs"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDSN(t *testing.T) {
	cfg := PostgresConfig{Host: "db", Port: 5432, User: "app", Password: "pw", DBName: "commerce"}
	assert.Equal(t, "postgres://app:pw@db:5432/commerce?sslmode=disable", cfg.DSN())

	cfg.SSLMode = "require"
	assert.True(t, strings.HasSuffix(cfg.DSN(), "sslmode=require"))
}

func TestMigrationsArePaired(t *testing.T) {
	entries, err := fs.ReadDir(migrationFS, "migrations")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	ups, downs := 0, 0
	for _, e := range entries {
		switch {
		case strings.HasSuffix(e.Name(), ".up.sql"):
			ups++
		case strings.HasSuffix(e.Name(), ".down.sql"):
			downs++
		}
	}
	assert.Equal(t, ups, downs)
}

func TestEveryTableIsTenantScoped(t *testing.T) {
	raw, err := fs.ReadFile(migrationFS, "migrations/000001_init_schema.up.sql")
	require.NoError(t, err)

	tenantColumn := regexp.MustCompile(`tenant_id\s+TEXT NOT NULL`)
	for _, stmt := range strings.Split(string(raw), ";") {
		if !strings.Contains(stmt, "CREATE TABLE") {
			continue
		}
		assert.Regexp(t, tenantColumn, stmt)
	}
}
