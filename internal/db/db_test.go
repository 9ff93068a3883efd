package db

import (
	"testing"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDSN = "user:pass@tcp(localhost:3306)/assets?parseTime=true"

func TestSessionDSN_SetsLockWait(t *testing.T) {
	cases := map[time.Duration]string{
		5 * time.Second:         "5",
		750 * time.Millisecond:  "1",
		2500 * time.Millisecond: "3",
	}
	for wait, want := range cases {
		dsn, err := SessionDSN(testDSN, wait)
		require.NoError(t, err)

		cfg, err := mysqldriver.ParseDSN(dsn)
		require.NoError(t, err)
		assert.Equal(t, want, cfg.Params["innodb_lock_wait_timeout"], "wait %s", wait)
		assert.True(t, cfg.ParseTime)
		assert.Equal(t, "assets", cfg.DBName)
	}
}

func TestSessionDSN_ZeroKeepsServerDefault(t *testing.T) {
	dsn, err := SessionDSN(testDSN, 0)
	require.NoError(t, err)
	assert.NotContains(t, dsn, "innodb_lock_wait_timeout")
}

func TestSessionDSN_RejectsMalformed(t *testing.T) {
	_, err := SessionDSN("user:pass@tcp(localhost:3306/assets", time.Second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse dsn")
}
