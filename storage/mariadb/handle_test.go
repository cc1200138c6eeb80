package mariadb

import (
	"context"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/kotone-fm/kotone/errors"
	"github.com/kotone-fm/kotone/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectionDSN(t *testing.T) {
	conn, display, err := connectionDSN("kotone:secret@tcp(db:3306)/kotone", true)
	require.NoError(t, err)

	assert.NotContains(t, display, "secret")
	assert.Contains(t, display, "<redacted>")

	dsn, err := mysql.ParseDSN(conn)
	require.NoError(t, err)
	assert.Equal(t, "secret", dsn.Passwd)
	assert.Equal(t, "kotone", dsn.DBName)
	assert.True(t, dsn.MultiStatements)
	assert.True(t, dsn.ParseTime)
	assert.Equal(t, "'+00:00'", dsn.Params["time_zone"])

	conn, _, err = connectionDSN("kotone@tcp(db:3306)/kotone?multiStatements=true", false)
	require.NoError(t, err)
	dsn, err = mysql.ParseDSN(conn)
	require.NoError(t, err)
	assert.False(t, dsn.MultiStatements)

	_, _, err = connectionDSN("not a dsn", false)
	assert.Error(t, err)
}

func TestSongTxForeign(t *testing.T) {
	storage, mock := newTestStorage(t)

	_, _, err := storage.SongTx(context.Background(), mocks.NotUsedTx(t))
	assert.True(t, errors.Is(errors.InvalidArgument, err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSongTxDone(t *testing.T) {
	storage, mock := newTestStorage(t)

	mock.ExpectBegin()
	mock.ExpectCommit()
	_, tx, err := storage.SongTx(context.Background(), nil)
	require.NoError(t, err)
	require.NoError(t, tx.Commit())
	// the usual deferred Rollback after a Commit
	assert.Error(t, tx.Rollback())
	require.NoError(t, mock.ExpectationsWereMet())
}
