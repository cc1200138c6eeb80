package mariadb

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	library "github.com/kotone-fm/kotone"
	"github.com/kotone-fm/kotone/config"
	"github.com/kotone-fm/kotone/errors"
	"github.com/kotone-fm/kotone/storage"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const NAME = "mariadb"

func init() {
	storage.Register(NAME, Connect)
}

// DatabaseConnectFunc opens the database, telemetry swaps it for a traced one
var DatabaseConnectFunc = sqlx.ConnectContext

// songColumns maps databaseSong fields to the songs table columns that
// aren't just the lowercased field name
var songColumns = map[string]string{
	"CreatedAt":      "created_at",
	"FileKey":        "file_key",
	"MimeType":       "mime_type",
	"UploadedBy":     "uploaded_by",
	"FingerprintKey": "fingerprint_key",
}

func mapperFunc(field string) string {
	if column, ok := songColumns[field]; ok {
		return column
	}
	return strings.ToLower(field)
}

// invalidQueries holds the queries that failed CheckQuery, keyed by the
// location of the check
var invalidQueries = map[string]string{}

// CheckQuery records query in invalidQueries if it uses a named parameter
// that T doesn't have. Use it as a package level var so tests can see it
func CheckQuery[T any](query string) struct{} {
	var arg T
	if _, _, err := sqlx.Named(query, arg); err != nil {
		_, file, line, _ := runtime.Caller(1)
		invalidQueries[fmt.Sprintf("%s:%d", filepath.Base(file), line)] = err.Error()
	}
	return struct{}{}
}

// connectionDSN returns the DSN to connect with and a copy that is safe to
// log. The session always runs in UTC so that created_at round-trips
func connectionDSN(raw string, multistatement bool) (conn, display string, err error) {
	dsn, err := mysql.ParseDSN(raw)
	if err != nil {
		return "", "", err
	}

	dsn.MultiStatements = multistatement
	dsn.ParseTime = true
	dsn.Loc = time.UTC
	if dsn.Params == nil {
		dsn.Params = make(map[string]string, 1)
	}
	dsn.Params["time_zone"] = "'+00:00'"
	conn = dsn.FormatDSN()

	if dsn.Passwd != "" {
		dsn.Passwd = "<redacted>"
	}
	return conn, dsn.FormatDSN(), nil
}

// ConnectDB opens the configured database, migrations need multistatement
// support while the song store does not
func ConnectDB(ctx context.Context, cfg config.Config, multistatement bool) (*sqlx.DB, error) {
	conn, display, err := connectionDSN(cfg.Conf().Database.DSN, multistatement)
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Info().Ctx(ctx).Str("address", display).Msg("connecting to database")
	db, err := DatabaseConnectFunc(ctx, "mysql", conn)
	if err != nil {
		return nil, err
	}
	db.MapperFunc(mapperFunc)
	return db, nil
}

// Connect is the storage.OpenFn of the mariadb provider
func Connect(ctx context.Context, cfg config.Config) (library.StorageService, error) {
	const op errors.Op = "mariadb/Connect"

	db, err := ConnectDB(ctx, cfg, false)
	if err != nil {
		return nil, errors.E(op, errors.StorageUnknown, err)
	}
	return &StorageService{db: db}, nil
}

// StorageService implements library.StorageService on the songs table
type StorageService struct {
	db *sqlx.DB
}

func (s *StorageService) Close() error {
	return s.db.Close()
}

func (s *StorageService) Song(ctx context.Context) library.SongStorage {
	return SongStorage{handle{ext: s.db, ctx: ctx}}
}

func (s *StorageService) SongTx(ctx context.Context, tx library.StorageTx) (library.SongStorage, library.StorageTx, error) {
	const op errors.Op = "mariadb/StorageService.SongTx"

	var stx *songTx
	if tx == nil {
		var err error
		ctx, stx, err = beginSongTx(ctx, s.db)
		if err != nil {
			return nil, nil, errors.E(op, err)
		}
	} else {
		outer, ok := tx.(*songTx)
		if !ok {
			return nil, nil, errors.E(op, errors.InvalidArgument, errors.Info("transaction not from mariadb"))
		}
		stx = outer.borrow()
	}

	return SongStorage{handle{ext: stx.tx, ctx: ctx}}, stx, nil
}

// songTx is the library.StorageTx of this package. A borrowed songTx shares
// the transaction of its owner, its Commit does nothing so only the owner
// decides when the transaction ends
type songTx struct {
	tx       *sqlx.Tx
	borrowed bool
	span     trace.Span
	done     atomic.Bool
}

func beginSongTx(ctx context.Context, db *sqlx.DB) (context.Context, *songTx, error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return ctx, nil, errors.E(errors.TransactionBegin, err)
	}
	ctx, span := otel.Tracer("mariadb").Start(ctx, "transaction")
	return ctx, &songTx{tx: tx, span: span}, nil
}

func (t *songTx) borrow() *songTx {
	return &songTx{tx: t.tx, borrowed: true}
}

func (t *songTx) Commit() error {
	if !t.done.CompareAndSwap(false, true) {
		return sql.ErrTxDone
	}
	if t.borrowed {
		return nil
	}
	defer t.span.End()
	t.span.AddEvent("commit")
	return t.tx.Commit()
}

// Rollback of a borrowed songTx rolls back the owners transaction as well,
// calling it after Commit is a no-op
func (t *songTx) Rollback() error {
	if !t.done.CompareAndSwap(false, true) {
		return sql.ErrTxDone
	}
	if !t.borrowed {
		defer t.span.End()
		t.span.AddEvent("rollback")
	}
	return t.tx.Rollback()
}

// requireTx returns h running inside of a transaction, if h already is the
// returned tx is borrowed from it
func requireTx(h handle) (handle, library.StorageTx, error) {
	if tx, ok := h.ext.(*sqlx.Tx); ok {
		return h, &songTx{tx: tx, borrowed: true}, nil
	}

	db, ok := h.ext.(*sqlx.DB)
	if !ok {
		return h, nil, errors.E(errors.InvalidArgument, errors.Info("handle without database"))
	}
	ctx, stx, err := beginSongTx(h.ctx, db)
	if err != nil {
		return h, nil, err
	}
	h.ctx, h.ext = ctx, stx.tx
	return h, stx, nil
}

func namedExecLastInsertId(e sqlx.Ext, query string, arg any) (int64, error) {
	res, err := sqlx.NamedExec(e, query, arg)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

type extContext interface {
	sqlx.ExecerContext
	sqlx.QueryerContext
	DriverName() string
	Rebind(string) string
	BindNamed(string, any) (string, []any, error)
}

// handle is a sqlx.Ext bound to a context, queries go to either the
// database or a transaction and are logged at debug level
type handle struct {
	ext extContext
	ctx context.Context
}

func (h handle) span(op errors.Op) (handle, func(...trace.SpanEndOption)) {
	var span trace.Span
	h.ctx, span = otel.Tracer("mariadb").Start(h.ctx, string(op))
	return h, span.End
}

func (h handle) logQuery(kind, query string, args []any, start time.Time) {
	zerolog.Ctx(h.ctx).Debug().
		Str("query", strings.Join(strings.Fields(query), " ")).
		Any("arguments", args).
		Dur("duration", time.Since(start)).
		Msg(kind)
}

func (h handle) Exec(query string, args ...any) (sql.Result, error) {
	defer h.logQuery("exec", query, args, time.Now())
	return h.ext.ExecContext(h.ctx, query, args...)
}

func (h handle) Query(query string, args ...any) (*sql.Rows, error) {
	defer h.logQuery("query", query, args, time.Now())
	return h.ext.QueryContext(h.ctx, query, args...)
}

func (h handle) Queryx(query string, args ...any) (*sqlx.Rows, error) {
	defer h.logQuery("query", query, args, time.Now())
	return h.ext.QueryxContext(h.ctx, query, args...)
}

func (h handle) QueryRowx(query string, args ...any) *sqlx.Row {
	defer h.logQuery("query_row", query, args, time.Now())
	return h.ext.QueryRowxContext(h.ctx, query, args...)
}

func (h handle) BindNamed(query string, arg any) (string, []any, error) {
	return h.ext.BindNamed(query, arg)
}

func (h handle) Rebind(query string) string {
	return h.ext.Rebind(query)
}

func (h handle) DriverName() string {
	return h.ext.DriverName()
}

var _ sqlx.Ext = handle{}
