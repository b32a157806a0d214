package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gocraft/dbr/v2"
	"github.com/gocraft/dbr/v2/dialect"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/lib/pq"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

const (
	DriverPostgres = "postgres"
	DriverPgx      = "pgx"
	DriverSQLite   = "sqlite"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

// Scope limits queries to one owner unless AllOwners is set.
type Scope struct {
	OwnerID   int64
	AllOwners bool
}

func OwnedBy(ownerID int64) Scope {
	return Scope{OwnerID: ownerID}
}

type Store struct {
	conn   *dbr.Connection
	sess   dbr.SessionRunner
	driver string
	logger *zap.Logger
}

func New(driver, dsn string, logger *zap.Logger) (*Store, error) {
	var d dbr.Dialect
	switch driver {
	case DriverPostgres, DriverPgx:
		d = dialect.PostgreSQL
	case DriverSQLite:
		d = dialect.SQLite3
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// set up connection pool
	if driver == DriverSQLite {
		// a single connection keeps in-memory databases shared and
		// serializes writers
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	conn := &dbr.Connection{
		DB:            db,
		Dialect:       d,
		EventReceiver: &eventReceiver{logger: logger},
	}

	// check connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := conn.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("successfully connected to database", zap.String("driver", driver))

	return &Store{
		conn:   conn,
		sess:   conn.NewSession(nil),
		driver: driver,
		logger: logger,
	}, nil
}

func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.conn.PingContext(ctx)
}

func (s *Store) Driver() string {
	return s.driver
}

// WithTx runs fn against a store bound to one transaction. The transaction
// commits when fn returns nil and rolls back otherwise.
func (s *Store) WithTx(ctx context.Context, fn func(tx *Store) error) error {
	sess, ok := s.sess.(*dbr.Session)
	if !ok {
		// already inside a transaction
		return fn(s)
	}

	opts := &sql.TxOptions{Isolation: sql.LevelReadCommitted}
	if s.driver == DriverSQLite {
		opts = nil
	}

	tx, err := sess.BeginTx(ctx, opts)
	if err != nil {
		s.logger.Error("failed to begin transaction", zap.Error(err))
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.RollbackUnlessCommitted()

	if err := fn(&Store{conn: s.conn, sess: tx, driver: s.driver, logger: s.logger}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("failed to commit transaction", zap.Error(err))
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// scoped adds the owner restriction of sc to b.
func scoped(b *dbr.SelectBuilder, column string, sc Scope) *dbr.SelectBuilder {
	if sc.AllOwners {
		return b
	}
	return b.Where(column+" = ?", sc.OwnerID)
}

func isDuplicate(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}

	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// likePattern escapes q for a "LIKE ? ESCAPE '!'" match anywhere in the
// column.
func likePattern(q string) string {
	r := strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")
	return "%" + strings.ToLower(r.Replace(q)) + "%"
}
