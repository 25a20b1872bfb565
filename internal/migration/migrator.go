package migration

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/go-sql-driver/mysql"
	"github.com/pressly/goose/v3"
	"github.com/uptrace/bun"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/orderbook/internal/config"
	"github.com/Additional-Code/orderbook/internal/database"
)

const (
	migrationsRoot = "sql"

	// OrderNumberIndex is created only when DB_INDEX_ORDER_NUMBER is set.
	OrderNumberIndex = "idx_orders_order_number"

	mysqlDuplicateKeyName = 1061
)

//go:embed sql
var migrationsFS embed.FS

// goose keeps dialect and filesystem in package globals.
var gooseMu sync.Mutex

// Module provides the migrator to Fx.
var Module = fx.Provide(New)

// Migrator wraps goose operations.
type Migrator struct {
	db               *bun.DB
	dialect          string
	indexOrderNumber bool
	logger           *zap.Logger
}

// New constructs a goose-backed migrator on the writer connection.
func New(cfg config.Config, conns *database.Connections, logger *zap.Logger) (*Migrator, error) {
	return NewMigrator(conns.Writer, cfg.Database.Driver, cfg.Database.IndexOrderNumber, logger)
}

// NewMigrator builds a migrator for an already opened database.
func NewMigrator(db *bun.DB, driver string, indexOrderNumber bool, logger *zap.Logger) (*Migrator, error) {
	dialect, err := gooseDialect(driver)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Migrator{
		db:               db,
		dialect:          dialect,
		indexOrderNumber: indexOrderNumber,
		logger:           logger,
	}, nil
}

// Up applies all pending migrations, then the optional order number index.
func (m *Migrator) Up(ctx context.Context) error {
	err := m.withGoose(func(dir string) error {
		return goose.UpContext(ctx, m.db.DB, dir)
	})
	switch {
	case isNoMigrationErr(err):
		m.logger.Info("no migrations to apply")
	case err != nil:
		return err
	default:
		m.logger.Info("migrations applied")
	}

	if !m.indexOrderNumber {
		return nil
	}
	return m.createOrderNumberIndex(ctx)
}

// Down rolls back migrations. Steps <=0 defaults to 1; all=true rolls everything back.
func (m *Migrator) Down(ctx context.Context, steps int, all bool) error {
	if all {
		err := m.withGoose(func(dir string) error {
			return goose.DownToContext(ctx, m.db.DB, dir, 0)
		})
		if isNoMigrationErr(err) {
			m.logger.Info("no migrations to rollback")
			return nil
		}
		if err != nil {
			return err
		}
		m.logger.Info("migrations rolled back", zap.String("mode", "all"))
		return nil
	}

	if steps <= 0 {
		steps = 1
	}

	for i := 0; i < steps; i++ {
		err := m.withGoose(func(dir string) error {
			return goose.DownContext(ctx, m.db.DB, dir)
		})
		if isNoMigrationErr(err) {
			m.logger.Info("no migrations to rollback")
			return nil
		}
		if err != nil {
			return err
		}
	}

	m.logger.Info("migrations rolled back", zap.Int("steps", steps))
	return nil
}

// createOrderNumberIndex trades write cost for indexed order number lookups.
// It changes the latency profile of FindByOrderNumber, UpdateByOrderNumber
// and the aggregate endpoints, so it is opt-in.
func (m *Migrator) createOrderNumberIndex(ctx context.Context) error {
	q := m.db.NewCreateIndex().
		Table("orders").
		Index(OrderNumberIndex).
		Column("order_number")
	if m.dialect != "mysql" {
		q = q.IfNotExists()
	}

	_, err := q.Exec(ctx)
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == mysqlDuplicateKeyName {
		err = nil
	}
	if err != nil {
		return fmt.Errorf("create %s: %w", OrderNumberIndex, err)
	}

	m.logger.Warn("order number index enabled; order number lookups no longer scan the full table",
		zap.String("index", OrderNumberIndex),
	)
	return nil
}

func (m *Migrator) withGoose(fn func(dir string) error) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(gooseLogger{logger: m.logger})
	if err := goose.SetDialect(m.dialect); err != nil {
		return err
	}
	return fn(path.Join(migrationsRoot, m.dialect))
}

func gooseDialect(driver string) (string, error) {
	switch driver {
	case "postgres", "pg":
		return "postgres", nil
	case "mysql":
		return "mysql", nil
	case "sqlite", "sqlite3":
		return "sqlite3", nil
	default:
		return "", fmt.Errorf("unsupported goose dialect for driver %s", driver)
	}
}

func isNoMigrationErr(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, goose.ErrNoNextVersion) || errors.Is(err, goose.ErrNoMigrationFiles) {
		return true
	}

	return strings.Contains(err.Error(), "no migrations")
}

type gooseLogger struct {
	logger *zap.Logger
}

func (g gooseLogger) Printf(format string, v ...interface{}) {
	g.logger.Sugar().Debugf(strings.TrimSpace(format), v...)
}

func (g gooseLogger) Fatalf(format string, v ...interface{}) {
	g.logger.Sugar().Errorf(strings.TrimSpace(format), v...)
}
