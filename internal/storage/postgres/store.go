package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/vladislavdragonenkov/shopcore/internal/domain"
)

const (
	opTimeout              = 5 * time.Second
	defaultConnTimeout     = 5 * time.Second
	defaultMaxOpenConns    = 25
	defaultMaxIdleConns    = 25
	defaultConnMaxLifetime = 30 * time.Minute
	defaultConnMaxIdleTime = 5 * time.Minute
)

// querier объединяет *sql.DB и *sql.Tx: репозитории не знают,
// работают ли они в autocommit-режиме или внутри транзакции.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// session — общее состояние репозитория: исполнитель запросов и режим.
// Внутри транзакции чтения остатков блокируют строки (FOR UPDATE),
// делая последовательность «проверить, затем списать» атомарной.
type session struct {
	q       querier
	baseCtx context.Context // nil в autocommit-режиме
	locking bool
}

func (s session) opCtx() (context.Context, context.CancelFunc) {
	base := s.baseCtx
	if base == nil {
		base = context.Background()
	}
	return context.WithTimeout(base, opTimeout)
}

// Store оборачивает SQL-подключение к PostgreSQL и реализует domain.Store.
type Store struct {
	db *sql.DB
}

// Open открывает подключение к PostgreSQL и проверяет доступность базы.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres connection: %w", err)
	}
	db.SetMaxOpenConns(defaultMaxOpenConns)
	db.SetMaxIdleConns(defaultMaxIdleConns)
	db.SetConnMaxLifetime(defaultConnMaxLifetime)
	db.SetConnMaxIdleTime(defaultConnMaxIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, defaultConnTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &Store{db: db}, nil
}

// DB возвращает raw SQL DB, когда нужен низкоуровневый доступ.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Ping проверяет доступность подключения.
func (s *Store) Ping(ctx context.Context) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("postgres store is not initialized")
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultConnTimeout)
	defer cancel()
	return s.db.PingContext(pingCtx)
}

// EnsureSchema применяет все up-миграции.
func (s *Store) EnsureSchema(ctx context.Context) error {
	return s.MigrateUp(ctx, 0)
}

// Close закрывает подключение к БД.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// WithinTx выполняет fn в одной SQL-транзакции: ошибка из fn откатывает
// все записи; конкурентные конфликты возвращаются вызывающему как есть.
func (s *Store) WithinTx(ctx context.Context, fn func(tx domain.Tx) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	t := &pgTx{sess: session{q: sqlTx, baseCtx: ctx, locking: true}}
	if err := fn(t); err != nil {
		_ = sqlTx.Rollback()
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (s *Store) autocommit() session {
	return session{q: s.db}
}

func (s *Store) Orders() domain.OrderRepository {
	return &orderRepository{sess: s.autocommit()}
}

func (s *Store) Inventory() domain.InventoryRepository {
	return &inventoryRepository{sess: s.autocommit()}
}

func (s *Store) Returns() domain.ReturnRepository {
	return &returnRepository{sess: s.autocommit()}
}

func (s *Store) Notifications() domain.NotificationRepository {
	return &notificationRepository{sess: s.autocommit()}
}

func (s *Store) Customers() domain.CustomerDirectory {
	return &customerDirectory{sess: s.autocommit()}
}

func (s *Store) Catalog() domain.ProductCatalog {
	return &productCatalog{sess: s.autocommit()}
}

// pgTx — domain.Tx поверх одной открытой SQL-транзакции.
type pgTx struct {
	sess session
}

func (t *pgTx) Orders() domain.OrderRepository {
	return &orderRepository{sess: t.sess}
}

func (t *pgTx) Inventory() domain.InventoryRepository {
	return &inventoryRepository{sess: t.sess}
}

func (t *pgTx) Returns() domain.ReturnRepository {
	return &returnRepository{sess: t.sess}
}

func (t *pgTx) Notifications() domain.NotificationRepository {
	return &notificationRepository{sess: t.sess}
}

func (t *pgTx) Customers() domain.CustomerDirectory {
	return &customerDirectory{sess: t.sess}
}

func (t *pgTx) Catalog() domain.ProductCatalog {
	return &productCatalog{sess: t.sess}
}

var (
	_ domain.Store = (*Store)(nil)
	_ domain.Tx    = (*pgTx)(nil)
)
