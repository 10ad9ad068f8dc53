// Package postgres: репозиторий пользователей и резюме на pgxpool + squirrel,
// схема накатывается embedded-миграциями golang-migrate.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/EgorLis/resume-builder/internal/domain"
)

// ---- Postgres репозиторий (pgxpool) + golang-migrate ----

type PGRepo struct {
	logger *zap.Logger
	pool   *pgxpool.Pool
	schema string
}

var (
	_ domain.UsersRepo   = (*PGRepo)(nil)
	_ domain.ResumesRepo = (*PGRepo)(nil)
)

// NewPGRepo накатывает миграции в schema и открывает пул.
// dsn не должен содержать search_path: его задаёт репозиторий.
func NewPGRepo(ctx context.Context, logger *zap.Logger, dsn, schema string) (*PGRepo, error) {
	if schema == "" {
		schema = "public"
	}
	dsn = withSearchPath(dsn, schema)

	if err := runMigrations(ctx, dsn, schema, logger); err != nil {
		return nil, fmt.Errorf("migrations: %w", err)
	}

	logger.Info("initializing pgxpool")
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open pool: %w", err)
	}
	logger.Info("pgxpool initialized", zap.Int32("max_conns", cfg.MaxConns))

	return &PGRepo{pool: pool, schema: schema, logger: logger}, nil
}

func (r *PGRepo) Close() {
	r.logger.Info("closing pgxpool")
	r.pool.Close()
	r.logger.Info("pgxpool closed")
}

// ---- Миграции через golang-migrate ----

//go:embed migrations/*.sql
var EmbeddedMigrations embed.FS

func runMigrations(ctx context.Context, dsn, schema string, logger *zap.Logger) error {
	// Открываем *sql.DB с помощью pgx stdlib. Важно: это отдельный экземпляр от pgxpool.
	sqldb, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("sql.Open pgx: %w", err)
	}
	defer sqldb.Close()

	if _, err := sqldb.ExecContext(ctx, "CREATE SCHEMA IF NOT EXISTS "+pgx.Identifier{schema}.Sanitize()); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	driver, err := postgres.WithInstance(sqldb, &postgres.Config{SchemaName: schema})
	if err != nil {
		return fmt.Errorf("postgres driver: %w", err)
	}

	src, err := iofs.New(EmbeddedMigrations, "migrations")
	if err != nil {
		return fmt.Errorf("iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return fmt.Errorf("migrate.New: %w", err)
	}
	defer m.Close()

	logger.Info("applying migrations", zap.String("schema", schema))
	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("no new migrations to apply")
			return nil
		}
		return fmt.Errorf("apply migrations: %w", err)
	}
	logger.Info("migrations applied successfully")
	return nil
}

// ---- Реализация репозитория ----

func (r *PGRepo) Ping(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		r.logger.Warn("ping failed", zap.Error(err))
		return err
	}
	return nil
}

func (r *PGRepo) qb() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
}

func (r *PGRepo) table(name string) string {
	return pgx.Identifier{r.schema, name}.Sanitize()
}

func (r *PGRepo) logSQL(op, sqlStr string, args []any) {
	r.logger.Debug("sql", zap.String("op", op), zap.String("query", sqlStr), zap.Int("args", len(args)))
}

// done логирует длительность запроса и переводит ошибки драйвера в доменные.
func (r *PGRepo) done(op string, start time.Time, err error) error {
	if err == nil {
		r.logger.Debug("sql ok", zap.String("op", op), zap.Duration("took", time.Since(start)))
		return nil
	}
	mapped := mapErr(err)
	if errors.Is(mapped, domain.ErrNotFound) {
		r.logger.Debug("sql no rows", zap.String("op", op), zap.Duration("took", time.Since(start)))
	} else {
		r.logger.Error("sql failed", zap.String("op", op), zap.Duration("took", time.Since(start)), zap.Error(err))
	}
	return mapped
}

const pgUniqueViolation = "23505"

func mapErr(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return fmt.Errorf("%s: %w", pgErr.ConstraintName, domain.ErrConflict)
	}
	return err
}

func withSearchPath(dsn, schema string) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "search_path=" + schema
}
