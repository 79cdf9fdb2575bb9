package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"InsightsDashboard/internal/domain"
	"InsightsDashboard/internal/ports"
)

// DefaultTable holds the insight records when no table is configured.
const DefaultTable = "insights"

const insertBatchSize = 500

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// PostgresRepository reads and bulk-loads records in Postgres.
type PostgresRepository struct {
	db    *sql.DB
	table string
}

var (
	_ ports.RecordRepository = (*PostgresRepository)(nil)
	_ ports.RecordWriter     = (*PostgresRepository)(nil)
)

// NewPostgresRepository wires a sql.DB implementation.
func NewPostgresRepository(db *sql.DB, table string) *PostgresRepository {
	if table == "" {
		table = DefaultTable
	}
	return &PostgresRepository{db: db, table: table}
}

// OpenPostgres opens and pings a lib/pq connection pool.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// EnsureSchema creates the records table and the filter indexes when missing.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if r.db == nil {
		return nil
	}

	for _, stmt := range schemaStatements(r.table) {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// Find selects every row matching the predicate in insertion order.
func (r *PostgresRepository) Find(ctx context.Context, predicate domain.Predicate) ([]domain.Record, error) {
	if r.db == nil {
		return []domain.Record{}, nil
	}

	query, args, err := buildFindQuery(r.table, predicate)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}

	result := make([]domain.Record, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan record: %w", err)
		}
		result = append(result, rec)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("rows iteration: %w", rowsErr)
	}

	if closeErr := rows.Close(); closeErr != nil {
		return nil, fmt.Errorf("close rows: %w", closeErr)
	}

	return result, nil
}

// Insert writes records in batches inside one transaction.
func (r *PostgresRepository) Insert(ctx context.Context, records []domain.Record) (int, error) {
	if r.db == nil || len(records) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin insert: %w", err)
	}

	inserted := 0
	for start := 0; start < len(records); start += insertBatchSize {
		end := start + insertBatchSize
		if end > len(records) {
			end = len(records)
		}

		query, args, err := buildInsertQuery(r.table, records[start:end])
		if err != nil {
			_ = tx.Rollback()
			return 0, err
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("insert records: %w", err)
		}
		inserted += end - start
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit insert: %w", err)
	}
	return inserted, nil
}

func columnNames() []string {
	cols := make([]string, 0, len(domain.RecordFields))
	for _, f := range domain.RecordFields {
		cols = append(cols, string(f))
	}
	return cols
}

func buildFindQuery(table string, predicate domain.Predicate) (string, []interface{}, error) {
	where := sq.And{}
	for _, field := range predicate.Fields() {
		where = append(where, clause(field, predicate[field]))
	}

	q := psql.Select(columnNames()...).From(pq.QuoteIdentifier(table)).OrderBy("id")
	if len(where) > 0 {
		q = q.Where(where)
	}

	query, args, err := q.ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("build find query: %w", err)
	}
	return query, args, nil
}

func clause(field domain.Field, m domain.Matcher) sq.Sqlizer {
	col := string(field)
	switch m.Kind {
	case domain.MatchText:
		return sq.Eq{col: m.Text}
	case domain.MatchYear:
		return sq.Eq{col: m.Year}
	case domain.MatchAny:
		return sq.Eq{col: m.Values}
	default:
		return sq.Expr("1 = 0")
	}
}

func buildInsertQuery(table string, records []domain.Record) (string, []interface{}, error) {
	q := psql.Insert(pq.QuoteIdentifier(table)).Columns(columnNames()...)
	for _, rec := range records {
		var endYear interface{}
		if rec.EndYear != nil {
			endYear = *rec.EndYear
		}
		q = q.Values(
			endYear, rec.Intensity, rec.Sector, rec.Topic, rec.Insight, rec.URL,
			rec.Region, rec.StartYear, rec.Impact, rec.Added, rec.Published, rec.Country,
			rec.Relevance, rec.Pestle, rec.Source, rec.Title, rec.Likelihood,
		)
	}

	query, args, err := q.ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("build insert query: %w", err)
	}
	return query, args, nil
}

func scanRecord(rows *sql.Rows) (domain.Record, error) {
	var (
		rec     domain.Record
		endYear sql.NullInt64
	)
	err := rows.Scan(
		&endYear, &rec.Intensity, &rec.Sector, &rec.Topic, &rec.Insight, &rec.URL,
		&rec.Region, &rec.StartYear, &rec.Impact, &rec.Added, &rec.Published, &rec.Country,
		&rec.Relevance, &rec.Pestle, &rec.Source, &rec.Title, &rec.Likelihood,
	)
	if err != nil {
		return domain.Record{}, err
	}
	if endYear.Valid {
		y := int(endYear.Int64)
		rec.EndYear = &y
	}
	return rec, nil
}

func schemaStatements(table string) []string {
	name := pq.QuoteIdentifier(table)
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS ` + name + ` (
              id          BIGSERIAL PRIMARY KEY,
              end_year    INTEGER,
              intensity   INTEGER NOT NULL DEFAULT 0,
              sector      TEXT NOT NULL DEFAULT '',
              topic       TEXT NOT NULL DEFAULT '',
              insight     TEXT NOT NULL DEFAULT '',
              url         TEXT NOT NULL DEFAULT '',
              region      TEXT NOT NULL DEFAULT '',
              start_year  TEXT NOT NULL DEFAULT '',
              impact      TEXT NOT NULL DEFAULT '',
              added       TEXT NOT NULL DEFAULT '',
              published   TEXT NOT NULL DEFAULT '',
              country     TEXT NOT NULL DEFAULT '',
              relevance   INTEGER NOT NULL DEFAULT 0,
              pestle      TEXT NOT NULL DEFAULT '',
              source      TEXT NOT NULL DEFAULT '',
              title       TEXT NOT NULL DEFAULT '',
              likelihood  INTEGER NOT NULL DEFAULT 0
          )`,
	}
	for _, f := range domain.FilterableFields {
		index := pq.QuoteIdentifier(strings.Join([]string{table, string(f), "idx"}, "_"))
		stmts = append(stmts, `CREATE INDEX IF NOT EXISTS `+index+` ON `+name+` (`+string(f)+`)`)
	}
	return stmts
}
