package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"newswizard/internal/session"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore хранит разговоры в таблице conversation_state.
// Строки старше ttl считаются отсутствующими и удаляются Sweep.
type PostgresStore struct {
	pool *pgxpool.Pool
	ttl  time.Duration
	log  *slog.Logger
}

func NewPostgresStore(pool *pgxpool.Pool, ttl time.Duration, log *slog.Logger) *PostgresStore {
	log.Info("Initializing Postgres conversation storage")
	return &PostgresStore{
		pool: pool,
		ttl:  ttl,
		log:  log.With(slog.String("component", "postgres-store")),
	}
}

func (db *PostgresStore) Close() {
	db.log.Info("Closing database connection pool")
	db.pool.Close()
}

func (db *PostgresStore) Load(ctx context.Context, conversationID string) (session.Map, error) {
	const op = "storage.postgres.Load"
	log := db.log.With(slog.String("op", op), slog.String("conversation_id", conversationID))
	query := `
	SELECT attributes
	FROM conversation_state
	WHERE conversation_id = $1
	AND ($2::bigint = 0 OR updated_at > now() - make_interval(secs => $2::bigint));
	`
	var raw []byte
	err := db.pool.QueryRow(ctx, query, conversationID, int64(db.ttl.Seconds())).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return session.Map{}, nil
	}
	if err != nil {
		log.Error("Database query failed", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to execute query: %w", op, err)
	}
	attrs := session.Map{}
	if err := json.Unmarshal(raw, &attrs); err != nil {
		return nil, fmt.Errorf("%s: failed to decode attributes: %w", op, err)
	}
	return attrs, nil
}

func (db *PostgresStore) Save(ctx context.Context, conversationID string, attrs session.Map) error {
	const op = "storage.postgres.Save"
	raw, err := json.Marshal(attrs)
	if err != nil {
		return fmt.Errorf("%s: failed to encode attributes: %w", op, err)
	}
	query := `
	INSERT INTO conversation_state (conversation_id, attributes, updated_at)
	VALUES ($1, $2, now())
	ON CONFLICT (conversation_id) DO UPDATE
	SET attributes = EXCLUDED.attributes, updated_at = EXCLUDED.updated_at;
	`
	if _, err := db.pool.Exec(ctx, query, conversationID, raw); err != nil {
		db.log.Error("Failed to save conversation", slog.String("op", op), slog.Any("error", err))
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (db *PostgresStore) Delete(ctx context.Context, conversationID string) error {
	const op = "storage.postgres.Delete"
	if _, err := db.pool.Exec(ctx, `DELETE FROM conversation_state WHERE conversation_id = $1;`, conversationID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Sweep удаляет разговоры, не обновлявшиеся дольше ttl.
func (db *PostgresStore) Sweep(ctx context.Context) (int, error) {
	const op = "storage.postgres.Sweep"
	if db.ttl <= 0 {
		return 0, nil
	}
	tag, err := db.pool.Exec(ctx, `
	DELETE FROM conversation_state
	WHERE updated_at < now() - make_interval(secs => $1::bigint);
	`, int64(db.ttl.Seconds()))
	if err != nil {
		db.log.Error("Failed to sweep conversations", slog.String("op", op), slog.Any("error", err))
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(tag.RowsAffected()), nil
}
