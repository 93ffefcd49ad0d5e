package graph

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	jsoniter "github.com/json-iterator/go"
	_ "modernc.org/sqlite"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DefaultBatchSize is the number of writes grouped into one transaction
const DefaultBatchSize = 10_000

// SQLiteStore stores nodes in a SQLite database.
// Writes are grouped into transactions of batchSize; reads see uncommitted writes of the batch.
type SQLiteStore struct {
	db        *sql.DB
	tx        *sql.Tx
	batchSize int
	pending   int
	closed    bool
}

// OpenSQLite opens (or creates) the database at path
func OpenSQLite(ctx context.Context, path string, batchSize int) (*SQLiteStore, error) {
	if path == "" {
		return nil, errors.New("sqlite store path is required")
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One writer; a single connection also keeps the open transaction visible to reads
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	var journalMode string
	if err := db.QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&journalMode); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to check journal mode: %w", err)
	}
	if journalMode != "wal" && journalMode != "memory" {
		_ = db.Close()
		return nil, fmt.Errorf("unexpected journal mode: got %s", journalMode)
	}

	store := &SQLiteStore{db: db, batchSize: batchSize}
	if err := store.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates the node and relationship tables if they don't exist.
// Relationships are never written by the loader; the table exists so that
// node updates can be shown to leave them alone.
func (s *SQLiteStore) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS nodes (
		id INTEGER PRIMARY KEY,
		label TEXT NOT NULL,
		properties TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_nodes_label ON nodes(label);

	CREATE TABLE IF NOT EXISTS relationships (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		start_id INTEGER NOT NULL,
		end_id INTEGER NOT NULL,
		type TEXT NOT NULL,
		properties TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_relationships_start ON relationships(start_id);
	CREATE INDEX IF NOT EXISTS idx_relationships_end ON relationships(end_id);
	`

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// NodeExists reports whether a node with key exists
func (s *SQLiteStore) NodeExists(ctx context.Context, key int64) (bool, error) {
	tx, err := s.transaction(ctx)
	if err != nil {
		return false, err
	}

	var one int
	err = tx.QueryRowContext(ctx, "SELECT 1 FROM nodes WHERE id = ?", key).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check node %d: %w", key, err)
	}
	return true, nil
}

// CreateNode inserts a new node
func (s *SQLiteStore) CreateNode(ctx context.Context, key int64, props map[string]any, label string) error {
	data, err := json.Marshal(props)
	if err != nil {
		return fmt.Errorf("failed to marshal properties of node %d: %w", key, err)
	}

	tx, err := s.transaction(ctx)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, "INSERT INTO nodes (id, label, properties) VALUES (?, ?, ?)", key, label, string(data))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("%w: %d", ErrNodeExists, key)
		}
		return fmt.Errorf("failed to create node %d: %w", key, err)
	}

	return s.written(ctx)
}

// SetNodeProperties replaces the property set of an existing node
func (s *SQLiteStore) SetNodeProperties(ctx context.Context, key int64, props map[string]any) error {
	data, err := json.Marshal(props)
	if err != nil {
		return fmt.Errorf("failed to marshal properties of node %d: %w", key, err)
	}

	tx, err := s.transaction(ctx)
	if err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx, "UPDATE nodes SET properties = ? WHERE id = ?", string(data), key)
	if err != nil {
		return fmt.Errorf("failed to update node %d: %w", key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update node %d: %w", key, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %d", ErrNodeNotFound, key)
	}

	return s.written(ctx)
}

// Node reads a node back
func (s *SQLiteStore) Node(ctx context.Context, key int64) (*Node, error) {
	tx, err := s.transaction(ctx)
	if err != nil {
		return nil, err
	}

	var label, data string
	err = tx.QueryRowContext(ctx, "SELECT label, properties FROM nodes WHERE id = ?", key).Scan(&label, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrNodeNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read node %d: %w", key, err)
	}

	node := &Node{Key: key, Label: label}
	if err := json.Unmarshal([]byte(data), &node.Properties); err != nil {
		return nil, fmt.Errorf("failed to unmarshal properties of node %d: %w", key, err)
	}
	return node, nil
}

// CountNodes returns the number of stored nodes
func (s *SQLiteStore) CountNodes(ctx context.Context) (int64, error) {
	tx, err := s.transaction(ctx)
	if err != nil {
		return 0, err
	}

	var n int64
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM nodes").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count nodes: %w", err)
	}
	return n, nil
}

// Close commits pending writes and closes the database
func (s *SQLiteStore) Close() error {
	if s.closed {
		return ErrClosed
	}
	s.closed = true

	var commitErr error
	if s.tx != nil {
		commitErr = s.tx.Commit()
		s.tx = nil
	}
	closeErr := s.db.Close()

	if commitErr != nil {
		return fmt.Errorf("failed to commit final batch: %w", commitErr)
	}
	if closeErr != nil {
		return fmt.Errorf("failed to close database: %w", closeErr)
	}
	return nil
}

// transaction returns the open batch transaction, starting one if needed
func (s *SQLiteStore) transaction(ctx context.Context) (*sql.Tx, error) {
	if s.closed {
		return nil, ErrClosed
	}
	if s.tx != nil {
		return s.tx, nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	s.tx = tx
	return tx, nil
}

// written counts a write and commits the batch once it is full
func (s *SQLiteStore) written(ctx context.Context) error {
	s.pending++
	if s.pending < s.batchSize {
		return nil
	}
	return s.Flush(ctx)
}

// Flush commits the current batch
func (s *SQLiteStore) Flush(ctx context.Context) error {
	if s.closed {
		return ErrClosed
	}
	s.pending = 0
	if s.tx == nil {
		return nil
	}
	tx := s.tx
	s.tx = nil
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}
	return nil
}
