package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/docent-labs/docent-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/docent-labs/docent-cli/internal/core/domain"
	"github.com/docent-labs/docent-cli/internal/core/ports/driven"
)

// Settings keys.
const (
	settingActiveChat = "active_chat_id"
	settingModel      = "model_selection"
)

// Store is a unified SQLite-based storage that provides access to
// all persistence interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.docent/data/docent.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".docent", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "docent.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// ChatStore returns a ChatStore interface backed by this store.
func (s *Store) ChatStore() driven.ChatStore {
	return &chatStore{store: s}
}

// EditStore returns an EditStore interface backed by this store.
func (s *Store) EditStore() driven.EditStore {
	return &editStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(
			"INSERT INTO schema_migrations (version) VALUES (?)", version,
		); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Chat Store ====================

// chatStore implements driven.ChatStore.
type chatStore struct {
	store *Store
}

var _ driven.ChatStore = (*chatStore)(nil)

// SaveChat stores or replaces a chat with all its messages in one
// transaction.
func (s *chatStore) SaveChat(ctx context.Context, chat *domain.Chat) error {
	if chat.ID == "" {
		return domain.ErrInvalidInput
	}

	channelsJSON, err := json.Marshal(chat.Channels)
	if err != nil {
		return fmt.Errorf("marshalling channels: %w", err)
	}
	groundingJSON, err := json.Marshal(chat.Grounding)
	if err != nil {
		return fmt.Errorf("marshalling grounding: %w", err)
	}

	now := time.Now().UTC()
	if chat.CreatedAt.IsZero() {
		chat.CreatedAt = now
	}
	chat.UpdatedAt = now

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx, `
		INSERT INTO chats (id, title, channels, grounding, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			channels = excluded.channels,
			grounding = excluded.grounding,
			updated_at = excluded.updated_at
	`, chat.ID, chat.Title, string(channelsJSON), string(groundingJSON),
		chat.CreatedAt, chat.UpdatedAt)
	if err != nil {
		return fmt.Errorf("saving chat: %w", err)
	}

	// Replace the message set wholesale; the chat record is the unit of
	// persistence.
	if _, err := tx.ExecContext(ctx, "DELETE FROM messages WHERE chat_id = ?", chat.ID); err != nil {
		return fmt.Errorf("clearing messages: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO messages (id, chat_id, position, role, content, context, citations, suggestion, err, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for i, msg := range chat.Messages {
		contextJSON, err := marshalNullable(msg.Context)
		if err != nil {
			return fmt.Errorf("marshalling context: %w", err)
		}
		citationsJSON, err := marshalNullable(msg.Citations)
		if err != nil {
			return fmt.Errorf("marshalling citations: %w", err)
		}
		suggestionJSON, err := marshalNullable(msg.Suggestion)
		if err != nil {
			return fmt.Errorf("marshalling suggestion: %w", err)
		}

		if _, err := stmt.ExecContext(ctx, msg.ID, chat.ID, i, string(msg.Role),
			msg.Content, contextJSON, citationsJSON, suggestionJSON,
			msg.Err, msg.CreatedAt); err != nil {
			return fmt.Errorf("saving message: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// GetChat retrieves a chat by ID, with messages in order.
func (s *chatStore) GetChat(ctx context.Context, id string) (*domain.Chat, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, title, channels, grounding, created_at, updated_at
		FROM chats WHERE id = ?
	`, id)

	chat, err := scanChat(row)
	if err != nil {
		return nil, err
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, role, content, context, citations, suggestion, err, created_at
		FROM messages WHERE chat_id = ?
		ORDER BY position
	`, id)
	if err != nil {
		return nil, fmt.Errorf("querying messages: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		msg, err := scanMessage(rows, chat.ID)
		if err != nil {
			return nil, err
		}
		chat.Messages = append(chat.Messages, *msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating messages: %w", err)
	}

	return chat, nil
}

// ListChats returns all chats, most recently updated first, without
// their message bodies.
func (s *chatStore) ListChats(ctx context.Context) ([]domain.Chat, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, title, channels, grounding, created_at, updated_at
		FROM chats
		ORDER BY updated_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("querying chats: %w", err)
	}
	defer rows.Close()

	var chats []domain.Chat //nolint:prealloc // size unknown from query
	for rows.Next() {
		chat, err := scanChatRows(rows)
		if err != nil {
			return nil, err
		}
		chats = append(chats, *chat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chats: %w", err)
	}

	return chats, nil
}

// DeleteChat removes a chat and its messages.
func (s *chatStore) DeleteChat(ctx context.Context, id string) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM chats WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting chat: %w", err)
	}
	return nil
}

// ActiveChatID returns the persisted active chat pointer, or empty.
func (s *chatStore) ActiveChatID(ctx context.Context) (string, error) {
	return s.getSetting(ctx, settingActiveChat)
}

// SetActiveChatID persists the active chat pointer.
func (s *chatStore) SetActiveChatID(ctx context.Context, id string) error {
	return s.setSetting(ctx, settingActiveChat, id)
}

// ModelSelection returns the persisted model selection, or empty.
func (s *chatStore) ModelSelection(ctx context.Context) (string, error) {
	return s.getSetting(ctx, settingModel)
}

// SetModelSelection persists the model selection.
func (s *chatStore) SetModelSelection(ctx context.Context, model string) error {
	return s.setSetting(ctx, settingModel, model)
}

// Close closes the underlying database.
func (s *chatStore) Close() error {
	return s.store.Close()
}

func (s *chatStore) getSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := s.store.db.QueryRowContext(ctx,
		"SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading setting %s: %w", key, err)
	}
	return value, nil
}

func (s *chatStore) setSetting(ctx context.Context, key, value string) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("writing setting %s: %w", key, err)
	}
	return nil
}

// ==================== Edit Store ====================

// editStore implements driven.EditStore.
type editStore struct {
	store *Store
}

var _ driven.EditStore = (*editStore)(nil)

// Get retrieves the record for a file.
func (s *editStore) Get(ctx context.Context, fileID string) (*domain.EditedFile, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT file_id, path, original_content, current_content, durable, updated_at
		FROM edited_files WHERE file_id = ?
	`, fileID)

	var record domain.EditedFile
	var updatedAt sql.NullTime
	if err := row.Scan(&record.FileID, &record.Path, &record.OriginalContent,
		&record.CurrentContent, &record.Durable, &updatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning edited file: %w", err)
	}
	if updatedAt.Valid {
		record.UpdatedAt = updatedAt.Time
	}

	return &record, nil
}

// Upsert creates or updates a record. An existing record's
// original_content is never overwritten.
func (s *editStore) Upsert(ctx context.Context, record *domain.EditedFile) error {
	if record.FileID == "" {
		return domain.ErrInvalidInput
	}

	record.UpdatedAt = time.Now().UTC()

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO edited_files (file_id, path, original_content, current_content, durable, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(file_id) DO UPDATE SET
			path = excluded.path,
			current_content = excluded.current_content,
			durable = excluded.durable,
			updated_at = excluded.updated_at
	`, record.FileID, record.Path, record.OriginalContent,
		record.CurrentContent, record.Durable, record.UpdatedAt)
	if err != nil {
		return fmt.Errorf("saving edited file: %w", err)
	}
	return nil
}

// List returns all records, most recently updated first.
func (s *editStore) List(ctx context.Context) ([]domain.EditedFile, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT file_id, path, original_content, current_content, durable, updated_at
		FROM edited_files
		ORDER BY updated_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("querying edited files: %w", err)
	}
	defer rows.Close()

	var records []domain.EditedFile //nolint:prealloc // size unknown from query
	for rows.Next() {
		var record domain.EditedFile
		var updatedAt sql.NullTime
		if err := rows.Scan(&record.FileID, &record.Path, &record.OriginalContent,
			&record.CurrentContent, &record.Durable, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning edited file: %w", err)
		}
		if updatedAt.Valid {
			record.UpdatedAt = updatedAt.Time
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating edited files: %w", err)
	}

	return records, nil
}

// ==================== Helper Functions ====================

// marshalNullable marshals a value, mapping empty and nil to SQL NULL.
func marshalNullable(v any) (sql.NullString, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	str := string(raw)
	if str == "null" || str == "[]" {
		return sql.NullString{}, nil
	}
	return sql.NullString{String: str, Valid: true}, nil
}

// scanChat scans a single chat row without messages.
func scanChat(row *sql.Row) (*domain.Chat, error) {
	var chat domain.Chat
	var channelsJSON, groundingJSON string
	var createdAt, updatedAt sql.NullTime

	if err := row.Scan(&chat.ID, &chat.Title, &channelsJSON, &groundingJSON,
		&createdAt, &updatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning chat: %w", err)
	}

	return finishChat(&chat, channelsJSON, groundingJSON, createdAt, updatedAt)
}

// scanChatRows scans a chat from *sql.Rows.
func scanChatRows(rows *sql.Rows) (*domain.Chat, error) {
	var chat domain.Chat
	var channelsJSON, groundingJSON string
	var createdAt, updatedAt sql.NullTime

	if err := rows.Scan(&chat.ID, &chat.Title, &channelsJSON, &groundingJSON,
		&createdAt, &updatedAt); err != nil {
		return nil, fmt.Errorf("scanning chat: %w", err)
	}

	return finishChat(&chat, channelsJSON, groundingJSON, createdAt, updatedAt)
}

func finishChat(
	chat *domain.Chat, channelsJSON, groundingJSON string, createdAt, updatedAt sql.NullTime,
) (*domain.Chat, error) {
	if err := json.Unmarshal([]byte(channelsJSON), &chat.Channels); err != nil {
		return nil, fmt.Errorf("unmarshalling channels: %w", err)
	}
	if err := json.Unmarshal([]byte(groundingJSON), &chat.Grounding); err != nil {
		return nil, fmt.Errorf("unmarshalling grounding: %w", err)
	}
	if createdAt.Valid {
		chat.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		chat.UpdatedAt = updatedAt.Time
	}
	return chat, nil
}

// scanMessage scans a message from *sql.Rows.
func scanMessage(rows *sql.Rows, chatID string) (*domain.Message, error) {
	var msg domain.Message
	var role string
	var contextJSON, citationsJSON, suggestionJSON sql.NullString
	var createdAt sql.NullTime

	if err := rows.Scan(&msg.ID, &role, &msg.Content, &contextJSON,
		&citationsJSON, &suggestionJSON, &msg.Err, &createdAt); err != nil {
		return nil, fmt.Errorf("scanning message: %w", err)
	}

	msg.ChatID = chatID
	msg.Role = domain.MessageRole(role)
	if createdAt.Valid {
		msg.CreatedAt = createdAt.Time
	}

	if contextJSON.Valid {
		if err := json.Unmarshal([]byte(contextJSON.String), &msg.Context); err != nil {
			return nil, fmt.Errorf("unmarshalling context: %w", err)
		}
	}
	if citationsJSON.Valid {
		if err := json.Unmarshal([]byte(citationsJSON.String), &msg.Citations); err != nil {
			return nil, fmt.Errorf("unmarshalling citations: %w", err)
		}
	}
	if suggestionJSON.Valid {
		if err := json.Unmarshal([]byte(suggestionJSON.String), &msg.Suggestion); err != nil {
			return nil, fmt.Errorf("unmarshalling suggestion: %w", err)
		}
	}

	return &msg, nil
}
