// Package session persists conversations to a local SQLite database.
package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/example/ghostcanvas/internal/chat"
)

// DefaultTitle marks a session that has not received its first user
// message yet. AppendTurn replaces it with a snippet of that message.
const DefaultTitle = "New Chat"

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE IF NOT EXISTS messages (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id INTEGER,
	role TEXT,
	content TEXT,
	image_path TEXT,
	file_paths TEXT,
	timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY(session_id) REFERENCES sessions(id)
);
`

// Store wraps the conversation database. Safe for use from multiple
// goroutines; database/sql serializes access.
type Store struct {
	db *sql.DB
}

// Session is one sidebar entry.
type Session struct {
	ID        int64
	Title     string
	CreatedAt time.Time
}

// Message is one persisted turn with its attachment metadata.
type Message struct {
	Role      string
	Text      string
	ImagePath string
	FilePaths []string
}

// Open opens or creates the database at path and applies the schema.
// Use ":memory:" for an ephemeral store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open session db: %w", err)
	}
	pragmas := []string{
		"PRAGMA foreign_keys=ON",
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=10000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("set pragma: %w", err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Create starts a new empty session and returns its id.
func (s *Store) Create(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, "INSERT INTO sessions (title) VALUES (?)", DefaultTitle)
	if err != nil {
		return 0, fmt.Errorf("create session: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("create session: %w", err)
	}
	return id, nil
}

// Sessions lists all sessions, newest first.
func (s *Store) Sessions(ctx context.Context) ([]Session, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, title, created_at FROM sessions ORDER BY id DESC")
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		var sess Session
		var created string
		if err := rows.Scan(&sess.ID, &sess.Title, &created); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		// CURRENT_TIMESTAMP stores "2006-01-02 15:04:05" text
		if ts, err := time.Parse("2006-01-02 15:04:05", created); err == nil {
			sess.CreatedAt = ts
		}
		out = append(out, sess)
	}
	return out, rows.Err()
}

// Delete removes a session and its messages.
func (s *Store) Delete(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM messages WHERE session_id=?", id); err != nil {
		return fmt.Errorf("delete messages: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM sessions WHERE id=?", id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return tx.Commit()
}

// AppendTurn stores one turn. The first user message also names the session:
// a still-default title becomes the message text truncated to 30 characters.
func (s *Store) AppendTurn(ctx context.Context, sessionID int64, turn chat.Turn, filePaths []string) error {
	var imagePath sql.NullString
	if len(turn.Images) > 0 {
		imagePath = sql.NullString{String: turn.Images[0], Valid: true}
	}
	var filesJSON sql.NullString
	if len(filePaths) > 0 {
		b, err := json.Marshal(filePaths)
		if err != nil {
			return fmt.Errorf("encode file paths: %w", err)
		}
		filesJSON = sql.NullString{String: string(b), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO messages (session_id, role, content, image_path, file_paths)
		VALUES (?, ?, ?, ?, ?)`,
		sessionID, string(turn.Role), turn.Text, imagePath, filesJSON)
	if err != nil {
		return fmt.Errorf("append turn: %w", err)
	}

	if turn.Role == chat.RoleUser {
		if err := s.maybeTitle(ctx, sessionID, turn.Text); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) maybeTitle(ctx context.Context, sessionID int64, content string) error {
	var current string
	err := s.db.QueryRowContext(ctx,
		"SELECT title FROM sessions WHERE id=?", sessionID).Scan(&current)
	if err != nil {
		return fmt.Errorf("read title: %w", err)
	}
	if current != DefaultTitle {
		return nil
	}
	_, err = s.db.ExecContext(ctx,
		"UPDATE sessions SET title=? WHERE id=?", truncateTitle(content), sessionID)
	if err != nil {
		return fmt.Errorf("update title: %w", err)
	}
	return nil
}

func truncateTitle(content string) string {
	runes := []rune(content)
	if len(runes) <= 30 {
		return content
	}
	return string(runes[:30]) + ".."
}

// Messages returns all turns of a session in insertion order.
func (s *Store) Messages(ctx context.Context, sessionID int64) ([]Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT role, content, image_path, file_paths
		FROM messages WHERE session_id=? ORDER BY id ASC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load messages: %w", err)
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var m Message
		var imagePath, filesJSON sql.NullString
		if err := rows.Scan(&m.Role, &m.Text, &imagePath, &filesJSON); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		m.ImagePath = imagePath.String
		if filesJSON.Valid {
			if err := json.Unmarshal([]byte(filesJSON.String), &m.FilePaths); err != nil {
				return nil, fmt.Errorf("decode file paths: %w", err)
			}
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// History reconstructs the conversation for resuming a session.
func (s *Store) History(ctx context.Context, sessionID int64) (chat.History, error) {
	msgs, err := s.Messages(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	h := make(chat.History, 0, len(msgs))
	for _, m := range msgs {
		turn := chat.Turn{Role: chat.Role(m.Role), Text: m.Text}
		if m.ImagePath != "" {
			turn.Images = []string{m.ImagePath}
		}
		h = append(h, turn)
	}
	return h, nil
}
