package sheetserver

import (
	"context"
	"database/sql"
	"time"

	"github.com/ad/telegram-bolao-bot/internal/domain"
	"github.com/ad/telegram-bolao-bot/internal/storage"
)

const rowSchema = `
CREATE TABLE IF NOT EXISTS cadastros (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    created_at TEXT NOT NULL,
    telegram_id TEXT NOT NULL,
    username TEXT NOT NULL DEFAULT '',
    nome TEXT NOT NULL DEFAULT '',
    telefone TEXT NOT NULL DEFAULT '',
    cpf TEXT NOT NULL DEFAULT '',
    email TEXT NOT NULL DEFAULT '',
    referred_by TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS apostas (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    created_at TEXT NOT NULL,
    week_key TEXT NOT NULL DEFAULT '',
    telegram_id TEXT NOT NULL,
    nome TEXT NOT NULL DEFAULT '',
    numeros TEXT NOT NULL DEFAULT ''
);
`

// InitSchema creates the sheet tables. Rows are append-only and carry no
// uniqueness constraints: deduplication is the bot's job, the sheet just
// stores what it is told.
func InitSchema(queue *storage.DBQueue) error {
	return queue.Execute(func(db *sql.DB) error {
		_, err := db.Exec(rowSchema)
		return err
	})
}

// CadastroRow mirrors one row of the cadastros sheet. All fields are
// strings, like spreadsheet cells; missing payload fields append as empty.
type CadastroRow struct {
	CreatedAt  string
	TelegramID string
	Username   string
	Nome       string
	Telefone   string
	CPF        string
	Email      string
	ReferredBy string
}

// ApostaRow mirrors one row of the apostas sheet
type ApostaRow struct {
	CreatedAt  string
	WeekKey    string
	TelegramID string
	Nome       string
	Numeros    string
}

// RowStore appends and lists sheet rows
type RowStore struct {
	queue  *storage.DBQueue
	logger domain.Logger
}

// NewRowStore creates a row store over the shared DB queue
func NewRowStore(queue *storage.DBQueue, log domain.Logger) *RowStore {
	return &RowStore{
		queue:  queue,
		logger: log,
	}
}

// AppendCadastro appends a registration row, defaulting created_at to now
func (s *RowStore) AppendCadastro(ctx context.Context, row *CadastroRow) error {
	if row.CreatedAt == "" {
		row.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}

	err := s.queue.Execute(func(db *sql.DB) error {
		_, err := db.ExecContext(ctx, `
			INSERT INTO cadastros (created_at, telegram_id, username, nome, telefone, cpf, email, referred_by)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, row.CreatedAt, row.TelegramID, row.Username, row.Nome, row.Telefone, row.CPF, row.Email, row.ReferredBy)
		return err
	})
	if err != nil {
		s.logger.Error("failed to append cadastro row", "error", err)
		return err
	}

	s.logger.Debug("cadastro row appended", "telegram_id", row.TelegramID)
	return nil
}

// AppendAposta appends a pick row, defaulting created_at to now
func (s *RowStore) AppendAposta(ctx context.Context, row *ApostaRow) error {
	if row.CreatedAt == "" {
		row.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}

	err := s.queue.Execute(func(db *sql.DB) error {
		_, err := db.ExecContext(ctx, `
			INSERT INTO apostas (created_at, week_key, telegram_id, nome, numeros)
			VALUES (?, ?, ?, ?, ?)
		`, row.CreatedAt, row.WeekKey, row.TelegramID, row.Nome, row.Numeros)
		return err
	})
	if err != nil {
		s.logger.Error("failed to append aposta row", "error", err)
		return err
	}

	s.logger.Debug("aposta row appended", "telegram_id", row.TelegramID, "week_key", row.WeekKey)
	return nil
}

// ListCadastros returns all registration rows in insertion order
func (s *RowStore) ListCadastros(ctx context.Context) ([]*CadastroRow, error) {
	var rows []*CadastroRow
	err := s.queue.Execute(func(db *sql.DB) error {
		result, err := db.QueryContext(ctx, `
			SELECT created_at, telegram_id, username, nome, telefone, cpf, email, referred_by
			FROM cadastros ORDER BY id
		`)
		if err != nil {
			return err
		}
		defer func() { _ = result.Close() }()

		for result.Next() {
			row := &CadastroRow{}
			if err := result.Scan(&row.CreatedAt, &row.TelegramID, &row.Username, &row.Nome, &row.Telefone, &row.CPF, &row.Email, &row.ReferredBy); err != nil {
				return err
			}
			rows = append(rows, row)
		}
		return result.Err()
	})
	if err != nil {
		s.logger.Error("failed to list cadastro rows", "error", err)
		return nil, err
	}
	return rows, nil
}

// ListApostas returns all pick rows in insertion order
func (s *RowStore) ListApostas(ctx context.Context) ([]*ApostaRow, error) {
	var rows []*ApostaRow
	err := s.queue.Execute(func(db *sql.DB) error {
		result, err := db.QueryContext(ctx, `
			SELECT created_at, week_key, telegram_id, nome, numeros
			FROM apostas ORDER BY id
		`)
		if err != nil {
			return err
		}
		defer func() { _ = result.Close() }()

		for result.Next() {
			row := &ApostaRow{}
			if err := result.Scan(&row.CreatedAt, &row.WeekKey, &row.TelegramID, &row.Nome, &row.Numeros); err != nil {
				return err
			}
			rows = append(rows, row)
		}
		return result.Err()
	})
	if err != nil {
		s.logger.Error("failed to list aposta rows", "error", err)
		return nil, err
	}
	return rows, nil
}
