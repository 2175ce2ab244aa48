package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/unilater/galeaz/internal/domain"
	transport "github.com/unilater/galeaz/internal/transport/http"
)

// Backend stores dev-server state in Postgres.
type Backend struct {
	pool *pgxpool.Pool
}

func NewBackend(pool *pgxpool.Pool) *Backend {
	return &Backend{pool: pool}
}

func (b *Backend) CreateAccount(ctx context.Context, email, passwordHash string) (int, error) {
	var id int
	err := b.pool.QueryRow(ctx,
		`INSERT INTO accounts (email, password_hash) VALUES ($1, $2) RETURNING id`,
		email, passwordHash).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create account: %w", err)
	}
	return id, nil
}

func (b *Backend) AccountByEmail(ctx context.Context, email string) (transport.Account, bool, error) {
	return b.account(ctx, `SELECT id, email, password_hash, name_first, name_last FROM accounts WHERE email=$1`, email)
}

func (b *Backend) AccountByID(ctx context.Context, id int) (transport.Account, bool, error) {
	return b.account(ctx, `SELECT id, email, password_hash, name_first, name_last FROM accounts WHERE id=$1`, id)
}

func (b *Backend) account(ctx context.Context, query string, arg any) (transport.Account, bool, error) {
	var account transport.Account
	err := b.pool.QueryRow(ctx, query, arg).
		Scan(&account.ID, &account.Email, &account.PasswordHash, &account.NameFirst, &account.NameLast)
	if errors.Is(err, pgx.ErrNoRows) {
		return transport.Account{}, false, nil
	}
	if err != nil {
		return transport.Account{}, false, fmt.Errorf("load account: %w", err)
	}
	return account, true, nil
}

func (b *Backend) UpdateNames(ctx context.Context, id int, first, last string) error {
	_, err := b.pool.Exec(ctx,
		`UPDATE accounts SET name_first=$2, name_last=$3 WHERE id=$1`, id, first, last)
	if err != nil {
		return fmt.Errorf("update names: %w", err)
	}
	return nil
}

func (b *Backend) Questions(ctx context.Context) ([]domain.QuestionDefinition, error) {
	rows, err := b.pool.Query(ctx,
		`SELECT id, label, type, required, options FROM domande ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	defer rows.Close()

	var questions []domain.QuestionDefinition
	for rows.Next() {
		var q domain.QuestionDefinition
		var options []byte
		if err := rows.Scan(&q.ID, &q.Label, &q.Type, &q.Required, &options); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		if len(options) > 0 {
			if err := json.Unmarshal(options, &q.Options); err != nil {
				return nil, fmt.Errorf("unmarshal options: %w", err)
			}
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

func (b *Backend) Answers(ctx context.Context, userID int) (map[string]string, error) {
	var raw []byte
	err := b.pool.QueryRow(ctx,
		`SELECT questionario FROM accounts WHERE id=$1`, userID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load answers: %w", err)
	}
	if len(raw) == 0 {
		return map[string]string{}, nil
	}
	answers := map[string]string{}
	if err := json.Unmarshal(raw, &answers); err != nil {
		return nil, fmt.Errorf("unmarshal answers: %w", err)
	}
	return answers, nil
}

func (b *Backend) SaveAnswers(ctx context.Context, userID int, answers map[string]string) error {
	raw, err := json.Marshal(answers)
	if err != nil {
		return err
	}
	_, err = b.pool.Exec(ctx,
		`UPDATE accounts SET questionario=$2 WHERE id=$1`, userID, raw)
	if err != nil {
		return fmt.Errorf("save answers: %w", err)
	}
	return nil
}

func (b *Backend) Completions(ctx context.Context, userID int) (map[string]bool, error) {
	rows, err := b.pool.Query(ctx,
		`SELECT colonna, completata FROM tutele WHERE user_id=$1`, userID)
	if err != nil {
		return nil, fmt.Errorf("load completions: %w", err)
	}
	defer rows.Close()

	out := map[string]bool{}
	for rows.Next() {
		var column string
		var completed bool
		if err := rows.Scan(&column, &completed); err != nil {
			return nil, fmt.Errorf("scan completion: %w", err)
		}
		out[column] = completed
	}
	return out, rows.Err()
}

func (b *Backend) SetCompletion(ctx context.Context, userID int, column string) error {
	_, err := b.pool.Exec(ctx,
		`INSERT INTO tutele (user_id, colonna, completata) VALUES ($1, $2, TRUE)
		 ON CONFLICT (user_id, colonna) DO UPDATE SET completata=TRUE`, userID, column)
	if err != nil {
		return fmt.Errorf("set completion: %w", err)
	}
	return nil
}

func (b *Backend) Contents(ctx context.Context, userID int) (map[string]string, error) {
	rows, err := b.pool.Query(ctx,
		`SELECT colonna, content FROM tutele WHERE user_id=$1 AND content <> ''`, userID)
	if err != nil {
		return nil, fmt.Errorf("load contents: %w", err)
	}
	defer rows.Close()

	out := map[string]string{}
	for rows.Next() {
		var column, content string
		if err := rows.Scan(&column, &content); err != nil {
			return nil, fmt.Errorf("scan content: %w", err)
		}
		out[column] = content
	}
	return out, rows.Err()
}

func (b *Backend) SetContent(ctx context.Context, userID int, column, content string) error {
	_, err := b.pool.Exec(ctx,
		`INSERT INTO tutele (user_id, colonna, content) VALUES ($1, $2, $3)
		 ON CONFLICT (user_id, colonna) DO UPDATE SET content=EXCLUDED.content`, userID, column, content)
	if err != nil {
		return fmt.Errorf("set content: %w", err)
	}
	return nil
}
