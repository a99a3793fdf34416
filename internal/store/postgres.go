package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"taskboard/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres keeps users in columns and each task list as a single JSONB
// document with a version counter for the conditional replace.
type Postgres struct {
	db *pgxpool.Pool
}

func NewPostgres(db *pgxpool.Pool) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) FindUser(ctx context.Context, login string) (*domain.User, error) {
	row := s.db.QueryRow(ctx,
		`SELECT login, password, created_at FROM users WHERE login = $1`,
		login,
	)

	var u domain.User
	if err := row.Scan(&u.Login, &u.Password, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}

func (s *Postgres) InsertUser(ctx context.Context, u *domain.User) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO users (login, password) VALUES ($1, $2)`,
		u.Login, u.Password,
	)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *Postgres) FindList(ctx context.Context, name string) (*domain.TaskList, error) {
	row := s.db.QueryRow(ctx,
		`SELECT doc, version FROM task_lists WHERE name = $1`,
		name,
	)

	var doc []byte
	var version int64
	if err := row.Scan(&doc, &version); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find list: %w", err)
	}
	return decodeList(doc, version)
}

func (s *Postgres) AllLists(ctx context.Context) ([]*domain.TaskList, error) {
	rows, err := s.db.Query(ctx, `SELECT doc, version FROM task_lists ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("all lists: %w", err)
	}
	defer rows.Close()

	var res []*domain.TaskList
	for rows.Next() {
		var doc []byte
		var version int64
		if err := rows.Scan(&doc, &version); err != nil {
			return nil, fmt.Errorf("all lists: %w", err)
		}
		tl, err := decodeList(doc, version)
		if err != nil {
			return nil, err
		}
		res = append(res, tl)
	}
	return res, rows.Err()
}

func (s *Postgres) InsertList(ctx context.Context, tl *domain.TaskList) error {
	doc, err := json.Marshal(tl)
	if err != nil {
		return fmt.Errorf("encode list: %w", err)
	}

	_, err = s.db.Exec(ctx,
		`INSERT INTO task_lists (name, owner, doc, version) VALUES ($1, $2, $3, 1)`,
		tl.Name, tl.Owner, doc,
	)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("insert list: %w", err)
	}
	tl.Version = 1
	return nil
}

func (s *Postgres) ReplaceList(ctx context.Context, tl *domain.TaskList) error {
	doc, err := json.Marshal(tl)
	if err != nil {
		return fmt.Errorf("encode list: %w", err)
	}

	tag, err := s.db.Exec(ctx,
		`UPDATE task_lists SET doc = $1, owner = $2, version = version + 1
		 WHERE name = $3 AND version = $4`,
		doc, tl.Owner, tl.Name, tl.Version,
	)
	if err != nil {
		return fmt.Errorf("replace list: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// either gone or written by someone else since our read
		var exists bool
		if err := s.db.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM task_lists WHERE name = $1)`, tl.Name,
		).Scan(&exists); err != nil {
			return fmt.Errorf("replace list: %w", err)
		}
		if !exists {
			return ErrNotFound
		}
		return ErrVersionConflict
	}
	tl.Version++
	return nil
}

func (s *Postgres) RemoveList(ctx context.Context, name, owner string) (int64, error) {
	tag, err := s.db.Exec(ctx,
		`DELETE FROM task_lists WHERE name = $1 AND owner = $2`,
		name, owner,
	)
	if err != nil {
		return 0, fmt.Errorf("remove list: %w", err)
	}
	return tag.RowsAffected(), nil
}

func decodeList(doc []byte, version int64) (*domain.TaskList, error) {
	var tl domain.TaskList
	if err := json.Unmarshal(doc, &tl); err != nil {
		return nil, fmt.Errorf("decode list: %w", err)
	}
	tl.Version = version
	return &tl, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
