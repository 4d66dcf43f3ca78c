package sqlite

import (
	"context"
	"fmt"

	"github.com/modelshare/modelshare-server/internal/domain"
	"github.com/modelshare/modelshare-server/internal/store"
)

// userColumns is the ordered list of columns selected in user queries.
// Must match the scan order in scanUser.
const userColumns = `id, created_at, updated_at, username, email, password_hash, read_models, write_models`

// scanUser scans a sql.Row (or sql.Rows via its Scan method) into a domain.User.
func scanUser(sc scanner) (*domain.User, error) {
	var (
		u           domain.User
		createdAt   string
		updatedAt   string
		readModels  string
		writeModels string
	)

	err := sc.Scan(&u.ID, &createdAt, &updatedAt, &u.Username, &u.Email, &u.PasswordHash, &readModels, &writeModels)
	if err != nil {
		return nil, notFound(err)
	}

	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if u.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}

	read, err := decodeList(readModels)
	if err != nil {
		return nil, err
	}
	write, err := decodeList(writeModels)
	if err != nil {
		return nil, err
	}
	u.ReadModels = domain.IDSet(read)
	u.WriteModels = domain.IDSet(write)

	return &u, nil
}

// CreateUser inserts a new user.
// Returns store.ErrAlreadyExists if the id or username is taken.
func (s *Store) CreateUser(ctx context.Context, u *domain.User) error {
	if u.ID == "" || domain.NormalizeUsername(u.Username) == "" {
		return store.ErrInvalidInput
	}
	u.Username = domain.NormalizeUsername(u.Username)

	read, err := encodeList(u.ReadModels)
	if err != nil {
		return err
	}
	write, err := encodeList(u.WriteModels)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `INSERT INTO users (`+userColumns+`) VALUES (?,?,?,?,?,?,?,?)`,
		u.ID, formatTime(u.CreatedAt), formatTime(u.UpdatedAt), u.Username, u.Email, u.PasswordHash, read, write)
	if err != nil {
		return fmt.Errorf("create user %s: %w", u.Username, mapInsertError(err))
	}
	return nil
}

func getUser(ctx context.Context, q querier, id string) (*domain.User, error) {
	return scanUser(q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

func putUser(ctx context.Context, q querier, u *domain.User) error {
	read, err := encodeList(u.ReadModels)
	if err != nil {
		return err
	}
	write, err := encodeList(u.WriteModels)
	if err != nil {
		return err
	}

	_, err = q.ExecContext(ctx,
		`UPDATE users SET updated_at = ?, email = ?, password_hash = ?, read_models = ?, write_models = ? WHERE id = ?`,
		formatTime(u.UpdatedAt), u.Email, u.PasswordHash, read, write, u.ID)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

// GetUser retrieves a user by id.
func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return getUser(ctx, s.db, id)
}

// GetUserByUsername retrieves a user by username.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return scanUser(s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ?`, domain.NormalizeUsername(username)))
}

// ResolveUserID maps a username to the user id.
func (s *Store) ResolveUserID(ctx context.Context, username string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var id string
	err := s.db.QueryRowContext(ctx, `SELECT id FROM users WHERE username = ?`, domain.NormalizeUsername(username)).Scan(&id)
	if err != nil {
		return "", notFound(err)
	}
	return id, nil
}

// GetUsersByIDs populates a list of user ids.
func (s *Store) GetUsersByIDs(ctx context.Context, ids []string) ([]*domain.User, error) {
	return getMany(ctx, ids, s.GetUser)
}

// ListUsers returns users matching q.
func (s *Store) ListUsers(ctx context.Context, q store.Query[domain.User]) ([]*domain.User, error) {
	return collect(ctx, s.db, `SELECT `+userColumns+` FROM users ORDER BY id`, scanUser, q)
}

// UpdateUser applies typed updates to a user in one transaction.
func (s *Store) UpdateUser(ctx context.Context, id string, updates ...domain.UserUpdate) (*domain.User, error) {
	return mutate(ctx, s, id, getUser, putUser, func(u *domain.User) bool {
		return u.Apply(updates...)
	})
}

// DeleteUser removes a user.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "users", id)
}
