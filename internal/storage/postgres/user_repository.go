package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vladislavdragonenkov/marketplace/internal/domain"
)

// userRepository — PostgreSQL-реализация хранилища пользователей.
type userRepository struct {
	db *sql.DB
}

// NewUserRepository создаёт PostgreSQL-реализацию UserRepository.
func NewUserRepository(store *Store) domain.UserRepository {
	return &userRepository{db: store.DB()}
}

func (r *userRepository) Create(user domain.User) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (
			id, name, email, password_hash, login_count,
			address, city, country, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`,
		user.ID, user.Name, user.Email, user.PasswordHash, user.LoginCount,
		user.Address, user.City, user.Country, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *userRepository) Get(id string) (domain.User, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var user domain.User
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, email, password_hash, login_count,
		       address, city, country, created_at, updated_at
		FROM users
		WHERE id = $1
	`, id).Scan(
		&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.LoginCount,
		&user.Address, &user.City, &user.Country, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, domain.ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("select user: %w", err)
	}
	return user, nil
}

func (r *userRepository) Ref(id string) (domain.UserRef, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var ref domain.UserRef
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, address, city, country
		FROM users
		WHERE id = $1
	`, id).Scan(&ref.ID, &ref.Name, &ref.Address, &ref.City, &ref.Country)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.UserRef{}, domain.ErrUserNotFound
		}
		return domain.UserRef{}, fmt.Errorf("select user ref: %w", err)
	}
	return ref, nil
}

func (r *userRepository) Update(user domain.User) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET name = $1, email = $2, password_hash = $3, login_count = $4,
		    address = $5, city = $6, country = $7, updated_at = $8
		WHERE id = $9
	`,
		user.Name, user.Email, user.PasswordHash, user.LoginCount,
		user.Address, user.City, user.Country, user.UpdatedAt, user.ID,
	)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

var _ domain.UserRepository = (*userRepository)(nil)
