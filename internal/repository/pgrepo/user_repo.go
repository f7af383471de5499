package pgrepo

import (
	"context"

	"github.com/fsdevblog/groph-points/internal/domain"
	"github.com/fsdevblog/groph-points/internal/repository/repoargs"
	"github.com/jackc/pgx/v5"
)

const userColumns = `id, created_at, updated_at, email, name, encrypted_password, role::text`

type UserRepository struct {
	db DBTX
}

func NewUserRepository(conn DBTX) *UserRepository {
	return &UserRepository{db: conn}
}

// CreateUser создает юзера в базе данных. В случае конфликта email возвращает ошибку domain.ErrDuplicateKey,
// во всех других случаях - domain.ErrUnknown.
func (u *UserRepository) CreateUser(ctx context.Context, user repoargs.CreateUser) (*domain.User, error) {
	row := u.db.QueryRow(ctx,
		`INSERT INTO users (email, name, encrypted_password, role)
		VALUES ($1, $2, $3, $4::user_role)
		RETURNING `+userColumns,
		user.Email, user.Name, user.Password, string(user.Role),
	)
	dbUser, err := scanUser(row)
	if err != nil {
		return nil, convertErr(err, "creating user")
	}
	return dbUser, nil
}

// FindUserByEmail ищет юзера по email. Возвращает ошибку domain.ErrRecordNotFound если запись не найдена.
func (u *UserRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := u.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	dbUser, err := scanUser(row)
	if err != nil {
		return nil, convertErr(err, "finding user by email %s", email)
	}
	return dbUser, nil
}

func (u *UserRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	row := u.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	dbUser, err := scanUser(row)
	if err != nil {
		return nil, convertErr(err, "finding user by id %d", id)
	}
	return dbUser, nil
}

func (u *UserRepository) GetAll(ctx context.Context) ([]domain.User, error) {
	rows, err := u.db.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, convertErr(err, "getting users")
	}
	users, collectErr := collectRows(rows, scanUser)
	if collectErr != nil {
		return nil, convertErr(collectErr, "getting users")
	}
	return users, nil
}

func (u *UserRepository) UpdateRole(ctx context.Context, id int64, role domain.RoleType) (*domain.User, error) {
	row := u.db.QueryRow(ctx,
		`UPDATE users SET role = $2::user_role, updated_at = now() WHERE id = $1 RETURNING `+userColumns,
		id, string(role),
	)
	dbUser, err := scanUser(row)
	if err != nil {
		return nil, convertErr(err, "updating role for user %d", id)
	}
	return dbUser, nil
}

func (u *UserRepository) UpdateName(ctx context.Context, id int64, name string) (*domain.User, error) {
	row := u.db.QueryRow(ctx,
		`UPDATE users SET name = $2, updated_at = now() WHERE id = $1 RETURNING `+userColumns,
		id, name,
	)
	dbUser, err := scanUser(row)
	if err != nil {
		return nil, convertErr(err, "updating name for user %d", id)
	}
	return dbUser, nil
}

func (u *UserRepository) UpdatePassword(ctx context.Context, id int64, hashedPassword string) (*domain.User, error) {
	row := u.db.QueryRow(ctx,
		`UPDATE users SET encrypted_password = $2, updated_at = now() WHERE id = $1 RETURNING `+userColumns,
		id, hashedPassword,
	)
	dbUser, err := scanUser(row)
	if err != nil {
		return nil, convertErr(err, "updating password for user %d", id)
	}
	return dbUser, nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	var role string
	if err := row.Scan(
		&user.ID,
		&user.CreatedAt,
		&user.UpdatedAt,
		&user.Email,
		&user.Name,
		&user.Password,
		&role,
	); err != nil {
		return nil, err //nolint:wrapcheck
	}
	user.Role = domain.RoleType(role)
	return &user, nil
}
