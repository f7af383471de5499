package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fsdevblog/groph-points/internal/domain"
	"github.com/fsdevblog/groph-points/internal/repository/repoargs"
	"github.com/fsdevblog/groph-points/internal/service/tokens"
	"github.com/fsdevblog/groph-points/pkg/uow"
)

const JWTTokenExpire = 1 * time.Hour

type UserService struct {
	uow            uow.UOW
	userRepo       UserRepository
	jwtTokenSecret []byte
	hasher         PasswordHasher
}

func NewUserService(u uow.UOW, jwtTokenSecret []byte, hasher PasswordHasher) (*UserService, error) {
	userRepo, userRepoErr := uow.GetRepositoryAs[UserRepository](u, uow.RepositoryName(repoargs.UserRepoName))
	if userRepoErr != nil {
		return nil, userRepoErr //nolint:wrapcheck
	}
	return &UserService{
		uow:            u,
		userRepo:       userRepo,
		jwtTokenSecret: jwtTokenSecret,
		hasher:         hasher,
	}, nil
}

type RegisterUserArgs struct {
	Email    string
	Name     string
	Password string
}

// Register создает юзера с ролью user. После успешного создания генерирует jwt token. Возвращает 3 значения:
// созданный юзер, токен и ошибку. Если email занят, возвращается domain.ErrEmailTaken.
func (s *UserService) Register(ctx context.Context, args RegisterUserArgs) (*domain.User, string, error) {
	user, err := s.createUser(ctx, args, domain.RoleUser)
	if err != nil {
		return nil, "", err
	}

	token, tokenErr := tokens.GenerateUserJWT(user.ID, JWTTokenExpire, s.jwtTokenSecret)
	if tokenErr != nil {
		return nil, "", fmt.Errorf("registering user: %w", tokenErr)
	}
	return user, token, nil
}

type LoginUserArgs struct {
	Email    string
	Password string
}

// Login аутентифицирует юзера по паре email/пароль. Возвращает domain.ErrRecordNotFound если юзера нет и
// domain.ErrPasswordMissMatch при неверном пароле.
func (s *UserService) Login(ctx context.Context, args LoginUserArgs) (*domain.User, string, error) {
	user, err := s.userRepo.FindUserByEmail(ctx, args.Email)
	if err != nil {
		return nil, "", fmt.Errorf("login user: %w", err)
	}

	if !s.hasher.ComparePassword(args.Password, user.Password) {
		return nil, "", fmt.Errorf("login user: %w", domain.ErrPasswordMissMatch)
	}

	token, tokenErr := tokens.GenerateUserJWT(user.ID, JWTTokenExpire, s.jwtTokenSecret)
	if tokenErr != nil {
		return nil, "", fmt.Errorf("login user: %w", tokenErr)
	}
	return user, token, nil
}

func (s *UserService) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, domain.NewStorageError("getting user", err)
	}
	return user, nil
}

func (s *UserService) GetAll(ctx context.Context) ([]domain.User, error) {
	users, err := s.userRepo.GetAll(ctx)
	if err != nil {
		return nil, domain.NewStorageError("getting users", err)
	}
	return users, nil
}

// SetRole меняет роль юзера.
func (s *UserService) SetRole(ctx context.Context, id int64, role domain.RoleType) (*domain.User, error) {
	if !role.IsValid() {
		return nil, domain.ErrInvalidRole
	}
	user, err := s.userRepo.UpdateRole(ctx, id, role)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, domain.NewStorageError("updating user role", err)
	}
	return user, nil
}

// UpdateName меняет имя юзера.
func (s *UserService) UpdateName(ctx context.Context, id int64, name string) (*domain.User, error) {
	user, err := s.userRepo.UpdateName(ctx, id, name)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, domain.NewStorageError("updating user name", err)
	}
	return user, nil
}

// ChangePassword меняет пароль юзера после проверки текущего. При неверном старом пароле
// возвращается domain.ErrWrongPassword.
func (s *UserService) ChangePassword(ctx context.Context, id int64, oldPassword, newPassword string) error {
	user, err := s.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !s.hasher.ComparePassword(oldPassword, user.Password) {
		return domain.ErrWrongPassword
	}

	hashed, hashErr := s.hasher.HashPassword(newPassword)
	if hashErr != nil {
		return fmt.Errorf("changing password: %w", hashErr)
	}
	if _, updErr := s.userRepo.UpdatePassword(ctx, id, hashed); updErr != nil {
		if errors.Is(updErr, domain.ErrRecordNotFound) {
			return domain.ErrUserNotFound
		}
		return domain.NewStorageError("changing password", updErr)
	}
	return nil
}

// EnsureAdmin создает админа с указанными email и паролем, если такого юзера еще нет. Если юзер с таким email
// существует, ему выдается роль admin, пароль не меняется.
func (s *UserService) EnsureAdmin(ctx context.Context, email, password string) (*domain.User, error) {
	var admin *domain.User
	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		userRepo, repoErr := uow.GetAs[UserRepository](tx, uow.RepositoryName(repoargs.UserRepoName))
		if repoErr != nil {
			return repoErr //nolint:wrapcheck
		}

		existing, findErr := userRepo.FindUserByEmail(c, email)
		switch {
		case findErr == nil && existing.Role == domain.RoleAdmin:
			admin = existing
			return nil
		case findErr == nil:
			var updErr error
			admin, updErr = userRepo.UpdateRole(c, existing.ID, domain.RoleAdmin)
			return updErr //nolint:wrapcheck
		case !errors.Is(findErr, domain.ErrRecordNotFound):
			return findErr //nolint:wrapcheck
		}

		hashed, hashErr := s.hasher.HashPassword(password)
		if hashErr != nil {
			return hashErr //nolint:wrapcheck
		}
		var createErr error
		admin, createErr = userRepo.CreateUser(c, repoargs.CreateUser{
			Email:    email,
			Name:     "Admin",
			Password: hashed,
			Role:     domain.RoleAdmin,
		})
		return createErr //nolint:wrapcheck
	})
	if txErr != nil {
		return nil, domain.NewStorageError("seeding admin", txErr)
	}
	return admin, nil
}

func (s *UserService) createUser(
	ctx context.Context,
	args RegisterUserArgs,
	role domain.RoleType,
) (*domain.User, error) {
	password, hashErr := s.hasher.HashPassword(args.Password)
	if hashErr != nil {
		return nil, fmt.Errorf("registering user: %w", hashErr)
	}

	user, err := s.userRepo.CreateUser(ctx, repoargs.CreateUser{
		Email:    args.Email,
		Name:     args.Name,
		Password: password,
		Role:     role,
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateKey) {
			return nil, domain.ErrEmailTaken
		}
		return nil, domain.NewStorageError("registering user", err)
	}
	return user, nil
}
