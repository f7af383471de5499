package repoargs

import "github.com/fsdevblog/groph-points/internal/domain"

type CreateUser struct {
	Email    string
	Name     string
	Password string
	Role     domain.RoleType
}
