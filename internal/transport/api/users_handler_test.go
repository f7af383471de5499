package api

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/fsdevblog/groph-points/internal/domain"
	"github.com/fsdevblog/groph-points/internal/service"
	"github.com/fsdevblog/groph-points/internal/service/tokens"
	"github.com/fsdevblog/groph-points/internal/transport/api/testutils"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/suite"
)

type UsersHandlerTestSuite struct {
	handlerSuite
}

func TestUsersHandlerSuite(t *testing.T) {
	suite.Run(t, new(UsersHandlerTestSuite))
}

func (s *UsersHandlerTestSuite) TestRegister() {
	email := gofakeit.Email()
	name := gofakeit.Name()
	password := gofakeit.Password(true, true, true, false, false, 12)

	s.mockUserService.EXPECT().
		Register(gomock.Any(), service.RegisterUserArgs{Email: email, Name: name, Password: password}).
		Return(&domain.User{ID: 10, Email: email, Name: name, Role: domain.RoleUser}, "jwt-token", nil).Times(1)
	s.mockUserService.EXPECT().
		Register(gomock.Any(), service.RegisterUserArgs{Email: "taken@example.com", Name: name, Password: password}).
		Return(nil, "", domain.ErrEmailTaken).Times(1)

	s.Run("all ok", func() {
		res := s.request(http.MethodPost, RouteGroup+RegisterRoute, "",
			map[string]string{"email": email, "name": name, "password": password})
		s.Equal(http.StatusCreated, res.StatusCode)
		s.Equal("Bearer jwt-token", res.Header.Get("Authorization"))

		var resp AuthResponse
		s.Require().NoError(testutils.DecodeJSON(res, &resp))
		s.Equal("jwt-token", resp.Token)
		s.Equal(domain.RoleUser, resp.User.Role)
	})

	s.Run("email taken", func() {
		res := s.request(http.MethodPost, RouteGroup+RegisterRoute, "",
			map[string]string{"email": "taken@example.com", "name": name, "password": password})
		s.Equal(http.StatusConflict, res.StatusCode)
		s.Equal("user with this email already exists", s.errorText(res))
	})

	invalid := []struct {
		name string
		body map[string]string
	}{
		{name: "invalid email", body: map[string]string{"email": "nope", "name": name, "password": password}},
		{name: "short password", body: map[string]string{"email": email, "name": name, "password": "123"}},
		{name: "no name", body: map[string]string{"email": email, "password": password}},
	}
	for _, t := range invalid {
		s.Run(t.name, func() {
			res := s.request(http.MethodPost, RouteGroup+RegisterRoute, "", t.body)
			s.Equal(http.StatusUnprocessableEntity, res.StatusCode)
		})
	}

	s.Run("already authorized", func() {
		res := s.request(http.MethodPost, RouteGroup+RegisterRoute, s.token(regularUserID),
			map[string]string{"email": email, "name": name, "password": password})
		s.Equal(http.StatusConflict, res.StatusCode)
	})
}

func (s *UsersHandlerTestSuite) TestLogin() {
	email := gofakeit.Email()
	password := gofakeit.Password(true, true, true, false, false, 12)

	s.mockUserService.EXPECT().Login(gomock.Any(), service.LoginUserArgs{Email: email, Password: password}).
		Return(&domain.User{ID: 10, Email: email}, "jwt-token", nil).Times(1)
	s.mockUserService.EXPECT().Login(gomock.Any(), service.LoginUserArgs{Email: email, Password: "wrong-password"}).
		Return(nil, "", fmt.Errorf("login user: %w", domain.ErrPasswordMissMatch)).Times(1)
	s.mockUserService.EXPECT().Login(gomock.Any(), service.LoginUserArgs{Email: "ghost@example.com", Password: password}).
		Return(nil, "", fmt.Errorf("login user: %w", domain.ErrRecordNotFound)).Times(1)

	cases := []struct {
		name       string
		email      string
		password   string
		wantStatus int
	}{
		{name: "all ok", email: email, password: password, wantStatus: http.StatusOK},
		{name: "wrong password", email: email, password: "wrong-password", wantStatus: http.StatusUnauthorized},
		{name: "unknown email", email: "ghost@example.com", password: password, wantStatus: http.StatusUnauthorized},
		{name: "bad request", email: "", password: password, wantStatus: http.StatusBadRequest},
	}
	for _, t := range cases {
		s.Run(t.name, func() {
			res := s.request(http.MethodPost, RouteGroup+LoginRoute, "",
				map[string]string{"email": t.email, "password": t.password})
			s.Equal(t.wantStatus, res.StatusCode)
			if t.wantStatus == http.StatusUnauthorized {
				s.Equal(ErrInvalidCredentials.Error(), s.errorText(res))
			}
		})
	}
}

func (s *UsersHandlerTestSuite) TestMe() {
	s.Run("all ok", func() {
		res := s.request(http.MethodGet, RouteGroup+MeRoute, s.token(regularUserID), nil)
		s.Equal(http.StatusOK, res.StatusCode)
		var resp UserResponse
		s.Require().NoError(testutils.DecodeJSON(res, &resp))
		s.Equal(regularUserID, resp.ID)
		s.Equal(domain.RoleUser, resp.Role)
	})

	s.Run("deleted user", func() {
		var ghostID int64 = 99
		s.mockUserService.EXPECT().FindByID(gomock.Any(), ghostID).Return(nil, domain.ErrUserNotFound).Times(1)
		res := s.request(http.MethodGet, RouteGroup+MeRoute, s.token(ghostID), nil)
		s.Equal(http.StatusNotFound, res.StatusCode)
	})

	s.Run("expired token", func() {
		expired, err := tokensExpired(s.jwtSecret)
		s.Require().NoError(err)
		res := s.request(http.MethodGet, RouteGroup+MeRoute, expired, nil)
		s.Equal(http.StatusUnauthorized, res.StatusCode)
	})

	s.Run("invalid token", func() {
		res := s.request(http.MethodGet, RouteGroup+MeRoute, "not-a-jwt", nil)
		s.Equal(http.StatusUnauthorized, res.StatusCode)
	})
}

func (s *UsersHandlerTestSuite) TestUpdateName() {
	name := gofakeit.Name()
	s.mockUserService.EXPECT().UpdateName(gomock.Any(), regularUserID, name).
		Return(&domain.User{ID: regularUserID, Name: name}, nil).Times(1)

	res := s.request(http.MethodPut, RouteGroup+UsersRoute, s.token(regularUserID), map[string]string{"name": name})
	s.Equal(http.StatusOK, res.StatusCode)
	var resp UserResponse
	s.Require().NoError(testutils.DecodeJSON(res, &resp))
	s.Equal(name, resp.Name)

	empty := s.request(http.MethodPut, RouteGroup+UsersRoute, s.token(regularUserID), map[string]string{"name": ""})
	s.Equal(http.StatusUnprocessableEntity, empty.StatusCode)
}

func (s *UsersHandlerTestSuite) TestChangePassword() {
	url := RouteGroup + MyPasswordRoute
	oldPassword := gofakeit.Password(true, true, true, false, false, 12)
	newPassword := gofakeit.Password(true, true, true, false, false, 12)

	s.mockUserService.EXPECT().ChangePassword(gomock.Any(), regularUserID, oldPassword, newPassword).
		Return(nil).Times(1)
	s.mockUserService.EXPECT().ChangePassword(gomock.Any(), regularUserID, "wrong-password", newPassword).
		Return(domain.ErrWrongPassword).Times(1)

	s.Run("all ok", func() {
		res := s.request(http.MethodPut, url, s.token(regularUserID),
			map[string]string{"oldPassword": oldPassword, "newPassword": newPassword})
		s.Equal(http.StatusNoContent, res.StatusCode)
		s.Empty(testutils.ReadBody(res))
	})

	s.Run("wrong old password", func() {
		res := s.request(http.MethodPut, url, s.token(regularUserID),
			map[string]string{"oldPassword": "wrong-password", "newPassword": newPassword})
		s.Equal(http.StatusForbidden, res.StatusCode)
		s.Equal("old password is incorrect", s.errorText(res))
	})

	invalid := []struct {
		name string
		body map[string]string
	}{
		{name: "no old password", body: map[string]string{"newPassword": newPassword}},
		{name: "short new password", body: map[string]string{"oldPassword": oldPassword, "newPassword": "123"}},
		{name: "too long new password", body: map[string]string{
			"oldPassword": oldPassword,
			"newPassword": gofakeit.LetterN(73),
		}},
	}
	for _, t := range invalid {
		s.Run(t.name, func() {
			res := s.request(http.MethodPut, url, s.token(regularUserID), t.body)
			s.Equal(http.StatusUnprocessableEntity, res.StatusCode)
		})
	}

	s.Run("no token", func() {
		res := s.request(http.MethodPut, url, "",
			map[string]string{"oldPassword": oldPassword, "newPassword": newPassword})
		s.Equal(http.StatusUnauthorized, res.StatusCode)
	})
}

func (s *UsersHandlerTestSuite) TestAdminRoutes() {
	s.mockUserService.EXPECT().GetAll(gomock.Any()).
		Return([]domain.User{{ID: regularUserID}, {ID: adminUserID}}, nil).Times(1)
	s.mockUserService.EXPECT().SetRole(gomock.Any(), regularUserID, domain.RoleMerchant).
		Return(&domain.User{ID: regularUserID, Role: domain.RoleMerchant}, nil).Times(1)

	s.Run("admin lists users", func() {
		res := s.request(http.MethodGet, RouteGroup+UsersRoute, s.token(adminUserID), nil)
		s.Equal(http.StatusOK, res.StatusCode)
		var resp []UserResponse
		s.Require().NoError(testutils.DecodeJSON(res, &resp))
		s.Len(resp, 2)
	})
	s.Run("admin shows user", func() {
		res := s.request(http.MethodGet, RouteGroup+"/users/1", s.token(adminUserID), nil)
		s.Equal(http.StatusOK, res.StatusCode)
	})
	s.Run("merchant cannot list users", func() {
		res := s.request(http.MethodGet, RouteGroup+UsersRoute, s.token(merchantUserID), nil)
		s.Equal(http.StatusForbidden, res.StatusCode)
		s.Equal("forbidden for your role", s.errorText(res))
	})
	s.Run("admin sets role", func() {
		res := s.request(http.MethodPut, RouteGroup+"/users/1/role", s.token(adminUserID),
			map[string]string{"role": "merchant"})
		s.Equal(http.StatusOK, res.StatusCode)
	})
	s.Run("unknown role", func() {
		res := s.request(http.MethodPut, RouteGroup+"/users/1/role", s.token(adminUserID),
			map[string]string{"role": "superuser"})
		s.Equal(http.StatusUnprocessableEntity, res.StatusCode)
	})
	s.Run("user cannot set role", func() {
		res := s.request(http.MethodPut, RouteGroup+"/users/1/role", s.token(regularUserID),
			map[string]string{"role": "admin"})
		s.Equal(http.StatusForbidden, res.StatusCode)
	})
}

func tokensExpired(secret []byte) (string, error) {
	return tokens.GenerateUserJWT(regularUserID, -time.Minute, secret)
}
