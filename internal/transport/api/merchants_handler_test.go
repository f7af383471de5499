package api

import (
	"net/http"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/fsdevblog/groph-points/internal/domain"
	"github.com/fsdevblog/groph-points/internal/repository/repoargs"
	"github.com/fsdevblog/groph-points/internal/service"
	"github.com/fsdevblog/groph-points/internal/transport/api/testutils"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type MerchantsHandlerTestSuite struct {
	handlerSuite
}

func TestMerchantsHandlerSuite(t *testing.T) {
	suite.Run(t, new(MerchantsHandlerTestSuite))
}

func merchantBody(name, pct string) map[string]any {
	return map[string]any{
		"name":             name,
		"pointsPercentage": pct,
		"address": map[string]string{
			"street":  "Main st. 1",
			"zip":     "12345",
			"city":    "Oslo",
			"country": "Norway",
		},
	}
}

func merchantArgs(name, pct string) service.MerchantArgs {
	return service.MerchantArgs{
		Name:             name,
		PointsPercentage: decimal.RequireFromString(pct),
		Address: repoargs.SaveAddress{
			Street:  "Main st. 1",
			Zip:     "12345",
			City:    "Oslo",
			Country: "Norway",
		},
	}
}

// merchantArgsMatcher сравнивает decimal по значению, а не по представлению.
type merchantArgsMatcher struct {
	want service.MerchantArgs
}

func (m merchantArgsMatcher) Matches(x any) bool {
	got, ok := x.(service.MerchantArgs)
	if !ok {
		return false
	}
	return got.Name == m.want.Name &&
		got.Address == m.want.Address &&
		got.PointsPercentage.Equal(m.want.PointsPercentage)
}

func (m merchantArgsMatcher) String() string {
	return "merchant args " + m.want.Name + " " + m.want.PointsPercentage.String()
}

func (s *MerchantsHandlerTestSuite) TestCreate() {
	name := gofakeit.Company()
	s.mockMerchantService.EXPECT().
		Create(gomock.Any(), merchantUserID, merchantArgsMatcher{merchantArgs(name, "0.02")}).
		Return(&domain.Merchant{
			ID:               1,
			UserID:           merchantUserID,
			Name:             name,
			PointsPercentage: decimal.RequireFromString("0.02"),
			Address:          &domain.Address{ID: 1, City: "Oslo"},
		}, nil).Times(1)
	s.mockMerchantService.EXPECT().
		Create(gomock.Any(), adminUserID, merchantArgsMatcher{merchantArgs(name, "0.1")}).
		Return(&domain.Merchant{ID: 2, UserID: adminUserID, Name: name}, nil).Times(1)

	s.Run("merchant creates", func() {
		res := s.request(http.MethodPost, RouteGroup+MerchantsRoute, s.token(merchantUserID), merchantBody(name, "0.02"))
		s.Equal(http.StatusCreated, res.StatusCode)

		var resp MerchantResponse
		s.Require().NoError(testutils.DecodeJSON(res, &resp))
		s.True(resp.PointsPercentage.Equal(decimal.RequireFromString("0.02")))
		s.Require().NotNil(resp.Address)
		s.Equal("Oslo", resp.Address.City)
	})
	s.Run("admin creates", func() {
		res := s.request(http.MethodPost, RouteGroup+MerchantsRoute, s.token(adminUserID), merchantBody(name, "0.1"))
		s.Equal(http.StatusCreated, res.StatusCode)
	})
	s.Run("user forbidden", func() {
		res := s.request(http.MethodPost, RouteGroup+MerchantsRoute, s.token(regularUserID), merchantBody(name, "0.02"))
		s.Equal(http.StatusForbidden, res.StatusCode)
	})
	s.Run("negative percentage", func() {
		res := s.request(http.MethodPost, RouteGroup+MerchantsRoute, s.token(merchantUserID), merchantBody(name, "-0.5"))
		s.Equal(http.StatusUnprocessableEntity, res.StatusCode)
	})
	s.Run("percentage above one", func() {
		res := s.request(http.MethodPost, RouteGroup+MerchantsRoute, s.token(merchantUserID), merchantBody(name, "1.5"))
		s.Equal(http.StatusUnprocessableEntity, res.StatusCode)
	})
	s.Run("no address", func() {
		res := s.request(http.MethodPost, RouteGroup+MerchantsRoute, s.token(merchantUserID),
			map[string]any{"name": name, "pointsPercentage": "0.02"})
		s.Equal(http.StatusUnprocessableEntity, res.StatusCode)
	})
}

func (s *MerchantsHandlerTestSuite) TestUpdateAndDelete() {
	name := gofakeit.Company()
	owner := service.Actor{ID: merchantUserID, Role: domain.RoleMerchant}
	stranger := service.Actor{ID: adminUserID + 100, Role: domain.RoleMerchant}

	s.mockMerchantService.EXPECT().Update(gomock.Any(), owner, int64(1), merchantArgsMatcher{merchantArgs(name, "0.05")}).
		Return(&domain.Merchant{ID: 1, UserID: merchantUserID, Name: name}, nil).Times(1)
	s.mockMerchantService.EXPECT().Delete(gomock.Any(), owner, int64(1)).Return(nil).Times(1)
	s.mockMerchantService.EXPECT().Delete(gomock.Any(), owner, int64(2)).Return(domain.ErrNotMerchantOwner).Times(1)
	s.mockMerchantService.EXPECT().Delete(gomock.Any(), owner, int64(3)).Return(domain.ErrMerchantNotFound).Times(1)
	s.mockUserService.EXPECT().FindByID(gomock.Any(), stranger.ID).
		Return(&domain.User{ID: stranger.ID, Role: domain.RoleMerchant}, nil).AnyTimes()
	s.mockMerchantService.EXPECT().Delete(gomock.Any(), stranger, int64(1)).Return(domain.ErrNotMerchantOwner).Times(1)

	s.Run("owner updates", func() {
		res := s.request(http.MethodPut, RouteGroup+"/merchants/1", s.token(merchantUserID), merchantBody(name, "0.05"))
		s.Equal(http.StatusOK, res.StatusCode)
	})
	s.Run("owner deletes", func() {
		res := s.request(http.MethodDelete, RouteGroup+"/merchants/1", s.token(merchantUserID), nil)
		s.Equal(http.StatusNoContent, res.StatusCode)
	})
	s.Run("not owner", func() {
		res := s.request(http.MethodDelete, RouteGroup+"/merchants/2", s.token(merchantUserID), nil)
		s.Equal(http.StatusForbidden, res.StatusCode)
	})
	s.Run("another merchant", func() {
		res := s.request(http.MethodDelete, RouteGroup+"/merchants/1", s.token(stranger.ID), nil)
		s.Equal(http.StatusForbidden, res.StatusCode)
	})
	s.Run("not found", func() {
		res := s.request(http.MethodDelete, RouteGroup+"/merchants/3", s.token(merchantUserID), nil)
		s.Equal(http.StatusNotFound, res.StatusCode)
	})
}

func (s *MerchantsHandlerTestSuite) TestRead() {
	s.mockMerchantService.EXPECT().GetAll(gomock.Any()).
		Return([]domain.Merchant{{ID: 1}, {ID: 2}}, nil).Times(1)
	s.mockMerchantService.EXPECT().FindByID(gomock.Any(), int64(1)).
		Return(&domain.Merchant{ID: 1, Name: "Coffee"}, nil).Times(1)
	s.mockMerchantService.EXPECT().GetByUserID(gomock.Any(), merchantUserID).
		Return([]domain.Merchant{{ID: 1, UserID: merchantUserID}}, nil).Times(1)

	s.Run("list", func() {
		res := s.request(http.MethodGet, RouteGroup+MerchantsRoute, s.token(regularUserID), nil)
		s.Equal(http.StatusOK, res.StatusCode)
		var resp []MerchantResponse
		s.Require().NoError(testutils.DecodeJSON(res, &resp))
		s.Len(resp, 2)
	})
	s.Run("show", func() {
		res := s.request(http.MethodGet, RouteGroup+"/merchants/1", s.token(regularUserID), nil)
		s.Equal(http.StatusOK, res.StatusCode)
	})
	s.Run("mine", func() {
		res := s.request(http.MethodGet, RouteGroup+MyMerchantsRoute, s.token(merchantUserID), nil)
		s.Equal(http.StatusOK, res.StatusCode)
		var resp []MerchantResponse
		s.Require().NoError(testutils.DecodeJSON(res, &resp))
		s.Len(resp, 1)
	})
}

func (s *MerchantsHandlerTestSuite) TestPoints() {
	s.mockPointsService.EXPECT().GetUserPoints(gomock.Any(), regularUserID).
		Return([]domain.PointsBalance{{ID: 1, UserID: regularUserID, MerchantID: 1, Amount: 250}}, nil).Times(1)
	s.mockPointsService.EXPECT().GetUserPointsWithMerchant(gomock.Any(), regularUserID, int64(1)).
		Return(&domain.PointsBalance{ID: 1, UserID: regularUserID, MerchantID: 1, Amount: 250}, nil).Times(1)
	s.mockPointsService.EXPECT().GetUserPointsWithMerchant(gomock.Any(), regularUserID, int64(2)).
		Return(nil, domain.ErrBalanceNotFound).Times(1)

	s.Run("all points", func() {
		res := s.request(http.MethodGet, RouteGroup+MyPointsRoute, s.token(regularUserID), nil)
		s.Equal(http.StatusOK, res.StatusCode)
		var resp []PointsResponse
		s.Require().NoError(testutils.DecodeJSON(res, &resp))
		s.Require().Len(resp, 1)
		s.Equal(int64(250), resp[0].Amount)
	})
	s.Run("points with merchant", func() {
		res := s.request(http.MethodGet, RouteGroup+"/me/points/1", s.token(regularUserID), nil)
		s.Equal(http.StatusOK, res.StatusCode)
	})
	s.Run("no points with merchant", func() {
		res := s.request(http.MethodGet, RouteGroup+"/me/points/2", s.token(regularUserID), nil)
		s.Equal(http.StatusNotFound, res.StatusCode)
		s.Equal("no points on record with this merchant", s.errorText(res))
	})
}
