//go:build e2e

package auth_test

import (
	"net/http"
	"testing"

	resdto "solestore/internal/handler/dto/response"
	"solestore/tests/common/authtest"
	"solestore/tests/common/builder"
	"solestore/tests/common/dbtest"
	"solestore/tests/common/httptest"
	"solestore/tests/e2e"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const (
	registerURL = "/api/auth/register"
	loginURL    = "/api/auth/login"
	logoutURL   = "/api/auth/logout"
	refreshURL  = "/api/auth/refresh"
	meURL       = "/api/auth/me"
)

type authSuite struct {
	e2e.SharedSuite
}

func TestAuthSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(authSuite))
}

func (s *authSuite) SetupSubTest() {
	s.SharedSuite.SetupSubTest()

	dbtest.CreateTestUser(s.T(), s.DB, "customer@example.com", "customer")
	dbtest.CreateTestUser(s.T(), s.DB, "admin@example.com", "admin")
	dbtest.CreateTestUser(s.T(), s.DB, "inactive@example.com", "customer")

	ctx := s.T().Context()
	_, err := s.DB.Exec(ctx, "UPDATE users SET is_active = false WHERE email = 'inactive@example.com'")
	require.NoError(s.T(), err)
}

func (s *authSuite) TestLogin() {
	testCases := []struct {
		name           string
		email          string
		password       string
		expectedStatus int
	}{
		{
			name:           "valid credentials",
			email:          "customer@example.com",
			password:       dbtest.TestPassword,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "unknown user",
			email:          "nobody@example.com",
			password:       dbtest.TestPassword,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "wrong password",
			email:          "customer@example.com",
			password:       "wrong-password",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "deactivated account",
			email:          "inactive@example.com",
			password:       dbtest.TestPassword,
			expectedStatus: http.StatusForbidden,
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			body := (&builder.AuthBuilder{Email: tc.email, Password: tc.password}).BuildLoginDTO()
			rec := httptest.PerformRequest(s.T(), s.Router, http.MethodPost, loginURL, body, "")

			s.Equal(tc.expectedStatus, rec.Code)

			if tc.expectedStatus == http.StatusOK {
				var response resdto.LoginResponse
				httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
				s.NotEmpty(response.AccessToken)
				s.Equal(tc.email, response.User.Email)

				access := httptest.ExtractCookie(rec, "access_token")
				s.Require().NotNil(access)
				s.True(access.HttpOnly)
				s.NotNil(httptest.ExtractCookie(rec, "refresh_token"))
			}
		})
	}
}

func (s *authSuite) TestRegister() {
	s.Run("creates an account that can log in", func() {
		body := builder.NewAuthBuilder().With(func(b *builder.AuthBuilder) {
			b.Email = "fresh@example.com"
		}).BuildRegisterDTO()

		rec := httptest.PerformRequest(s.T(), s.Router, http.MethodPost, registerURL, body, "")

		var response resdto.LoginResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusCreated, &response)
		s.Equal("fresh@example.com", response.User.Email)
		s.Equal("customer", response.User.Role)

		token := authtest.LoginUser(s.T(), s.Router, "fresh@example.com", body.Password)
		s.NotEmpty(token)
	})

	s.Run("rejects an already registered email", func() {
		body := builder.NewAuthBuilder().With(func(b *builder.AuthBuilder) {
			b.Email = "customer@example.com"
		}).BuildRegisterDTO()

		rec := httptest.PerformRequest(s.T(), s.Router, http.MethodPost, registerURL, body, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusConflict, "Email is already registered")
	})
}

func (s *authSuite) TestMe() {
	s.Run("returns the authenticated user", func() {
		token := authtest.LoginUser(s.T(), s.Router, "customer@example.com", dbtest.TestPassword)

		rec := httptest.PerformRequest(s.T(), s.Router, http.MethodGet, meURL, nil, token)

		var response map[string]any
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.Equal("customer@example.com", response["email"])
		s.Equal("customer", response["role"])
	})

	s.Run("rejects requests without a token", func() {
		rec := httptest.PerformRequest(s.T(), s.Router, http.MethodGet, meURL, nil, "")
		s.Equal(http.StatusUnauthorized, rec.Code)
	})
}

func (s *authSuite) TestRefresh() {
	s.Run("rotates the session from the refresh cookie", func() {
		body := (&builder.AuthBuilder{Email: "customer@example.com", Password: dbtest.TestPassword}).BuildLoginDTO()
		loginRec := httptest.PerformRequest(s.T(), s.Router, http.MethodPost, loginURL, body, "")
		s.Require().Equal(http.StatusOK, loginRec.Code)

		cookies := httptest.ExtractCookies(loginRec)
		rec := httptest.PerformRequestWithCookies(s.T(), s.Router, http.MethodPost, refreshURL, nil, cookies, "")

		var response resdto.RefreshResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.NotEmpty(response.AccessToken)
	})

	s.Run("rejects a refresh without a token", func() {
		rec := httptest.PerformRequest(s.T(), s.Router, http.MethodPost, refreshURL, nil, "")
		s.Equal(http.StatusUnauthorized, rec.Code)
	})
}

func (s *authSuite) TestLogout() {
	s.Run("clears the session cookies", func() {
		token := authtest.LoginUser(s.T(), s.Router, "customer@example.com", dbtest.TestPassword)

		rec := httptest.PerformRequest(s.T(), s.Router, http.MethodPost, logoutURL, nil, token)
		s.Equal(http.StatusNoContent, rec.Code)

		access := httptest.ExtractCookie(rec, "access_token")
		s.Require().NotNil(access)
		s.Empty(access.Value)
	})
}
