package tests

import (
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/balaguruva/admin-backend/internal/middleware"
	"github.com/balaguruva/admin-backend/internal/models"
	"github.com/balaguruva/admin-backend/internal/utils"
)

type AuthTestSuite struct {
	apiSuite
}

func (suite *AuthTestSuite) TestAdminLogin() {
	w, body := suite.doJSON(http.MethodPost, "/api/auth/admin/login", map[string]string{
		"email":    adminEmail,
		"password": adminPassword,
	}, "")
	assert.Equal(suite.T(), http.StatusOK, w.Code)
	assert.True(suite.T(), body.Success)

	var auth struct {
		AccessToken string `json:"access_token"`
		Role        string `json:"role"`
		ExpiresIn   int    `json:"expires_in"`
	}
	suite.decode(body.Data, &auth)
	assert.NotEmpty(suite.T(), auth.AccessToken)
	assert.Equal(suite.T(), utils.RoleAdmin, auth.Role)
	assert.Equal(suite.T(), 3600, auth.ExpiresIn)
}

func (suite *AuthTestSuite) TestAdminLoginRejectsBadCredentials() {
	w, body := suite.doJSON(http.MethodPost, "/api/auth/admin/login", map[string]string{
		"email":    adminEmail,
		"password": "guess",
	}, "")
	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
	assert.Equal(suite.T(), "INVALID_CREDENTIALS", body.Code)
	assert.Equal(suite.T(), "Invalid email or password", body.Error)

	w, body = suite.doJSON(http.MethodPost, "/api/auth/admin/login", `{"email":"x@y.z","password":"p","remember":true}`, "")
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
	assert.Equal(suite.T(), "BAD_REQUEST", body.Code)
}

func (suite *AuthTestSuite) TestAdminRoutesRequireToken() {
	w, body := suite.doJSON(http.MethodGet, "/api/users", nil, "")
	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
	assert.Equal(suite.T(), middleware.CodeAuthRequired, body.Code)

	w, body = suite.doJSON(http.MethodGet, "/api/users", nil, "not-a-jwt")
	assert.Equal(suite.T(), http.StatusForbidden, w.Code)
	assert.Equal(suite.T(), middleware.CodeInvalidToken, body.Code)

	w, body = suite.doJSON(http.MethodGet, "/api/users", nil, suite.userToken(uuid.NewString()))
	assert.Equal(suite.T(), http.StatusForbidden, w.Code)
	assert.Equal(suite.T(), middleware.CodeForbidden, body.Code)

	expired, err := utils.GenerateJWT(uuid.NewString(), adminEmail, utils.RoleAdmin, -time.Minute)
	suite.Require().NoError(err)
	w, body = suite.doJSON(http.MethodGet, "/api/users", nil, expired)
	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
	assert.Equal(suite.T(), middleware.CodeTokenExpired, body.Code)
}

func (suite *AuthTestSuite) TestAdminTokenOpensBackOffice() {
	suite.db.SeedUser(models.User{Email: "first@example.com"})
	suite.db.SeedUser(models.User{Email: "second@example.com", Name: "Meera"})

	w, body := suite.doJSON(http.MethodGet, "/api/users", nil, suite.adminToken())
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var users []models.UserSummary
	suite.decode(body.Data, &users)
	assert.Len(suite.T(), users, 2)
	names := []string{users[0].Name, users[1].Name}
	assert.ElementsMatch(suite.T(), []string{"Guest", "Meera"}, names)
}

func (suite *AuthTestSuite) TestPublicRoutesStayOpen() {
	w, _ := suite.doJSON(http.MethodGet, "/api/products", nil, "")
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	w, _ = suite.doJSON(http.MethodGet, "/health", nil, "")
	assert.Equal(suite.T(), http.StatusOK, w.Code)
}

func TestAuthTestSuite(t *testing.T) {
	suite.Run(t, &AuthTestSuite{apiSuite: apiSuite{requireAuth: true}})
}
