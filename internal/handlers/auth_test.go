package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spotdesk/internal/testutil"
)

const testSecret = "test-secret"

func newAuthRouter(t *testing.T, secret string) *testutil.HTTPTestHelper {
	helper := testutil.NewHTTPTestHelper(t)
	router := gin.New()
	router.Use(JWTAuth(secret))
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	helper.SetRouter(router)
	return helper
}

func TestJWTAuth(t *testing.T) {
	valid, err := IssueToken(testSecret, "desk", time.Hour)
	require.NoError(t, err)

	expired, err := IssueToken(testSecret, "desk", -time.Minute)
	require.NoError(t, err)

	wrongKey, err := IssueToken("other-secret", "desk", time.Hour)
	require.NoError(t, err)

	wrongAlg, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject: "desk",
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	testCases := []struct {
		name           string
		header         string
		expectedStatus int
		expectedError  string
	}{
		{name: "valid token", header: "Bearer " + valid, expectedStatus: http.StatusOK},
		{name: "lowercase scheme", header: "bearer " + valid, expectedStatus: http.StatusOK},
		{name: "missing header", header: "", expectedStatus: http.StatusUnauthorized, expectedError: "Missing bearer token"},
		{name: "basic scheme", header: "Basic Zm9vOmJhcg==", expectedStatus: http.StatusUnauthorized, expectedError: "Missing bearer token"},
		{name: "expired", header: "Bearer " + expired, expectedStatus: http.StatusUnauthorized, expectedError: "Token expired"},
		{name: "wrong key", header: "Bearer " + wrongKey, expectedStatus: http.StatusUnauthorized, expectedError: "Invalid token"},
		{name: "wrong algorithm", header: "Bearer " + wrongAlg, expectedStatus: http.StatusUnauthorized, expectedError: "Invalid token"},
		{name: "no expiry", header: "Bearer " + noExpiry, expectedStatus: http.StatusUnauthorized, expectedError: "Invalid token"},
		{name: "garbage", header: "Bearer not.a.jwt", expectedStatus: http.StatusUnauthorized, expectedError: "Invalid token"},
	}

	helper := newAuthRouter(t, testSecret)
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			headers := map[string]string{}
			if tc.header != "" {
				headers["Authorization"] = tc.header
			}
			resp := helper.GetWithHeaders("/ping", headers)

			if tc.expectedError == "" {
				assert.Equal(t, tc.expectedStatus, resp.Code)
				return
			}
			helper.AssertErrorResponse(resp, tc.expectedStatus, tc.expectedError)
		})
	}
}

func TestJWTAuth_DisabledWithoutSecret(t *testing.T) {
	helper := newAuthRouter(t, "")

	resp := helper.GetJSON("/ping")
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestRegisterRoutes_RequiresTokenWhenSecretSet(t *testing.T) {
	helper := testutil.NewHTTPTestHelper(t)
	router := gin.New()
	RegisterRoutes(router, Handlers{
		Health: NewHealthHandler(map[string]HealthCheck{}),
	}, testSecret)
	helper.SetRouter(router)

	resp := helper.GetJSON("/api/v1/health")
	helper.AssertErrorResponse(resp, http.StatusUnauthorized, "Missing bearer token")

	token, err := IssueToken(testSecret, "desk", time.Minute)
	require.NoError(t, err)
	resp = helper.WithBearer(token).GetJSON("/api/v1/health")
	assert.Equal(t, http.StatusOK, resp.Code)
}
