package tests

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"

	"github.com/balaguruva/admin-backend/internal/config"
	"github.com/balaguruva/admin-backend/internal/i18n"
	"github.com/balaguruva/admin-backend/internal/repository/memory"
	"github.com/balaguruva/admin-backend/internal/router"
	"github.com/balaguruva/admin-backend/internal/utils"
)

const (
	adminEmail    = "admin@store.test"
	adminPassword = "let-me-in"
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{1}, 64)...)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Meta    json.RawMessage `json:"meta"`
	Code    string          `json:"code"`
	Error   string          `json:"error"`
}

// apiSuite boots the full router on the memory store for every test.
type apiSuite struct {
	suite.Suite
	requireAuth bool

	db  *memory.DB
	cfg *config.Config
	app *router.App
}

func (s *apiSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	logrus.SetOutput(io.Discard)
	s.Require().NoError(i18n.Initialize())
}

func (s *apiSuite) SetupTest() {
	hash, err := utils.HashPassword(adminPassword)
	s.Require().NoError(err)

	s.cfg = &config.Config{
		Environment: "test",
		JWT:         config.JWTConfig{SecretKey: "api-test-secret", AccessTokenTTL: 1},
		Admin:       config.AdminConfig{Email: adminEmail, PasswordHash: hash, RequireAuth: s.requireAuth},
		Orders:      config.OrderConfig{StandardDeliveryPrice: 0, ExpressDeliveryPrice: 99},
		Uploads:     config.UploadConfig{MaxImageBytes: 1 << 10},
		Contacts:    config.ContactConfig{TTL: 24 * time.Hour},
		RateLimit:   config.RateLimitConfig{Enabled: false},
	}
	s.db = memory.New()
	s.app = router.Initialize(memory.NewStore(s.db), s.cfg, router.Infrastructure{})
}

func (s *apiSuite) TearDownTest() {
	s.app.Close()
}

func (s *apiSuite) serve(req *http.Request, token string) (*httptest.ResponseRecorder, envelope) {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.app.Engine.ServeHTTP(w, req)

	var body envelope
	if w.Header().Get("Content-Type") != "" && bytes.HasPrefix(bytes.TrimSpace(w.Body.Bytes()), []byte("{")) {
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	}
	return w, body
}

func (s *apiSuite) doJSON(method, path string, payload interface{}, token string) (*httptest.ResponseRecorder, envelope) {
	var body io.Reader
	switch p := payload.(type) {
	case nil:
	case string:
		body = bytes.NewBufferString(p)
	default:
		data, err := json.Marshal(p)
		s.Require().NoError(err)
		body = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	return s.serve(req, token)
}

func (s *apiSuite) doForm(method, path string, fields map[string]string, image []byte, token string) (*httptest.ResponseRecorder, envelope) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		s.Require().NoError(w.WriteField(k, v))
	}
	if image != nil {
		part, err := w.CreateFormFile("image", "product.png")
		s.Require().NoError(err)
		_, err = part.Write(image)
		s.Require().NoError(err)
	}
	s.Require().NoError(w.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return s.serve(req, token)
}

func (s *apiSuite) decode(raw json.RawMessage, out interface{}) {
	s.Require().NoError(json.Unmarshal(raw, out), string(raw))
}

func (s *apiSuite) userToken(userID string) string {
	token, err := utils.GenerateJWT(userID, "shopper@example.com", "", time.Hour)
	s.Require().NoError(err)
	return token
}

func (s *apiSuite) adminToken() string {
	w, body := s.doJSON(http.MethodPost, "/api/auth/admin/login", map[string]string{
		"email":    adminEmail,
		"password": adminPassword,
	}, "")
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var auth struct {
		AccessToken string `json:"access_token"`
	}
	s.decode(body.Data, &auth)
	return auth.AccessToken
}

func productFields() map[string]string {
	return map[string]string{
		"name":        "Darjeeling",
		"description": "First flush",
		"mrp":         "200",
		"discount":    "10",
		"category":    "Tea",
		"stock":       "12",
	}
}
