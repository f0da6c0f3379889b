package handler_test

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/suite"

	"taskmanager/internal/adapter/database/sqlite"
	"taskmanager/internal/adapter/database/sqlite/repository"
	adapterhttp "taskmanager/internal/adapter/http"
	"taskmanager/internal/adapter/http/routes"
	"taskmanager/internal/core/model/response"
	"taskmanager/pkg/auth"
	"taskmanager/pkg/test"
)

type UserHandlerSuite struct {
	suite.Suite
	DB     *sql.DB
	Tokens *auth.JWT
	Router *gin.Engine
}

func (s *UserHandlerSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	s.DB = test.InitTestDB()
	s.Tokens = auth.NewJWT("test-secret", time.Minute)

	container := adapterhttp.NewUserContainer(repository.NewUserRepository(sqlite.Wrap(s.DB)), s.Tokens, nil)

	s.Router = routes.SetupUserRouterForTests(routes.UserHandlersConfig{
		AuthHandler: container.AuthHandler,
		UserHandler: container.UserHandler,
		Tokens:      s.Tokens,
		Users:       container.UserUseCase,
	})
}

func (s *UserHandlerSuite) TearDownTest() {
	if s.DB != nil {
		s.DB.Close()
	}
}

func TestUserHandlerSuite(t *testing.T) {
	RegisterTestingT(t)
	suite.Run(t, new(UserHandlerSuite))
}

func (s *UserHandlerSuite) registerUser(username, email string) string {
	payload := `{"username": "` + username + `", "email": "` + email + `", "password": "12345678"}`

	req, _ := http.NewRequest("POST", "/api/register", strings.NewReader(payload))
	rr := httptest.NewRecorder()

	s.Router.ServeHTTP(rr, req)

	Expect(rr.Code).To(Equal(http.StatusCreated))

	var body struct {
		Data response.TokenResponse `json:"data"`
	}

	Expect(json.Unmarshal(rr.Body.Bytes(), &body)).To(Succeed())

	return body.Data.AccessToken
}

func (s *UserHandlerSuite) performWithToken(method, path, token string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, nil)

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	s.Router.ServeHTTP(rr, req)

	return rr
}

func (s *UserHandlerSuite) TestValidateTokenReturnsCaller() {
	token := s.registerUser("alice", "alice@example.com")

	rr := s.performWithToken("GET", "/api/auth/validate", token)

	Expect(rr.Code).To(Equal(http.StatusOK))

	var body map[string]any

	Expect(json.Unmarshal(rr.Body.Bytes(), &body)).To(Succeed())
	Expect(body["username"]).To(Equal("alice"))
	Expect(body["email"]).To(Equal("alice@example.com"))
}

func (s *UserHandlerSuite) TestProtectedRoutesRejectMissingToken() {
	for _, path := range []string{"/api/auth/validate", "/api/profile", "/api/users"} {
		rr := s.performWithToken("GET", path, "")

		Expect(rr.Code).To(Equal(http.StatusUnauthorized))
		Expect(rr.Header().Get("WWW-Authenticate")).To(Equal("Bearer"))
	}
}

func (s *UserHandlerSuite) TestProtectedRoutesRejectGarbageToken() {
	rr := s.performWithToken("GET", "/api/profile", "not-a-token")

	Expect(rr.Code).To(Equal(http.StatusUnauthorized))
}

func (s *UserHandlerSuite) TestExpiredTokenIsRejected() {
	s.registerUser("alice", "alice@example.com")

	expired := &auth.JWT{Secret: "test-secret", TTL: -time.Minute}
	token, err := expired.Issue(1)

	Expect(err).To(BeNil())

	rr := s.performWithToken("GET", "/api/profile", token)

	Expect(rr.Code).To(Equal(http.StatusUnauthorized))
}

func (s *UserHandlerSuite) TestGetProfile() {
	token := s.registerUser("alice", "alice@example.com")

	rr := s.performWithToken("GET", "/api/profile", token)

	Expect(rr.Code).To(Equal(http.StatusOK))

	var body struct {
		Data response.UserResponse `json:"data"`
	}

	Expect(json.Unmarshal(rr.Body.Bytes(), &body)).To(Succeed())
	Expect(body.Data.Username).To(Equal("alice"))
	Expect(body.Data.Email).To(Equal("alice@example.com"))
	Expect(body.Data.ID).To(BeNumerically(">", 0))
}

func (s *UserHandlerSuite) TestListUsers() {
	token := s.registerUser("alice", "alice@example.com")
	s.registerUser("bob", "bob@example.com")

	rr := s.performWithToken("GET", "/api/users", token)

	Expect(rr.Code).To(Equal(http.StatusOK))

	var body struct {
		Data []response.UserResponse `json:"data"`
	}

	Expect(json.Unmarshal(rr.Body.Bytes(), &body)).To(Succeed())
	Expect(body.Data).To(HaveLen(2))
}
