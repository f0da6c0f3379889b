package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/suite"

	"taskmanager/internal/adapter/database/sqlite"
	"taskmanager/internal/adapter/database/sqlite/repository"
	"taskmanager/internal/core/domain"
	"taskmanager/internal/core/model/request"
	"taskmanager/internal/core/port"
	"taskmanager/pkg/auth"
	"taskmanager/pkg/test"
)

type AuthServiceSuite struct {
	suite.Suite
	DB     *sql.DB
	Repo   port.UserRepository
	Tokens *auth.JWT
	Svc    *AuthService
}

func (s *AuthServiceSuite) SetupTest() {
	s.DB = test.InitTestDB()
	s.Repo = repository.NewUserRepository(sqlite.Wrap(s.DB))
	s.Tokens = auth.NewJWT("test-secret", time.Minute)
	s.Svc = NewAuthService(s.Repo, s.Tokens)
}

func (s *AuthServiceSuite) TearDownTest() {
	if s.DB != nil {
		s.DB.Close()
	}
}

func TestAuthServiceSuite(t *testing.T) {
	RegisterTestingT(t)
	suite.Run(t, new(AuthServiceSuite))
}

func (s *AuthServiceSuite) register() (*domain.User, string) {
	user, token, err := s.Svc.Registration(context.Background(), &request.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "12345678",
	})

	Expect(err).To(BeNil())

	return user, token
}

func (s *AuthServiceSuite) TestRegistrationReturnsUsableToken() {
	user, token := s.register()

	Expect(user.ID).To(BeNumerically(">", 0))

	userId, err := s.Tokens.Verify(token)

	Expect(err).To(BeNil())
	Expect(userId).To(Equal(user.ID))
}

func (s *AuthServiceSuite) TestRegistrationStoresHashedPassword() {
	user, _ := s.register()

	Expect(user.PasswordHash).NotTo(Equal("12345678"))
	Expect(user.PasswordHash).NotTo(BeEmpty())
}

func (s *AuthServiceSuite) TestDuplicateRegistrationIsUserExists() {
	s.register()

	_, _, err := s.Svc.Registration(context.Background(), &request.RegisterRequest{
		Username: "alice",
		Email:    "other@example.com",
		Password: "12345678",
	})

	Expect(err).To(MatchError(domain.ErrUserExists))
}

func (s *AuthServiceSuite) TestAuthenticateWithValidCredentials() {
	registered, _ := s.register()

	user, token, err := s.Svc.Authenticate(context.Background(), &request.LoginRequest{
		Email:    "alice@example.com",
		Password: "12345678",
	})

	Expect(err).To(BeNil())
	Expect(user.ID).To(Equal(registered.ID))

	userId, err := s.Tokens.Verify(token)

	Expect(err).To(BeNil())
	Expect(userId).To(Equal(registered.ID))
}

func (s *AuthServiceSuite) TestAuthenticateWithWrongPassword() {
	s.register()

	_, _, err := s.Svc.Authenticate(context.Background(), &request.LoginRequest{
		Email:    "alice@example.com",
		Password: "wrong-password",
	})

	Expect(err).To(MatchError(domain.ErrUserNotFound))
}

func (s *AuthServiceSuite) TestAuthenticateUnknownEmail() {
	_, _, err := s.Svc.Authenticate(context.Background(), &request.LoginRequest{
		Email:    "nobody@example.com",
		Password: "12345678",
	})

	Expect(err).To(MatchError(domain.ErrUserNotFound))
}
