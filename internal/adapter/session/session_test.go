package session

import (
	"context"
	"testing"
	"time"

	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/suite"

	"taskmanager/internal/core/domain"
)

type MemoryResolverSuite struct {
	suite.Suite
	resolver *MemoryResolver
}

func (s *MemoryResolverSuite) SetupTest() {
	s.resolver = NewMemoryResolver()
}

func TestMemoryResolverSuite(t *testing.T) {
	RegisterTestingT(t)
	suite.Run(t, new(MemoryResolverSuite))
}

func (s *MemoryResolverSuite) TestResolvesLiveSession() {
	s.resolver.Put("abc", "7", time.Minute)

	userId, err := s.resolver.Resolve(context.Background(), "abc")

	Expect(err).To(BeNil())
	Expect(userId).To(Equal(7))
}

func (s *MemoryResolverSuite) TestAbsentSessionFails() {
	_, err := s.resolver.Resolve(context.Background(), "missing")

	Expect(err).To(MatchError(domain.ErrNoSession))
}

func (s *MemoryResolverSuite) TestExpiredSessionIndistinguishableFromAbsent() {
	s.resolver.Put("abc", "7", -time.Second)

	_, err := s.resolver.Resolve(context.Background(), "abc")

	Expect(err).To(MatchError(domain.ErrNoSession))
}

func (s *MemoryResolverSuite) TestMalformedValueFailsClosed() {
	s.resolver.Put("abc", "not-a-number", time.Minute)

	_, err := s.resolver.Resolve(context.Background(), "abc")

	Expect(err).To(MatchError(domain.ErrNoSession))
}

func (s *MemoryResolverSuite) TestEmptyValueFailsClosed() {
	s.resolver.Put("abc", "", time.Minute)

	_, err := s.resolver.Resolve(context.Background(), "abc")

	Expect(err).To(MatchError(domain.ErrNoSession))
}

func (s *MemoryResolverSuite) TestNonPositiveUserIdFailsClosed() {
	s.resolver.Put("abc", "0", time.Minute)

	_, err := s.resolver.Resolve(context.Background(), "abc")

	Expect(err).To(MatchError(domain.ErrNoSession))
}

func (s *MemoryResolverSuite) TestEmptySessionIdFails() {
	_, err := s.resolver.Resolve(context.Background(), "")

	Expect(err).To(MatchError(domain.ErrNoSession))
}

func (s *MemoryResolverSuite) TestDroppedSessionFails() {
	s.resolver.Put("abc", "7", time.Minute)
	s.resolver.Drop("abc")

	_, err := s.resolver.Resolve(context.Background(), "abc")

	Expect(err).To(MatchError(domain.ErrNoSession))
}
