package memory

import (
	"context"
	"testing"
	"time"

	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/suite"

	"taskmanager/internal/core/port"
)

type MemoryCacheSuite struct {
	suite.Suite
	cache *Cache
}

func (s *MemoryCacheSuite) SetupTest() {
	s.cache = New()
}

func TestMemoryCacheSuite(t *testing.T) {
	RegisterTestingT(t)
	suite.Run(t, new(MemoryCacheSuite))
}

func (s *MemoryCacheSuite) TestSetAndGet() {
	ctx := context.Background()

	err := s.cache.Set(ctx, "key", []byte("value"), time.Minute)

	Expect(err).To(BeNil())

	value, err := s.cache.Get(ctx, "key")

	Expect(err).To(BeNil())
	Expect(value).To(Equal([]byte("value")))
}

func (s *MemoryCacheSuite) TestMissingKeyIsCacheMiss() {
	_, err := s.cache.Get(context.Background(), "missing")

	Expect(err).To(MatchError(port.ErrCacheMiss))
}

func (s *MemoryCacheSuite) TestDeleteRemovesEntry() {
	ctx := context.Background()

	s.cache.Set(ctx, "key", []byte("value"), time.Minute)
	s.cache.Delete(ctx, "key")

	_, err := s.cache.Get(ctx, "key")

	Expect(err).To(MatchError(port.ErrCacheMiss))
}

func (s *MemoryCacheSuite) TestEntryExpires() {
	ctx := context.Background()

	s.cache.Set(ctx, "key", []byte("value"), time.Millisecond)

	Eventually(func() error {
		_, err := s.cache.Get(ctx, "key")
		return err
	}).Should(MatchError(port.ErrCacheMiss))
}

func (s *MemoryCacheSuite) TestStoredValueIsCopied() {
	ctx := context.Background()

	original := []byte("value")
	s.cache.Set(ctx, "key", original, time.Minute)

	original[0] = 'x'

	value, err := s.cache.Get(ctx, "key")

	Expect(err).To(BeNil())
	Expect(value).To(Equal([]byte("value")))
}
