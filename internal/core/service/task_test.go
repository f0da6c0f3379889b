package service

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"

	"taskmanager/internal/adapter/cache/memory"
	"taskmanager/internal/adapter/database/sqlite"
	"taskmanager/internal/adapter/database/sqlite/repository"
	"taskmanager/internal/core/domain"
	"taskmanager/internal/core/port"
	"taskmanager/pkg/telemetry"
	"taskmanager/pkg/test"
)

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *recordingNotifier) Notify(recipient, subject, body string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.messages = append(n.messages, subject)
}

func (n *recordingNotifier) subjects() []string {
	n.mu.Lock()
	defer n.mu.Unlock()

	return append([]string{}, n.messages...)
}

type TaskServiceSuite struct {
	suite.Suite
	DB       *sql.DB
	Repo     port.TaskRepository
	Cache    port.CacheRepository
	Notifier *recordingNotifier
	Svc      *TaskService
}

func (s *TaskServiceSuite) SetupTest() {
	s.DB = test.InitTestDB()
	s.Repo = repository.NewTaskRepository(sqlite.Wrap(s.DB))
	s.Cache = memory.New()
	s.Notifier = &recordingNotifier{}
	s.Svc = NewTaskService(s.Repo, s.Cache, s.Notifier)
}

func (s *TaskServiceSuite) TearDownTest() {
	if s.DB != nil {
		s.DB.Close()
	}
}

func TestTaskServiceSuite(t *testing.T) {
	RegisterTestingT(t)
	suite.Run(t, new(TaskServiceSuite))
}

func (s *TaskServiceSuite) TestListPopulatesCacheOnMiss() {
	ctx := context.Background()

	_, err := s.Svc.Create(ctx, 1, "write report", "")

	Expect(err).To(BeNil())

	_, err = s.Cache.Get(ctx, ListCacheKey(1))

	Expect(err).To(MatchError(port.ErrCacheMiss))

	tasks, err := s.Svc.ListTasks(ctx, 1)

	Expect(err).To(BeNil())
	Expect(tasks).To(HaveLen(1))
	Expect(tasks[0].Title).To(Equal("write report"))

	_, err = s.Cache.Get(ctx, ListCacheKey(1))

	Expect(err).To(BeNil())
}

func (s *TaskServiceSuite) TestWarmCacheServesWithoutStore() {
	ctx := context.Background()

	_, err := s.Svc.Create(ctx, 1, "write report", "")

	Expect(err).To(BeNil())

	_, err = s.Svc.ListTasks(ctx, 1)

	Expect(err).To(BeNil())

	// A write behind the cache is invisible until the entry expires
	// or a mutation goes through this service.
	_, err = s.Repo.Create(ctx, domain.Task{
		UserId:    1,
		Title:     "sneaked in",
		Status:    domain.TaskStatusOpen,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	})

	Expect(err).To(BeNil())

	tasks, err := s.Svc.ListTasks(ctx, 1)

	Expect(err).To(BeNil())
	Expect(tasks).To(HaveLen(1))
}

func (s *TaskServiceSuite) TestCreateInvalidatesCache() {
	ctx := context.Background()

	_, err := s.Svc.Create(ctx, 1, "first", "")

	Expect(err).To(BeNil())

	_, err = s.Svc.ListTasks(ctx, 1)

	Expect(err).To(BeNil())

	_, err = s.Svc.Create(ctx, 1, "second", "")

	Expect(err).To(BeNil())

	_, err = s.Cache.Get(ctx, ListCacheKey(1))

	Expect(err).To(MatchError(port.ErrCacheMiss))

	tasks, err := s.Svc.ListTasks(ctx, 1)

	Expect(err).To(BeNil())
	Expect(tasks).To(HaveLen(2))
}

func (s *TaskServiceSuite) TestMarkDoneInvalidatesCacheAndNotifies() {
	ctx := context.Background()

	task, err := s.Svc.Create(ctx, 1, "write report", "alice@example.com")

	Expect(err).To(BeNil())

	_, err = s.Svc.ListTasks(ctx, 1)

	Expect(err).To(BeNil())

	done, err := s.Svc.MarkDone(ctx, task.ID, 1, "alice@example.com")

	Expect(err).To(BeNil())
	Expect(done.Status).To(Equal(domain.TaskStatusDone))

	_, err = s.Cache.Get(ctx, ListCacheKey(1))

	Expect(err).To(MatchError(port.ErrCacheMiss))

	tasks, err := s.Svc.ListTasks(ctx, 1)

	Expect(err).To(BeNil())
	Expect(tasks[0].Status).To(Equal("done"))

	Expect(s.Notifier.subjects()).To(Equal([]string{"Task created", "Task completed"}))
}

func (s *TaskServiceSuite) TestReactivateNotifies() {
	ctx := context.Background()

	task, err := s.Svc.Create(ctx, 1, "write report", "alice@example.com")

	Expect(err).To(BeNil())

	_, err = s.Svc.MarkDone(ctx, task.ID, 1, "alice@example.com")

	Expect(err).To(BeNil())

	reopened, err := s.Svc.Reactivate(ctx, task.ID, 1, "alice@example.com")

	Expect(err).To(BeNil())
	Expect(reopened.Status).To(Equal(domain.TaskStatusOpen))

	Expect(s.Notifier.subjects()).To(ContainElement("Task reactivated"))
}

func (s *TaskServiceSuite) TestDeleteInvalidatesCache() {
	ctx := context.Background()

	task, err := s.Svc.Create(ctx, 1, "write report", "")

	Expect(err).To(BeNil())

	_, err = s.Svc.ListTasks(ctx, 1)

	Expect(err).To(BeNil())

	Expect(s.Svc.Delete(ctx, task.ID, 1)).To(Succeed())

	_, err = s.Cache.Get(ctx, ListCacheKey(1))

	Expect(err).To(MatchError(port.ErrCacheMiss))
}

func (s *TaskServiceSuite) TestFailedMutationLeavesCacheIntact() {
	ctx := context.Background()

	_, err := s.Svc.Create(ctx, 1, "write report", "")

	Expect(err).To(BeNil())

	_, err = s.Svc.ListTasks(ctx, 1)

	Expect(err).To(BeNil())

	_, err = s.Svc.MarkDone(ctx, 999, 1, "")

	Expect(err).To(MatchError(domain.ErrTaskNotFound))

	err = s.Svc.Delete(ctx, 999, 1)

	Expect(err).To(MatchError(domain.ErrTaskNotFound))

	_, err = s.Cache.Get(ctx, ListCacheKey(1))

	Expect(err).To(BeNil())
}

func (s *TaskServiceSuite) TestFailedMutationDoesNotNotify() {
	ctx := context.Background()

	_, err := s.Svc.MarkDone(ctx, 999, 1, "alice@example.com")

	Expect(err).To(MatchError(domain.ErrTaskNotFound))
	Expect(s.Notifier.subjects()).To(BeEmpty())
}

func (s *TaskServiceSuite) TestUndecodableCacheEntryIsEvicted() {
	ctx := context.Background()

	_, err := s.Svc.Create(ctx, 1, "write report", "")

	Expect(err).To(BeNil())

	Expect(s.Cache.Set(ctx, ListCacheKey(1), []byte("{garbage"), time.Minute)).To(Succeed())

	tasks, err := s.Svc.ListTasks(ctx, 1)

	Expect(err).To(BeNil())
	Expect(tasks).To(HaveLen(1))

	cached, err := s.Cache.Get(ctx, ListCacheKey(1))

	Expect(err).To(BeNil())
	Expect(string(cached)).NotTo(Equal("{garbage"))
}

func (s *TaskServiceSuite) TestCacheEntriesArePerUser() {
	ctx := context.Background()

	_, err := s.Svc.Create(ctx, 1, "mine", "")

	Expect(err).To(BeNil())

	_, err = s.Svc.ListTasks(ctx, 1)

	Expect(err).To(BeNil())

	_, err = s.Svc.Create(ctx, 2, "theirs", "")

	Expect(err).To(BeNil())

	// User 2's mutation must not touch user 1's entry.
	_, err = s.Cache.Get(ctx, ListCacheKey(1))

	Expect(err).To(BeNil())

	tasks, err := s.Svc.ListTasks(ctx, 2)

	Expect(err).To(BeNil())
	Expect(tasks).To(HaveLen(1))
	Expect(tasks[0].Title).To(Equal("theirs"))
}

func (s *TaskServiceSuite) TestListCountsCacheHitsAndMisses() {
	ctx := context.Background()
	registry := prometheus.NewRegistry()

	s.Svc.WithMetrics(telemetry.NewAppMetrics(registry))

	_, err := s.Svc.Create(ctx, 1, "write report", "")

	Expect(err).To(BeNil())

	_, err = s.Svc.ListTasks(ctx, 1)

	Expect(err).To(BeNil())

	_, err = s.Svc.ListTasks(ctx, 1)

	Expect(err).To(BeNil())

	Expect(counterTotal(registry, "cache_misses_total")).To(Equal(1.0))
	Expect(counterTotal(registry, "cache_hits_total")).To(Equal(1.0))

	_, err = s.Svc.ListTasks(ctx, 1)

	Expect(err).To(BeNil())
	Expect(counterTotal(registry, "cache_hits_total")).To(Equal(2.0))
}

func counterTotal(registry *prometheus.Registry, name string) float64 {
	families, err := registry.Gather()

	Expect(err).To(BeNil())

	total := 0.0

	for _, family := range families {
		if family.GetName() != name {
			continue
		}

		for _, metric := range family.GetMetric() {
			total += metric.GetCounter().GetValue()
		}
	}

	return total
}
