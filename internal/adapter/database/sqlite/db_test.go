package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/suite"

	"taskmanager/internal/adapter/database/sqlite"
	"taskmanager/internal/adapter/database/sqlite/repository"
	"taskmanager/internal/core/domain"
)

type DBSuite struct {
	suite.Suite
	DB *sqlite.DB
}

func (s *DBSuite) SetupTest() {
	s.T().Setenv("DATABASE_PATH", filepath.Join(s.T().TempDir(), "taskmanager.db"))
	s.T().Setenv("MIGRATIONS_PATH", "../../../../db/migrations")

	s.DB = sqlite.NewDB()
}

func (s *DBSuite) TearDownTest() {
	if s.DB != nil {
		s.DB.Close()
	}
}

func TestDBSuite(t *testing.T) {
	RegisterTestingT(t)
	suite.Run(t, new(DBSuite))
}

func (s *DBSuite) TestNewDBOpensMigratedStore() {
	repo := repository.NewTaskRepository(s.DB)

	now := time.Now()
	task, err := repo.Create(context.Background(), domain.Task{
		UserId:    1,
		Title:     "embedded store",
		Status:    domain.TaskStatusOpen,
		CreatedAt: now,
		UpdatedAt: now,
	})

	Expect(err).To(BeNil())
	Expect(task.ID).To(BeNumerically(">", 0))

	tasks, err := repo.ListByUser(context.Background(), 1)

	Expect(err).To(BeNil())
	Expect(tasks).To(HaveLen(1))
	Expect(tasks[0].Title).To(Equal("embedded store"))
}

func (s *DBSuite) TestReopeningExistingDatabaseIsANoOp() {
	reopened := sqlite.NewDB()
	defer reopened.Close()

	var count int
	err := reopened.QueryRow("SELECT COUNT(*) FROM users").Scan(&count)

	Expect(err).To(BeNil())
	Expect(count).To(Equal(0))
}
