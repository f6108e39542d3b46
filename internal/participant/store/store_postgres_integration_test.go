//go:build integration

package store_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"rollcall/internal/participant"
	"rollcall/internal/participant/store"
	"rollcall/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = store.NewPostgresStore(s.postgres.DB)
	s.Require().NoError(s.store.EnsureSchema(context.Background()))
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "participants"))
}

func (s *PostgresStoreSuite) TestAppendAndListAll() {
	ctx := context.Background()

	year := 2
	years := 12
	records := []participant.Record{
		{
			ID: "s-1", FullName: "Jane Doe", Email: "jane@outlook.com",
			Phone: "+14155550100", Role: participant.RoleStudent,
			Department: "CS", CurrentYear: &year,
			CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
		},
		{
			ID: "p-1", FullName: "John Roe", Email: "john@gmail.com",
			Phone: "+911234567890", Role: participant.RoleWorkingProfessional,
			CompanyName: "Acme", YearsOfExperience: &years,
			CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
		},
	}
	for _, rec := range records {
		s.Require().NoError(s.store.Append(ctx, rec))
	}

	got, err := s.store.ListAll(ctx)
	s.Require().NoError(err)
	s.Require().Len(got, 2)
	s.Equal("s-1", got[0].ID)
	s.Equal("p-1", got[1].ID)
	s.Equal(&year, got[0].CurrentYear)
	s.Nil(got[0].YearsOfExperience)
	s.Equal(&years, got[1].YearsOfExperience)
	s.Nil(got[1].CurrentYear)
}

func (s *PostgresStoreSuite) TestDuplicateIDRejected() {
	ctx := context.Background()
	rec := participant.Record{
		ID: "dup", FullName: "Jane Doe", Email: "jane@outlook.com",
		Phone: "+14155550100", Role: participant.RoleStudent,
		CreatedAt: time.Now().UTC(),
	}
	s.Require().NoError(s.store.Append(ctx, rec))
	s.Error(s.store.Append(ctx, rec))
}

func (s *PostgresStoreSuite) TestConcurrentAppends() {
	ctx := context.Background()
	const writers = 25

	errCh := make(chan error, writers)
	for i := 0; i < writers; i++ {
		go func(n int) {
			rec := participant.Record{
				ID: fmt.Sprintf("c-%d", n), FullName: "Jane Doe",
				Email: "jane@outlook.com", Phone: "+14155550100",
				Role: participant.RoleStudent, CreatedAt: time.Now().UTC(),
			}
			errCh <- s.store.Append(ctx, rec)
		}(i)
	}
	for i := 0; i < writers; i++ {
		s.Require().NoError(<-errCh)
	}

	got, err := s.store.ListAll(ctx)
	s.Require().NoError(err)
	s.Len(got, writers)
}
