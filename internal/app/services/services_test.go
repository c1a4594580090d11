package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/yigit/collegeerp/internal/app/models"
	"github.com/yigit/collegeerp/internal/app/models/dto"
	"github.com/yigit/collegeerp/internal/app/repositories"
	"github.com/yigit/collegeerp/internal/store"
)

type seqIDs struct {
	mu sync.Mutex
	n  int
}

func (g *seqIDs) NewID(prefix string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%04d", prefix, g.n)
}

// fixedClock is the services' notion of now: 2025-06-15 10:00 UTC.
func fixedClock() time.Time {
	return time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
}

type fixture struct {
	store *store.Store
	repos *repositories.Repositories
	svc   *Services
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st, err := store.Open(context.Background(), store.NewMemoryBackend(nil), store.Schema, store.Options{
		LockTimeout: 500 * time.Millisecond,
		TxTimeout:   5 * time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	repos := repositories.NewRepositories(&seqIDs{}, fixedClock)
	return &fixture{
		store: st,
		repos: repos,
		svc:   NewServices(st, repos, Options{Currency: "INR"}, zerolog.Nop()),
	}
}

func (f *fixture) student(t *testing.T, id string) *models.Student {
	t.Helper()
	st, err := f.svc.Students.Create(context.Background(), dto.CreateStudentRequest{
		StudentID:   id,
		FirstName:   "Stu",
		LastName:    id,
		Email:       id + "@college.test",
		ProgrammeID: "CS1",
	})
	require.NoError(t, err)
	return st
}

func (f *fixture) room(t *testing.T, id string) *models.HostelRoom {
	t.Helper()
	r, err := f.svc.Hostel.CreateRoom(context.Background(), dto.CreateRoomRequest{
		RoomID: id, Hostel: "North", Block: "A", Floor: "1", RoomNo: id,
	})
	require.NoError(t, err)
	return r
}

// auditCount returns the number of audit entries for an entity.
func (f *fixture) auditCount(t *testing.T, entityID string) int {
	t.Helper()
	var n int
	require.NoError(t, f.store.View(context.Background(), func(tx *store.Tx) error {
		recs, err := tx.FindAll(store.AuditLog, "entity_id", entityID)
		n = len(recs)
		return err
	}))
	return n
}

// runConcurrently starts n calls of fn together and collects their errors.
func runConcurrently(n int, fn func() error) []error {
	errs := make([]error, n)
	var (
		wg    sync.WaitGroup
		start = make(chan struct{})
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			errs[i] = fn()
		}(i)
	}
	close(start)
	wg.Wait()
	return errs
}

func countNil(errs []error) int {
	n := 0
	for _, err := range errs {
		if err == nil {
			n++
		}
	}
	return n
}
