package storage

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mebegu/audiocorrect/internal/domain"
)

func newTestJob(id string, createdAt time.Time) *domain.Job {
	return domain.NewJob(id, "user@example.com", "mem://audio-"+id+".wav", createdAt)
}

func TestMemoryStore_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	job := newTestJob("job-1", time.Now())
	require.NoError(t, store.Create(ctx, job))

	got, err := store.Get(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, "job-1", got.ID)
	assert.Equal(t, domain.StatusQueued, got.Status)
	assert.Equal(t, "user@example.com", got.Email)

	// Duplicate ids are rejected.
	require.Error(t, store.Create(ctx, newTestJob("job-1", time.Now())))
}

func TestMemoryStore_GetUnknownID(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.Get(context.Background(), "nonexistent-id")
	require.Error(t, err)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}

func TestMemoryStore_GetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Create(ctx, newTestJob("job-1", time.Now())))

	got, err := store.Get(ctx, "job-1")
	require.NoError(t, err)
	got.Status = domain.StatusProcessed

	again, err := store.Get(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusQueued, again.Status)
}

func TestMemoryStore_ListOrder(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	base := time.Now()

	// Insert out of chronological order.
	require.NoError(t, store.Create(ctx, newTestJob("middle", base.Add(time.Minute))))
	require.NoError(t, store.Create(ctx, newTestJob("oldest", base)))
	require.NoError(t, store.Create(ctx, newTestJob("newest", base.Add(2*time.Minute))))

	jobs, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, jobs, 3)
	assert.Equal(t, "newest", jobs[0].ID)
	assert.Equal(t, "middle", jobs[1].ID)
	assert.Equal(t, "oldest", jobs[2].ID)
}

func TestMemoryStore_ListTieBreak(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	at := time.Now()

	require.NoError(t, store.Create(ctx, newTestJob("first-insert", at)))
	require.NoError(t, store.Create(ctx, newTestJob("second-insert", at)))

	jobs, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	// Equal timestamps resolve by insertion order, later insert first.
	assert.Equal(t, "second-insert", jobs[0].ID)
	assert.Equal(t, "first-insert", jobs[1].ID)
}

func TestMemoryStore_ListEmpty(t *testing.T) {
	jobs, err := NewMemoryStore().List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestMemoryStore_UpdateStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("success path keeps the result invariant", func(t *testing.T) {
		store := NewMemoryStore()
		require.NoError(t, store.Create(ctx, newTestJob("job-1", time.Now())))

		job, err := store.UpdateStatus(ctx, "job-1", domain.StatusProcessing, "")
		require.NoError(t, err)
		assert.Equal(t, domain.StatusProcessing, job.Status)
		assert.Empty(t, job.ResultLocation)

		job, err = store.UpdateStatus(ctx, "job-1", domain.StatusProcessed, "loc1")
		require.NoError(t, err)
		assert.Equal(t, domain.StatusProcessed, job.Status)
		assert.Equal(t, "loc1", job.ResultLocation)
	})

	t.Run("illegal transition is rejected and persisted state unchanged", func(t *testing.T) {
		store := NewMemoryStore()
		require.NoError(t, store.Create(ctx, newTestJob("job-1", time.Now())))

		_, err := store.UpdateStatus(ctx, "job-1", domain.StatusProcessed, "loc1")
		require.Error(t, err)
		assert.Equal(t, domain.KindInvalidTransition, domain.KindOf(err))

		got, err := store.Get(ctx, "job-1")
		require.NoError(t, err)
		assert.Equal(t, domain.StatusQueued, got.Status)
	})

	t.Run("unknown id", func(t *testing.T) {
		store := NewMemoryStore()
		_, err := store.UpdateStatus(ctx, "nope", domain.StatusProcessing, "")
		assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
	})
}

func TestMemoryStore_ConcurrentClaims(t *testing.T) {
	// Many goroutines race to claim the same queued job; exactly one
	// transition to processing may succeed.
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Create(ctx, newTestJob("job-1", time.Now())))

	const claimers = 16
	var wg sync.WaitGroup
	wins := make(chan struct{}, claimers)

	for i := 0; i < claimers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.UpdateStatus(ctx, "job-1", domain.StatusProcessing, ""); err == nil {
				wins <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(wins)

	assert.Len(t, wins, 1)
}

func TestMemoryStore_ResultLocationIffProcessed(t *testing.T) {
	// Walk every job through its lifecycle and check the invariant after
	// each transition.
	ctx := context.Background()
	store := NewMemoryStore()

	for i := 0; i < 4; i++ {
		require.NoError(t, store.Create(ctx, newTestJob(fmt.Sprintf("job-%d", i), time.Now())))
	}

	steps := []struct {
		id   string
		next domain.Status
		loc  string
	}{
		{"job-0", domain.StatusProcessing, ""},
		{"job-1", domain.StatusProcessing, ""},
		{"job-0", domain.StatusProcessed, "loc-0"},
		{"job-1", domain.StatusFailed, ""},
	}

	for _, step := range steps {
		_, err := store.UpdateStatus(ctx, step.id, step.next, step.loc)
		require.NoError(t, err)

		jobs, err := store.List(ctx)
		require.NoError(t, err)
		for _, job := range jobs {
			if job.Status == domain.StatusProcessed {
				assert.NotEmpty(t, job.ResultLocation, "job %s", job.ID)
			} else {
				assert.Empty(t, job.ResultLocation, "job %s", job.ID)
			}
		}
	}
}
