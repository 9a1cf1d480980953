// ABOUTME: Change feed that notifies subscribers when committed writes touch their tables.
// ABOUTME: Observe re-runs a read projection after every relevant commit.
package storage

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/harperreed/lift/internal/models"
)

// Feed fans out table-change notifications to subscriptions.
type Feed struct {
	mu   sync.Mutex
	subs map[*Subscription]struct{}
}

// NewFeed creates an empty feed.
func NewFeed() *Feed {
	return &Feed{subs: make(map[*Subscription]struct{})}
}

// Subscription receives a signal whenever one of its tables changes.
// Signals are coalesced: a slow reader sees at most one pending signal.
type Subscription struct {
	feed   *Feed
	tables map[string]struct{}
	ch     chan struct{}
	once   sync.Once
}

// Subscribe registers interest in tables. With no tables it matches every change.
func (f *Feed) Subscribe(tables ...string) *Subscription {
	s := &Subscription{
		feed:   f,
		tables: make(map[string]struct{}, len(tables)),
		ch:     make(chan struct{}, 1),
	}
	for _, t := range tables {
		s.tables[t] = struct{}{}
	}
	f.mu.Lock()
	f.subs[s] = struct{}{}
	f.mu.Unlock()
	return s
}

// C is signalled after a commit touching a subscribed table.
func (s *Subscription) C() <-chan struct{} {
	return s.ch
}

// Close detaches the subscription from its feed.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.feed.mu.Lock()
		delete(s.feed.subs, s)
		s.feed.mu.Unlock()
	})
}

func (s *Subscription) matches(tables []string) bool {
	if len(s.tables) == 0 {
		return true
	}
	for _, t := range tables {
		if _, ok := s.tables[t]; ok {
			return true
		}
	}
	return false
}

// publish never blocks the writer.
func (f *Feed) publish(tables ...string) {
	if len(tables) == 0 {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for s := range f.subs {
		if !s.matches(tables) {
			continue
		}
		select {
		case s.ch <- struct{}{}:
		default:
		}
	}
}

// Observation is one evaluation of an observed projection.
type Observation[T any] struct {
	Value T
	Err   error
}

// Observe evaluates fetch once immediately and again after every commit that
// touches tables, until ctx is cancelled. The returned channel is closed on exit.
func Observe[T any](ctx context.Context, d *DB, tables []string, fetch func(context.Context) (T, error)) <-chan Observation[T] {
	out := make(chan Observation[T])
	// Subscribe before the first fetch so no commit in between is missed.
	sub := d.feed.Subscribe(tables...)

	go func() {
		defer close(out)
		defer sub.Close()

		for {
			v, err := fetch(ctx)
			if ctx.Err() != nil {
				return
			}
			select {
			case out <- Observation[T]{Value: v, Err: err}:
			case <-ctx.Done():
				return
			}

			select {
			case <-sub.C():
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}

// ObserveOngoingWorkout follows the in-progress workout.
func (d *DB) ObserveOngoingWorkout(ctx context.Context) <-chan Observation[*models.Workout] {
	return Observe(ctx, d, []string{TableWorkouts}, d.OngoingWorkout)
}

// ObserveWorkoutExercises follows the exercises and sets of one workout.
func (d *DB) ObserveWorkoutExercises(ctx context.Context, workoutID uuid.UUID) <-chan Observation[[]models.FullWorkoutExercise] {
	return Observe(ctx, d, []string{TableWorkoutExercises, TableExerciseSets}, func(ctx context.Context) ([]models.FullWorkoutExercise, error) {
		return d.WorkoutExercises(ctx, workoutID)
	})
}

// ObserveSetsWithPrevious follows the sets of one workout exercise with their history.
func (d *DB) ObserveSetsWithPrevious(ctx context.Context, workoutExerciseID uuid.UUID) <-chan Observation[[]models.SetWithPrevious] {
	return Observe(ctx, d, []string{TableWorkouts, TableWorkoutExercises, TableExerciseSets}, func(ctx context.Context) ([]models.SetWithPrevious, error) {
		return d.SetsWithPrevious(ctx, workoutExerciseID)
	})
}
