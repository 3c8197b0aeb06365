package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/probuddy/api/internal/db"
	"github.com/probuddy/api/internal/generator"
	"github.com/probuddy/api/internal/journey"
	"github.com/probuddy/api/internal/llm"
	"github.com/probuddy/api/internal/model"
	"github.com/probuddy/api/internal/repository"
	"github.com/probuddy/api/internal/storage"
	"github.com/stretchr/testify/require"
)

var testUser = &model.User{ID: "user-1", Email: "ada@example.com", Name: "Ada"}

func testDB(t *testing.T) *sqlx.DB {
	t.Helper()

	conn := filepath.Join(t.TempDir(), "test.db") + "?_pragma=foreign_keys(1)"
	database, err := db.Init("sqlite", conn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close(database) })

	require.NoError(t, db.RunMigrations(database.DB, "sqlite"))
	return database
}

type sentMilestone struct {
	UserID    string
	JourneyID string
	Kind      journey.CelebrationKind
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentMilestone
	err  error
}

func (n *recordingNotifier) MilestoneReached(_ context.Context, user *model.User, j *model.GoalJourney, c journey.Celebration) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentMilestone{user.ID, j.ID, c.Kind})
	return n.err
}

type fixture struct {
	journeys *JourneyService
	goals    *GoalService
	archive  *storage.MemoryStorage
	notifier *recordingNotifier
	provider *llm.MockProvider
	clock    *time.Time
}

// newFixture wires the services over a fresh database. Without responses the
// generator runs without a provider and serves the fallback plan.
func newFixture(t *testing.T, responses ...llm.MockResponse) *fixture {
	t.Helper()

	database := testDB(t)
	goalRepo := repository.NewGoalRepository(database)

	f := &fixture{
		goals:    NewGoalService(goalRepo),
		archive:  storage.NewMemoryStorage(),
		notifier: &recordingNotifier{},
	}

	var gen *generator.AIGenerator
	if len(responses) > 0 {
		f.provider = llm.NewMockProvider(responses...)
		gen = generator.New(f.provider)
	} else {
		gen = generator.New(nil)
	}

	f.journeys = NewJourneyService(
		repository.NewJourneyRepository(database),
		goalRepo,
		gen,
		f.archive,
		f.notifier,
	)

	now := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	f.clock = &now
	f.journeys.now = func() time.Time { return *f.clock }
	return f
}

func (f *fixture) advance(d time.Duration) {
	*f.clock = f.clock.Add(d)
}
