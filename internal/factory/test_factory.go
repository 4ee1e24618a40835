package factory

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/mcoot/reflextile/internal/dependencies/mocks"
	"github.com/mcoot/reflextile/internal/storage"
	"github.com/mcoot/reflextile/internal/storage/memory"
	"github.com/mcoot/reflextile/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App on memory storage with mocked dependencies.
// Competition state is kept in a temp dir owned by t.
func NewTestApp(t testing.TB) *TestApp {
	return NewTestAppWithStorage(t, memory.New())
}

// NewTestAppWithStorage is NewTestApp over the given store
func NewTestAppWithStorage(t testing.TB, store storage.Storage) *TestApp {
	t.Helper()

	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	cfg := Config{
		CompetitionFile: filepath.Join(t.TempDir(), "competition.json"),
	}
	app, err := newWithDependencies(store, mockClock, mockRandom, cfg, testutil.NopLogger())
	if err != nil {
		t.Fatalf("wire test app: %v", err)
	}

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}
