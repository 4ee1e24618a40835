package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/reflextile/internal/storage/storagetest"
	"github.com/mcoot/reflextile/internal/testutil"
)

// Set RTS_TEST_POSTGRES_DSN to a disposable database to run this suite.
const dsnEnv = "RTS_TEST_POSTGRES_DSN"

type StorageSuite struct {
	storagetest.Suite
	storage *Storage
}

func TestStorageSuite(t *testing.T) {
	if os.Getenv(dsnEnv) == "" {
		t.Skipf("%s not set", dsnEnv)
	}
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupSuite() {
	cfg := DefaultConfig()
	cfg.DSN = os.Getenv(dsnEnv)
	cfg.ConnectRetries = 0

	store, err := New(cfg, testutil.NopLogger())
	s.Require().NoError(err)
	s.storage = store
}

func (s *StorageSuite) TearDownSuite() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
}

func (s *StorageSuite) SetupTest() {
	s.Require().NoError(s.storage.db.Exec(
		"TRUNCATE scores, player_name_claims, contact_claims, logo_taps",
	).Error)
	s.Store = s.storage
	s.Ctx = context.Background()
}
