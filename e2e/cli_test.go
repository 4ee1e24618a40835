package e2e_test

import (
	"context"
	"encoding/json"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/reflextile/internal/api"
	"github.com/mcoot/reflextile/internal/factory"
	"github.com/mcoot/reflextile/internal/testutil"
)

const operatorKey = "e2e-operator"

// cliRunner manages CLI binary execution
type cliRunner struct {
	binaryPath  string
	serverURL   string
	sessionFile string
}

func newCLIRunner(t *testing.T, serverURL string) *cliRunner {
	t.Helper()

	// Find project root (where go.mod is)
	projectRoot := findProjectRoot(t)

	// Build the CLI binary
	binaryPath := filepath.Join(t.TempDir(), "rtscore-test")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/rtscore")
	cmd.Dir = projectRoot
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "failed to build CLI: %s", string(output))

	return &cliRunner{
		binaryPath:  binaryPath,
		serverURL:   serverURL,
		sessionFile: filepath.Join(t.TempDir(), "session"),
	}
}

func (r *cliRunner) run(args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--session-file", r.sessionFile,
		"--output", "json",
	}, args...)

	cmd := exec.Command(r.binaryPath, fullArgs...)
	cmd.Env = append(os.Environ(), "RTS_OPERATOR_KEY=")
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func findProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err)

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}

// startTestServer runs the real server stack on a free local port
func startTestServer(t *testing.T) string {
	t.Helper()

	logger := testutil.NopLogger()
	app, err := factory.New(factory.Config{
		Logger:          logger,
		CompetitionFile: filepath.Join(t.TempDir(), "competition.json"),
	})
	require.NoError(t, err)

	hash, err := bcrypt.GenerateFromPassword([]byte(operatorKey), bcrypt.MinCost)
	require.NoError(t, err)

	router := api.NewRouter(api.RouterConfig{
		Logger:          logger,
		Clock:           app.Clock,
		Pipeline:        app.Pipeline,
		Leaderboard:     app.Leaderboard,
		Competition:     app.Competition,
		Analytics:       app.Analytics,
		Report:          app.Report,
		OperatorKeyHash: string(hash),
	})

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	server := api.NewServer(router, api.DefaultServerConfig("127.0.0.1", 0), logger)
	go func() {
		if err := server.Serve(listener); err != nil {
			t.Logf("server error: %v", err)
		}
	}()

	app.Janitor.Start()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(ctx)
		_ = app.Janitor.Stop(ctx)
	})

	return "http://" + listener.Addr().String()
}

// Response types for JSON parsing
type recordResponse struct {
	DeviceID   string  `json:"device_id"`
	PlayerName string  `json:"player_name"`
	Score      int     `json:"score"`
	Mode       string  `json:"mode"`
	Contact    *string `json:"contact"`
	PlayCount  int     `json:"play_count"`
}

type submitResponse struct {
	Record   *recordResponse `json:"record"`
	Created  bool            `json:"created"`
	Replayed bool            `json:"replayed"`
}

type sessionResponse struct {
	SessionID string `json:"session_id"`
}

type leaderboardResponse struct {
	Scores []recordResponse `json:"scores"`
}

type competitionResponse struct {
	Open    bool    `json:"open"`
	EndedAt *string `json:"ended_at"`
}

type healthResponse struct {
	Status string `json:"status"`
}

// Tests

func TestCLI_HealthCheck(t *testing.T) {
	cli := newCLIRunner(t, startTestServer(t))

	output, err := cli.run("health")
	require.NoError(t, err, "output: %s", output)

	var resp healthResponse
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestCLI_ScoreFlow(t *testing.T) {
	cli := newCLIRunner(t, startTestServer(t))

	// Register a name first
	output, err := cli.run("register", "--device", "device-one", "--name", "Alice")
	require.NoError(t, err, "output: %s", output)

	var registered recordResponse
	require.NoError(t, json.Unmarshal([]byte(output), &registered))
	assert.Equal(t, "Alice", registered.PlayerName)
	assert.Equal(t, 0, registered.Score)

	// Start a session and play
	output, err = cli.run("session", "--device", "device-one")
	require.NoError(t, err, "output: %s", output)

	var session sessionResponse
	require.NoError(t, json.Unmarshal([]byte(output), &session))
	require.Len(t, session.SessionID, 32)

	output, err = cli.run("submit", "--device", "device-one", "--name", "Alice", "--score", "812.6")
	require.NoError(t, err, "output: %s", output)

	var submitted submitResponse
	require.NoError(t, json.Unmarshal([]byte(output), &submitted))
	require.NotNil(t, submitted.Record)
	assert.Equal(t, 813, submitted.Record.Score)
	assert.Equal(t, 1, submitted.Record.PlayCount)

	// Resending the same session is answered from the stored record
	output, err = cli.run("submit", "--device", "device-one", "--name", "Alice", "--score", "812.6", "--session", session.SessionID)
	require.NoError(t, err, "output: %s", output)

	var replayed submitResponse
	require.NoError(t, json.Unmarshal([]byte(output), &replayed))
	assert.True(t, replayed.Replayed)
	assert.Equal(t, 1, replayed.Record.PlayCount)

	// Another device cannot take the name
	output, err = cli.run("session", "--device", "device-two")
	require.NoError(t, err, "output: %s", output)
	output, err = cli.run("submit", "--device", "device-two", "--name", "Alice", "--score", "900")
	require.Error(t, err)
	assert.Contains(t, output, "NAME_TAKEN")

	output, err = cli.run("leaderboard")
	require.NoError(t, err, "output: %s", output)

	var board leaderboardResponse
	require.NoError(t, json.Unmarshal([]byte(output), &board))
	require.Len(t, board.Scores, 1)
	assert.Equal(t, "Alice", board.Scores[0].PlayerName)
}

func TestCLI_SubmitWithoutSession(t *testing.T) {
	cli := newCLIRunner(t, startTestServer(t))

	output, err := cli.run("submit", "--device", "device-one", "--name", "Alice", "--score", "10")
	require.Error(t, err)
	assert.Contains(t, output, "SESSION_REQUIRED")
}

func TestCLI_CompetitionCommands(t *testing.T) {
	cli := newCLIRunner(t, startTestServer(t))

	output, err := cli.run("competition")
	require.NoError(t, err, "output: %s", output)

	var state competitionResponse
	require.NoError(t, json.Unmarshal([]byte(output), &state))
	assert.True(t, state.Open)

	output, err = cli.run("competition", "close")
	require.Error(t, err)
	assert.Contains(t, output, "UNAUTHORIZED")

	output, err = cli.run("--operator-key", operatorKey, "competition", "close")
	require.NoError(t, err, "output: %s", output)
	require.NoError(t, json.Unmarshal([]byte(output), &state))
	assert.False(t, state.Open)
	assert.NotNil(t, state.EndedAt)
}

func TestCLI_TapsCommands(t *testing.T) {
	cli := newCLIRunner(t, startTestServer(t))

	output, err := cli.run("taps", "record", "--brand", "acme", "--device", "device-one", "--taps", "3")
	require.NoError(t, err, "output: %s", output)
	output, err = cli.run("taps", "record", "--brand", "acme", "--taps", "2")
	require.NoError(t, err, "output: %s", output)

	output, err = cli.run("taps", "totals")
	require.NoError(t, err, "output: %s", output)

	var totals struct {
		Totals map[string]int `json:"totals"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &totals))
	assert.Equal(t, 5, totals.Totals["acme"])
}
