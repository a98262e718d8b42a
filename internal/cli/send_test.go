package cli

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/bulksend/internal/gateway"
	"github.com/roach88/bulksend/internal/phone"
	"github.com/roach88/bulksend/internal/store"
	"github.com/roach88/bulksend/internal/templates"
	"github.com/roach88/bulksend/internal/testutil"
)

var epoch = time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

type sendFixture struct {
	dir     string
	clock   *testutil.FakeClock
	gateway *testutil.RecordingGateway
	opts    *SendOptions
}

func newSendFixture(t *testing.T, format string) *sendFixture {
	t.Helper()
	clk := testutil.NewFakeClock(epoch)
	gw := testutil.NewRecordingGateway(clk)
	return &sendFixture{
		dir:     workdir(t),
		clock:   clk,
		gateway: gw,
		opts: &SendOptions{
			RootOptions: &RootOptions{Format: format},
			Gateway:     gw,
			Clock:       clk,
			RunIDs:      testutil.NewFixedRunIDGenerator("run-cli"),
		},
	}
}

func TestSend_TwoNumbers(t *testing.T) {
	f := newSendFixture(t, "text")
	sheetPath := writeFile(t, f.dir, "owners.csv", ownersCSV)
	sentPath := filepath.Join(f.dir, "sent.txt")
	journalPath := filepath.Join(f.dir, "journal.db")
	metricsPath := filepath.Join(f.dir, "bulksend.prom")

	out, _, err := execute(newSendCommand(f.opts), sheetPath,
		"--project", "M City", "--pacing", "10",
		"--sent-log", sentPath, "--journal", journalPath, "--metrics-file", metricsPath)
	require.NoError(t, err)

	assert.Contains(t, out, `Sending "M City" to 2 number(s) from column "Hand Phone", pacing 10s.`)
	assert.Contains(t, out, "Estimated time to completion: 0 minutes 30 seconds\n")
	assert.Contains(t, out, "0: +60123456789\n")
	assert.Contains(t, out, "Sent to +60198765432\n")
	assert.Contains(t, out, "Progress: 100.00% - Remaining time: 0 minutes 0 seconds\n")
	assert.Contains(t, out, "All messages sent!\n")
	assert.Contains(t, out, "Run run-cli: 2 sent, 0 skipped, 0 failed, 0 duplicate(s) ignored.")

	assert.Equal(t, []phone.Number{"+60123456789", "+60198765432"}, f.gateway.Numbers())
	for _, c := range f.gateway.Calls() {
		assert.Equal(t, templates.Defaults[1].Message, c.Message)
		assert.Equal(t, 10*time.Second, c.Pacing)
	}
	assert.Equal(t, 30*time.Second, f.clock.Slept())

	sent, err := os.ReadFile(sentPath)
	require.NoError(t, err)
	assert.Equal(t, "+60123456789\n+60198765432\n", string(sent))

	st, err := store.Open(journalPath)
	require.NoError(t, err)
	defer st.Close()
	run, err := st.GetRun(context.Background(), "run-cli")
	require.NoError(t, err)
	assert.Equal(t, store.StatusCompleted, run.Status)
	assert.Equal(t, sheetPath, run.Source)
	assert.Equal(t, 2, run.Sent)

	prom, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(prom), `bulksend_dispatch_total{outcome="sent"} 2`)
}

func TestSend_ResumeSkipsSentNumbers(t *testing.T) {
	f := newSendFixture(t, "text")
	sheetPath := writeFile(t, f.dir, "owners.csv", ownersCSV)
	sentPath := writeFile(t, f.dir, "sent.txt", "+60123456789\n")

	out, _, err := execute(newSendCommand(f.opts), sheetPath, "--sent-log", sentPath, "--journal", "")
	require.NoError(t, err)

	assert.Contains(t, out, "Skipping +60123456789 (already sent)\n")
	assert.Equal(t, []phone.Number{"+60198765432"}, f.gateway.Numbers())

	sent, err := os.ReadFile(sentPath)
	require.NoError(t, err)
	assert.Equal(t, "+60123456789\n+60198765432\n", string(sent))
}

func TestSend_DefaultsFromConfig(t *testing.T) {
	f := newSendFixture(t, "text")
	sheetPath := writeFile(t, f.dir, "owners.csv", ownersCSV)
	f.opts.Config = writeFile(t, f.dir, "bulksend.yaml", `
default_project: M City
default_pacing: 15
inter_message_delay: 2s
sent_log: from-config.txt
journal: ""
`)

	out, _, err := execute(newSendCommand(f.opts), sheetPath)
	require.NoError(t, err)

	assert.Contains(t, out, `Sending "M City" to 2 number(s) from column "Hand Phone", pacing 15s.`)
	assert.Equal(t, 34*time.Second, f.clock.Slept())
	_, err = os.Stat(filepath.Join(f.dir, "from-config.txt"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(f.dir, "bulksend.db"))
	assert.True(t, os.IsNotExist(err))
}

func TestSend_DryRunLeavesStateUntouched(t *testing.T) {
	f := newSendFixture(t, "text")
	f.opts.Gateway = nil // stub gateway on the fake clock
	sheetPath := writeFile(t, f.dir, "owners.csv", ownersCSV)
	sentPath := writeFile(t, f.dir, "sent.txt", "+60123456789\n")
	journalPath := filepath.Join(f.dir, "journal.db")

	out, _, err := execute(newSendCommand(f.opts), sheetPath, "--dry-run", "--pacing", "20",
		"--sent-log", sentPath, "--journal", journalPath)
	require.NoError(t, err)

	assert.Contains(t, out, "Dry run:")
	assert.Contains(t, out, "Skipping +60123456789 (already sent)")
	assert.Contains(t, out, "Sent to +60198765432")
	assert.Equal(t, 30*time.Second, f.clock.Slept())

	sent, err := os.ReadFile(sentPath)
	require.NoError(t, err)
	assert.Equal(t, "+60123456789\n", string(sent))
	_, err = os.Stat(journalPath)
	assert.True(t, os.IsNotExist(err))
}

func TestSend_GatewayFailureContinues(t *testing.T) {
	f := newSendFixture(t, "text")
	f.gateway.Fail("+60123456789", "chat window did not load")
	sheetPath := writeFile(t, f.dir, "owners.csv", ownersCSV)

	out, _, err := execute(newSendCommand(f.opts), sheetPath, "--journal", "")
	require.NoError(t, err)

	assert.Contains(t, out, "Error sending message to +60123456789: chat window did not load\n")
	assert.Contains(t, out, "Sent to +60198765432\n")
	assert.Contains(t, out, "1 sent, 0 skipped, 1 failed")
}

func TestSend_JSON(t *testing.T) {
	f := newSendFixture(t, "json")
	sheetPath := writeFile(t, f.dir, "owners.csv", ownersCSV+"Carol,C-3,0123456789\n")

	out, _, err := execute(newSendCommand(f.opts), sheetPath, "--journal", "")
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   SendResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "Hand Phone", resp.Data.Column)
	assert.Equal(t, "M Suites", resp.Data.Project)
	assert.Equal(t, 30, resp.Data.Pacing)
	assert.Equal(t, 2, resp.Data.Summary.Sent)
	assert.Equal(t, 1, resp.Data.Summary.Duplicates)
	require.NotEmpty(t, resp.Data.Events)
	assert.Equal(t, "estimate", string(resp.Data.Events[0].Kind))
	assert.Equal(t, "completed", string(resp.Data.Events[len(resp.Data.Events)-1].Kind))
}

func TestSend_Cancelled(t *testing.T) {
	f := newSendFixture(t, "text")
	sheetPath := writeFile(t, f.dir, "owners.csv", ownersCSV)
	sentPath := filepath.Join(f.dir, "sent.txt")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.opts.Gateway = gateway.Func(func(context.Context, phone.Number, string, time.Duration) error {
		cancel()
		return nil
	})

	cmd := newSendCommand(f.opts)
	cmd.SetContext(ctx)
	out, _, err := execute(cmd, sheetPath, "--sent-log", sentPath, "--journal", "")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeCancelled)
	assert.Contains(t, out, "Run cancelled after 1 of 2 numbers")

	sent, err := os.ReadFile(sentPath)
	require.NoError(t, err)
	assert.Equal(t, "+60123456789\n", string(sent))
}

func TestSend_Errors(t *testing.T) {
	tests := []struct {
		name  string
		sheet string
		args  []string
		code  string
		text  string
	}{
		{"no phone column", "Name,Email\nAlice,a@example.com\n", nil, ErrCodeNoPhoneColumn, `"Hand Phone"`},
		{"empty column", "Name,Phone Number\n", nil, ErrCodeEmptyBatch, "no phone numbers"},
		{"invalid pacing", ownersCSV, []string{"--pacing", "12"}, ErrCodeInvalidPacing, "invalid pacing 12"},
		{"unknown project", ownersCSV, []string{"--project", "M Tower"}, ErrCodeUnknownProject, "unknown template"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newSendFixture(t, "text")
			sheetPath := writeFile(t, f.dir, "owners.csv", tt.sheet)

			args := append([]string{sheetPath, "--journal", ""}, tt.args...)
			out, _, err := execute(newSendCommand(f.opts), args...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			assert.Contains(t, err.Error(), tt.code)
			assert.Contains(t, out, tt.text)
			assert.Empty(t, f.gateway.Calls())
		})
	}
}

func TestSend_FileNotFound(t *testing.T) {
	f := newSendFixture(t, "json")

	out, _, err := execute(newSendCommand(f.opts), filepath.Join(f.dir, "missing.csv"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, ErrCodeNotFound, resp.Error.Code)
}

func TestSend_UnsupportedFormat(t *testing.T) {
	f := newSendFixture(t, "text")
	path := writeFile(t, f.dir, "owners.txt", ownersCSV)

	_, _, err := execute(newSendCommand(f.opts), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrCodeSheet)
}
