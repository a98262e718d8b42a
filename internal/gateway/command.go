package gateway

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/roach88/bulksend/internal/phone"
)

// Placeholders substituted in command arguments.
const (
	PlaceholderNumber  = "{number}"
	PlaceholderMessage = "{message}"
	PlaceholderPacing  = "{pacing}"
)

// Command delivers by running an external program once per message.
//
// Arguments may contain {number}, {message} and {pacing} placeholders. When
// none are present the three values are appended in that order. The values
// are also exported as BULKSEND_NUMBER, BULKSEND_MESSAGE and
// BULKSEND_PACING_SECONDS. A non-zero exit is a failed dispatch.
type Command struct {
	path   string
	args   []string
	logger *slog.Logger
}

// NewCommand returns a Command gateway for the program at path.
func NewCommand(path string, args []string, logger *slog.Logger) *Command {
	if logger == nil {
		logger = slog.Default()
	}
	return &Command{path: path, args: append([]string(nil), args...), logger: logger}
}

// Dispatch implements Gateway.
func (c *Command) Dispatch(ctx context.Context, number phone.Number, message string, pacing time.Duration) error {
	pacingSeconds := strconv.Itoa(int(pacing / time.Second))
	args := c.expandArgs(string(number), message, pacingSeconds)

	cmd := exec.CommandContext(ctx, c.path, args...)
	cmd.Env = append(os.Environ(),
		"BULKSEND_NUMBER="+string(number),
		"BULKSEND_MESSAGE="+message,
		"BULKSEND_PACING_SECONDS="+pacingSeconds,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	c.logger.Debug("command dispatch", "number", number, "path", c.path, "elapsed", time.Since(start), "error", err)
	if err != nil {
		return &DispatchError{
			Number: number,
			Reason: strings.TrimSpace(stderr.String()),
			Err:    err,
		}
	}
	return nil
}

func (c *Command) expandArgs(number, message, pacing string) []string {
	replacer := strings.NewReplacer(
		PlaceholderNumber, number,
		PlaceholderMessage, message,
		PlaceholderPacing, pacing,
	)

	substituted := false
	out := make([]string, 0, len(c.args)+3)
	for _, a := range c.args {
		if strings.Contains(a, PlaceholderNumber) ||
			strings.Contains(a, PlaceholderMessage) ||
			strings.Contains(a, PlaceholderPacing) {
			substituted = true
		}
		out = append(out, replacer.Replace(a))
	}
	if !substituted {
		out = append(out, number, message, pacing)
	}
	return out
}
