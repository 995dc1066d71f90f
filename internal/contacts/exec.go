package contacts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ExecResolver runs an external helper that queries the address book. The
// helper is invoked as `command args... --name=<value>` (or --phone/--email)
// and must print a JSON array of contacts on stdout.
type ExecResolver struct {
	Command string
	Args    []string
	Timeout time.Duration
	logger  *zap.Logger
}

// NewExecResolver creates a resolver for the given helper command.
func NewExecResolver(command string, args []string, timeout time.Duration, logger *zap.Logger) *ExecResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExecResolver{Command: command, Args: args, Timeout: timeout, logger: logger}
}

// Resolve runs the helper once and parses its output.
func (r *ExecResolver) Resolve(ctx context.Context, q Query) ([]Contact, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	if r.Command == "" {
		return nil, errors.New("no contact resolver command configured")
	}
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	args := append(append([]string{}, r.Args...), queryFlag(q))
	cmd := exec.CommandContext(ctx, r.Command, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return nil, fmt.Errorf("contact resolver %s: %w: %s", r.Command, err, msg)
		}
		return nil, fmt.Errorf("contact resolver %s: %w", r.Command, err)
	}

	found, err := parseContacts(stdout.Bytes())
	if err != nil {
		return nil, fmt.Errorf("contact resolver %s: %w", r.Command, err)
	}
	r.logger.Debug("contacts resolved",
		zap.Int("count", len(found)),
		zap.Duration("took", time.Since(start)))
	return found, nil
}

func queryFlag(q Query) string {
	switch {
	case strings.TrimSpace(q.Name) != "":
		return "--name=" + strings.TrimSpace(q.Name)
	case strings.TrimSpace(q.Phone) != "":
		return "--phone=" + strings.TrimSpace(q.Phone)
	default:
		return "--email=" + strings.TrimSpace(q.Email)
	}
}

func parseContacts(out []byte) ([]Contact, error) {
	out = bytes.TrimSpace(out)
	if len(out) == 0 {
		return nil, errors.New("empty output")
	}
	var found []Contact
	if err := json.Unmarshal(out, &found); err != nil {
		return nil, fmt.Errorf("malformed output: %w", err)
	}
	return found, nil
}
