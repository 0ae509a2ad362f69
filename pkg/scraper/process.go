package scraper

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"

	"github.com/b0ase/portal/pkg/logutils"
)

// ProcessRunner runs the scraper script once per call and reads a JSON gig from stdout.
type ProcessRunner struct {
	command []string
	apiKey  string
	timeout time.Duration
}

func NewProcessRunner(command []string, apiKey string, timeoutSeconds int) *ProcessRunner {
	return &ProcessRunner{
		command: command,
		apiKey:  apiKey,
		timeout: time.Duration(timeoutSeconds) * time.Second,
	}
}

func (p *ProcessRunner) Scrape(ctx context.Context, targetURL string) (*Gig, error) {
	if p.apiKey == "" {
		return nil, ErrNotConfigured
	}
	if len(p.command) == 0 {
		return nil, errors.New("scraper command is empty")
	}
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	args := append(append([]string{}, p.command[1:]...), "--api_key", p.apiKey, "--url", targetURL)
	//nolint:gosec // command comes from server configuration, the url is validated by the caller
	cmd := exec.CommandContext(ctx, p.command[0], args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// children of the script may keep the pipes open after it is killed
	cmd.WaitDelay = time.Second

	err := cmd.Run()
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		logutils.Log.Warnf("scraper timed out after %s for %s", p.timeout, targetURL)
		return nil, ErrTimeout
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, &ExitError{Code: exitErr.ExitCode(), Stderr: strings.TrimSpace(stderr.String())}
		}
		return nil, err
	}
	if stderr.Len() > 0 {
		logutils.Log.Debugf("scraper stderr: %s", stderr.String())
	}
	return parseScriptOutput(stdout.String())
}
