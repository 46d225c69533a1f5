package download

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"clipflow/internal/config"
	"clipflow/internal/logging"
	"clipflow/internal/services"
)

const formatSelector = "bestvideo[ext=mp4]+bestaudio[ext=m4a]/best[ext=mp4]/best"

// VideoFetcher downloads one clip video to a destination path.
type VideoFetcher interface {
	FetchToFile(ctx context.Context, url, dest string) error
}

// CommandFetcher shells out to yt-dlp.
type CommandFetcher struct {
	binary  string
	timeout time.Duration
	logger  *slog.Logger
}

// NewCommandFetcher constructs a fetcher from download configuration.
func NewCommandFetcher(cfg config.Download, logger *slog.Logger) *CommandFetcher {
	return &CommandFetcher{
		binary:  cfg.YtDlpPath,
		timeout: time.Duration(cfg.Timeout) * time.Second,
		logger:  logging.NewComponentLogger(logger, "download"),
	}
}

// FetchToFile implements VideoFetcher.
func (f *CommandFetcher) FetchToFile(ctx context.Context, url, dest string) error {
	runCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, f.binary,
		"--format", formatSelector,
		"-o", dest,
		"--no-playlist",
		url,
	)
	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	start := time.Now()
	err := cmd.Run()
	if err != nil {
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return services.Wrap(services.ErrExternalTool, "download", "yt-dlp",
				fmt.Sprintf("timed out after %s", f.timeout), runCtx.Err())
		}
		return services.Wrap(services.ErrExternalTool, "download", "yt-dlp",
			tail(output.String()), err)
	}

	f.logger.Debug("yt-dlp finished",
		logging.String("url", url),
		logging.Duration("elapsed", time.Since(start)))
	return nil
}

// tail keeps error output readable by returning only the last lines.
func tail(output string) string {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) > 5 {
		lines = lines[len(lines)-5:]
	}
	return strings.Join(lines, " | ")
}
