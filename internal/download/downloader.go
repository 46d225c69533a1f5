package download

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"clipflow/internal/clip"
	"clipflow/internal/logging"
	"clipflow/internal/services"
	"clipflow/internal/store"
)

// ClipStore is the persistence surface the download stage needs.
type ClipStore interface {
	GetClipByClipID(ctx context.Context, clipID string) (*store.DownloadedClip, error)
	InsertClip(ctx context.Context, clip *store.DownloadedClip) (*store.DownloadedClip, error)
	DownloadedKeys(ctx context.Context) (map[string]struct{}, error)
}

// Stage downloads selected clips and records their artifacts.
type Stage struct {
	store       ClipStore
	fetcher     VideoFetcher
	downloadDir string
	logger      *slog.Logger
}

// NewStage wires a download stage.
func NewStage(clipStore ClipStore, fetcher VideoFetcher, downloadDir string, logger *slog.Logger) *Stage {
	return &Stage{
		store:       clipStore,
		fetcher:     fetcher,
		downloadDir: downloadDir,
		logger:      logging.NewComponentLogger(logger, "download"),
	}
}

// Download fetches one clip unless an artifact already exists. The existing
// record is returned without invoking the fetcher when the clip is known.
func (s *Stage) Download(ctx context.Context, candidate clip.Clip) (*store.DownloadedClip, error) {
	existing, err := s.store.GetClipByClipID(ctx, candidate.ID)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "download", "lookup clip", candidate.ID, err)
	}
	if existing != nil {
		s.logger.Debug("clip already downloaded, skipping",
			logging.String("clip", candidate.ID),
			logging.String("file", existing.FilePath))
		return existing, nil
	}

	if err := os.MkdirAll(s.downloadDir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "download", "ensure download dir", s.downloadDir, err)
	}

	dest := artifactPath(s.downloadDir, candidate.Title, candidate.ID)
	if err := s.fetcher.FetchToFile(ctx, candidate.URL, dest); err != nil {
		removeArtifact(dest)
		return nil, err
	}

	size, err := verifyArtifact(dest)
	if err != nil {
		removeArtifact(dest)
		return nil, err
	}

	record, err := s.store.InsertClip(ctx, &store.DownloadedClip{
		ClipID:      candidate.ID,
		URL:         candidate.URL,
		Title:       candidate.Title,
		Creator:     candidate.Creator,
		Broadcaster: candidate.Broadcaster,
		Game:        candidate.Game,
		ViewCount:   candidate.ViewCount,
		Duration:    candidate.Duration,
		FilePath:    dest,
		FileSize:    size,
	})
	if err != nil {
		// Another run inserted the same clip while we were fetching. Keep
		// their row, drop our duplicate artifact.
		if errors.Is(err, store.ErrAlreadyDownloaded) {
			removeArtifact(dest)
			return s.store.GetClipByClipID(ctx, candidate.ID)
		}
		removeArtifact(dest)
		return nil, services.Wrap(services.ErrTransient, "download", "record clip", candidate.ID, err)
	}

	s.logger.Info("clip downloaded",
		logging.String("clip", candidate.ID),
		logging.String("file", dest),
		logging.Int64("bytes", size))
	return record, nil
}

// DownloadTop selects the best candidates and downloads them. Per-clip
// failures are logged and skipped; the returned slice holds every clip that
// now has a stored artifact.
func (s *Stage) DownloadTop(ctx context.Context, candidates []clip.Clip, limit int) ([]*store.DownloadedClip, error) {
	keys, err := s.store.DownloadedKeys(ctx)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "download", "load downloaded keys", "", err)
	}

	selected := clip.SelectTop(candidates, clip.DownloadedSet(keys), limit)
	downloaded := make([]*store.DownloadedClip, 0, len(selected))
	for _, candidate := range selected {
		if ctx.Err() != nil {
			return downloaded, ctx.Err()
		}
		record, err := s.Download(ctx, candidate)
		if err != nil {
			if services.IsRunFatal(err) {
				return downloaded, err
			}
			s.logger.Warn("clip download failed",
				logging.String("clip", candidate.ID),
				logging.Error(err))
			continue
		}
		downloaded = append(downloaded, record)
	}

	s.logger.Info("batch download finished",
		logging.Int("selected", len(selected)),
		logging.Int("downloaded", len(downloaded)))
	return downloaded, nil
}

func verifyArtifact(dest string) (int64, error) {
	info, err := os.Stat(dest)
	if err != nil {
		return 0, services.Wrap(services.ErrValidation, "download", "verify artifact",
			fmt.Sprintf("artifact missing at %s", dest), err)
	}
	if info.Size() == 0 {
		return 0, services.Wrap(services.ErrValidation, "download", "verify artifact",
			fmt.Sprintf("artifact empty at %s", dest), nil)
	}
	return info.Size(), nil
}

func removeArtifact(dest string) {
	_ = os.Remove(dest)
}
