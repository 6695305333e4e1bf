package sync

import (
	"context"

	"go.uber.org/zap"

	"github.com/sohfix/prx/internal/domain"
	"github.com/sohfix/prx/internal/port"
)

// Classifier decides whether a local artifact is absent, complete, or
// damaged. It only inspects; deleting a damaged artifact is the
// orchestrator's job.
type Classifier struct {
	media          port.MediaClient
	fs             port.FileSystem
	tolerance      int64 // allowed deficit when the size came from the feed
	probeTolerance int64 // allowed deficit when the size came from a HEAD probe
	logger         *zap.Logger
}

// NewClassifier creates a new Classifier. Tolerances are in bytes.
func NewClassifier(media port.MediaClient, fs port.FileSystem, tolerance, probeTolerance int64, logger *zap.Logger) *Classifier {
	return &Classifier{
		media:          media,
		fs:             fs,
		tolerance:      tolerance,
		probeTolerance: probeTolerance,
		logger:         logger,
	}
}

// Classify inspects the artifact at path against the episode.
// Order matters: missing file first, then the feed's declared size, then a
// HEAD probe, and only then the deficit comparison. When no usable remote
// size exists the local file is trusted: feeds misreport sizes often
// enough that re-downloading on no evidence would churn entire libraries.
func (c *Classifier) Classify(ctx context.Context, episode *domain.Episode, path string) domain.FileState {
	if !c.fs.FileExists(path) {
		return domain.StateMissing
	}

	localSize, err := c.fs.FileSize(path)
	if err != nil {
		// Stat raced with a concurrent delete; a fresh download repairs it.
		c.logger.Warn("failed to stat local file, treating as missing",
			zap.String("path", path), zap.Error(err))
		return domain.StateMissing
	}

	remoteSize := int64(0)
	tolerance := c.tolerance
	if episode.HasDeclaredSize() {
		remoteSize = episode.DeclaredSize
	} else if episode.MediaURL != "" {
		info, err := c.media.Probe(ctx, episode.MediaURL)
		if err != nil {
			c.logger.Debug("head probe failed, size unknown",
				zap.String("url", episode.MediaURL), zap.Error(err))
		} else if info.ContentLength > 0 {
			remoteSize = info.ContentLength
			tolerance = c.probeTolerance
		}
	}

	// No usable size from either the feed or the probe: cannot prove
	// damage, so trust the existing file.
	if remoteSize == 0 {
		return domain.StateComplete
	}

	if remoteSize-localSize > tolerance {
		return domain.StateDamaged
	}
	return domain.StateComplete
}
