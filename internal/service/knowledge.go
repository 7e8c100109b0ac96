package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cloo-solutions/roadmapbot/internal/domain"
	"github.com/cloo-solutions/roadmapbot/internal/notion"
	"github.com/cloo-solutions/roadmapbot/internal/telemetry"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	snapshotContentType = "text/markdown; charset=utf-8"

	// DefaultFetchTimeout bounds one shared traversal.
	DefaultFetchTimeout = time.Minute
)

// DocumentSource flattens the content tree under a root block
type DocumentSource interface {
	Flatten(ctx context.Context, rootID string) (*notion.Document, error)
}

// ErrSnapshotStore marks Snapshot failures that happen after the document
// was fetched.
var ErrSnapshotStore = errors.New("failed to store snapshot")

// SnapshotStore persists snapshot bodies and hands out download links
type SnapshotStore interface {
	PutObject(ctx context.Context, key, contentType string, body []byte) error
	GenerateDownloadURL(ctx context.Context, key string) (string, error)
}

// SnapshotResult describes one archived knowledge document
type SnapshotResult struct {
	Key         string `json:"key"`
	Bytes       int    `json:"bytes"`
	DownloadURL string `json:"download_url"`
	Truncated   bool   `json:"truncated,omitempty"`
}

// KnowledgeService loads the knowledge document. Concurrent fetches for the
// same root share one traversal; nothing is cached between calls.
type KnowledgeService struct {
	source DocumentSource
	rootID string
	store  SnapshotStore
	logger *zap.Logger
	group  singleflight.Group
	now    func() time.Time

	fetchTimeout time.Duration
}

// NewKnowledgeService creates a KnowledgeService. A nil source or an empty
// rootID makes every fetch fail with ErrKnowledgeNotConfigured.
func NewKnowledgeService(source DocumentSource, rootID string, logger *zap.Logger) *KnowledgeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KnowledgeService{
		source: source,
		rootID: rootID,
		logger: logger,
		now:    time.Now,

		fetchTimeout: DefaultFetchTimeout,
	}
}

// WithSnapshotStore enables Snapshot
func (s *KnowledgeService) WithSnapshotStore(store SnapshotStore) *KnowledgeService {
	s.store = store
	return s
}

// WithFetchTimeout overrides DefaultFetchTimeout. Non-positive values are ignored.
func (s *KnowledgeService) WithFetchTimeout(d time.Duration) *KnowledgeService {
	if d > 0 {
		s.fetchTimeout = d
	}
	return s
}

// Fetch returns the flattened knowledge document. The traversal is shared by
// every concurrent caller and is not tied to any one caller's context; each
// caller still stops waiting when its own ctx is done.
func (s *KnowledgeService) Fetch(ctx context.Context) (*notion.Document, error) {
	if s.source == nil || s.rootID == "" {
		return nil, domain.ErrKnowledgeNotConfigured
	}

	ctx, span := telemetry.StartSpan(ctx, "KnowledgeService.Fetch", telemetry.SpanAttributes{
		RootID:    s.rootID,
		Operation: "fetch",
	})
	defer span.End()

	ch := s.group.DoChan(s.rootID, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.fetchTimeout)
		defer cancel()
		return s.source.Flatten(fetchCtx, s.rootID)
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-ch:
	}

	v, err, shared := res.Val, res.Err, res.Shared
	if err != nil {
		span.SetError(err)
		s.logger.Error("knowledge fetch failed", zap.String("root", s.rootID), zap.Error(err))
		return nil, err
	}

	doc := v.(*notion.Document)
	span.SetData("blocks", doc.Blocks)
	s.logger.Debug("knowledge fetched",
		zap.String("root", s.rootID),
		zap.Int("blocks", doc.Blocks),
		zap.Int("chars", len(doc.Content)),
		zap.Bool("truncated", doc.Truncated),
		zap.Bool("shared", shared),
	)
	return doc, nil
}

// Snapshot fetches the document and archives it under
// snapshots/<root>/<UTC timestamp>.md
func (s *KnowledgeService) Snapshot(ctx context.Context) (*SnapshotResult, error) {
	if s.store == nil {
		return nil, domain.ErrSnapshotsDisabled
	}

	ctx, span := telemetry.StartSpan(ctx, "KnowledgeService.Snapshot", telemetry.SpanAttributes{
		RootID:    s.rootID,
		Operation: "snapshot",
	})
	defer span.End()

	doc, err := s.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	key := SnapshotKey(s.rootID, s.now())
	body := []byte(doc.Content)
	if err := s.store.PutObject(ctx, key, snapshotContentType, body); err != nil {
		span.SetError(err)
		return nil, fmt.Errorf("%w: %w", ErrSnapshotStore, err)
	}

	url, err := s.store.GenerateDownloadURL(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to sign URL: %w", ErrSnapshotStore, err)
	}

	s.logger.Info("knowledge snapshot stored", zap.String("key", key), zap.Int("bytes", len(body)))
	return &SnapshotResult{
		Key:         key,
		Bytes:       len(body),
		DownloadURL: url,
		Truncated:   doc.Truncated,
	}, nil
}

func SnapshotKey(rootID string, at time.Time) string {
	return fmt.Sprintf("snapshots/%s/%s.md", rootID, at.UTC().Format("20060102T150405Z"))
}
