package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/se-evidence-api/internal/models"
	"github.com/noah-isme/se-evidence-api/pkg/jobs"
)

type flakyAuditStore struct {
	mu       sync.Mutex
	failures int
	logs     []*models.AuditLog
}

func (s *flakyAuditStore) CreateAuditLog(_ context.Context, log *models.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failures > 0 {
		s.failures--
		return errors.New("connection reset")
	}
	s.logs = append(s.logs, log)
	return nil
}

func TestAsyncAuditWriterFlushesOnStop(t *testing.T) {
	store := &flakyAuditStore{failures: 1}
	writer := NewAsyncAuditWriter(store, jobs.QueueConfig{Workers: 2, MaxRetries: 2, RetryDelay: time.Millisecond})
	writer.Start(context.Background())

	for _, action := range []string{models.AuditActionArticleCreate, models.AuditActionArticleReview} {
		require.NoError(t, writer.CreateAuditLog(context.Background(), &models.AuditLog{Action: action}))
	}
	writer.Stop()

	assert.Len(t, store.logs, 2)
}

func TestAsyncAuditWriterFallsBackInline(t *testing.T) {
	store := &flakyAuditStore{}
	writer := NewAsyncAuditWriter(store, jobs.QueueConfig{})

	require.NoError(t, writer.CreateAuditLog(context.Background(), &models.AuditLog{Action: models.AuditActionSearchExport}))
	assert.Len(t, store.logs, 1)
}

func TestAuditTrailRecordsActor(t *testing.T) {
	store := &flakyAuditStore{}
	trail := auditTrail{store: store, source: "article_service"}

	trail.emit(context.Background(), "u-1", models.AuditActionArticleCreate, "article", "a-1", nil, map[string]string{"title": "TDD"})

	require.Len(t, store.logs, 1)
	assert.Equal(t, "u-1", *store.logs[0].UserID)
	assert.Equal(t, "a-1", *store.logs[0].ResourceID)
	assert.JSONEq(t, `{"title":"TDD"}`, string(store.logs[0].NewValues))
}
