package service

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/se-evidence-api/internal/models"
	"github.com/noah-isme/se-evidence-api/pkg/jobs"
)

type auditLogger interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// auditTrail writes audit records on a best-effort basis.
type auditTrail struct {
	store  auditLogger
	source string
	logger *zap.Logger
}

func (a auditTrail) emit(ctx context.Context, actorID, action, resource, resourceID string, oldValues, newValues interface{}) {
	if a.store == nil {
		return
	}
	log := &models.AuditLog{
		Action:     action,
		Resource:   resource,
		ResourceID: &resourceID,
		OldValues:  marshalAudit(oldValues),
		NewValues:  marshalAudit(newValues),
		IPAddress:  "system",
		UserAgent:  a.source,
	}
	if actorID != "" {
		log.UserID = &actorID
	}
	if err := a.store.CreateAuditLog(ctx, log); err != nil {
		a.logger.Warn("failed to persist audit log", zap.String("action", action), zap.Error(err))
	}
}

func marshalAudit(value interface{}) []byte {
	if value == nil {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return nil
	}
	return payload
}

// AsyncAuditWriter moves audit inserts off the request path onto a worker
// queue. Records that cannot be queued are written inline.
type AsyncAuditWriter struct {
	store  auditLogger
	queue  *jobs.Queue
	logger *zap.Logger
}

const auditJobType = "audit_log"

// NewAsyncAuditWriter wraps store with a queue configured by cfg.
func NewAsyncAuditWriter(store auditLogger, cfg jobs.QueueConfig) *AsyncAuditWriter {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	w := &AsyncAuditWriter{store: store, logger: cfg.Logger}
	w.queue = jobs.NewQueue("audit", w.handle, cfg)
	return w
}

// Start launches the workers.
func (w *AsyncAuditWriter) Start(ctx context.Context) { w.queue.Start(ctx) }

// Stop flushes queued records and stops the workers.
func (w *AsyncAuditWriter) Stop() { w.queue.Stop() }

// CreateAuditLog queues log for insertion.
func (w *AsyncAuditWriter) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	if err := w.queue.Enqueue(jobs.Job{Type: auditJobType, Payload: log}); err != nil {
		w.logger.Warn("audit queue unavailable, writing inline", zap.Error(err))
		return w.store.CreateAuditLog(ctx, log)
	}
	return nil
}

func (w *AsyncAuditWriter) handle(ctx context.Context, job jobs.Job) error {
	log, ok := job.Payload.(*models.AuditLog)
	if !ok {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return w.store.CreateAuditLog(ctx, log)
}
