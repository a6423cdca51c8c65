package models

import "time"

// Audit actions. Review covers both approve and reject; the new status is in
// the record's new values.
const (
	AuditActionLogin          = "LOGIN"
	AuditActionRegister       = "REGISTER"
	AuditActionUserCreate     = "USER_CREATE"
	AuditActionUserUpdate     = "USER_UPDATE"
	AuditActionUserDelete     = "USER_DELETE"
	AuditActionArticleCreate  = "ARTICLE_CREATE"
	AuditActionArticleUpdate  = "ARTICLE_UPDATE"
	AuditActionArticleReview  = "ARTICLE_REVIEW"
	AuditActionArticleDelete  = "ARTICLE_DELETE"
	AuditActionEvidenceCreate = "EVIDENCE_CREATE"
	AuditActionEvidenceUpdate = "EVIDENCE_UPDATE"
	AuditActionEvidenceDelete = "EVIDENCE_DELETE"
	AuditActionSearchExport   = "SEARCH_EXPORT"
)

// Audited resources.
const (
	AuditResourceArticle  = "articles"
	AuditResourceEvidence = "evidence"
	AuditResourceUser     = "users"
	AuditResourceAuth     = "auth"
	AuditResourceSearch   = "search"
)

// AuditLog is one row of audit_logs. Old and new values hold JSON snapshots.
type AuditLog struct {
	ID         string    `db:"id" json:"id"`
	UserID     *string   `db:"user_id" json:"user_id,omitempty"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID *string   `db:"resource_id" json:"resource_id,omitempty"`
	OldValues  []byte    `db:"old_values" json:"old_values,omitempty"`
	NewValues  []byte    `db:"new_values" json:"new_values,omitempty"`
	IPAddress  string    `db:"ip_address" json:"ip_address"`
	UserAgent  string    `db:"user_agent" json:"user_agent"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
