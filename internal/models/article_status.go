package models

import "fmt"

// ArticleStatus captures the moderation/analysis state of an article.
type ArticleStatus string

const (
	ArticleStatusPendingReview   ArticleStatus = "pending_review"
	ArticleStatusPendingAnalysis ArticleStatus = "pending_analysis"
	ArticleStatusApproved        ArticleStatus = "approved"
	ArticleStatusAnalyzed        ArticleStatus = "analyzed"
	ArticleStatusRejected        ArticleStatus = "rejected"
	ArticleStatusPublished       ArticleStatus = "published"
)

// ArticleAction is an event that moves an article between statuses.
type ArticleAction string

const (
	ArticleActionApprove        ArticleAction = "approve"
	ArticleActionReject         ArticleAction = "reject"
	ArticleActionRecordEvidence ArticleAction = "record_evidence"
)

// articleTransitions is the complete transition table. Statuses without an
// entry (analyzed, rejected, published) are terminal.
var articleTransitions = map[ArticleStatus]map[ArticleAction]ArticleStatus{
	ArticleStatusPendingReview: {
		ArticleActionApprove: ArticleStatusPendingAnalysis,
		ArticleActionReject:  ArticleStatusRejected,
	},
	ArticleStatusPendingAnalysis: {
		ArticleActionRecordEvidence: ArticleStatusAnalyzed,
	},
	ArticleStatusApproved: {
		ArticleActionRecordEvidence: ArticleStatusAnalyzed,
	},
}

// TransitionError reports an action that is not permitted from the current status.
type TransitionError struct {
	From   ArticleStatus
	Action ArticleAction
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s article in status %s", e.Action, e.From)
}

// Valid reports whether s is a known status.
func (s ArticleStatus) Valid() bool {
	switch s {
	case ArticleStatusPendingReview, ArticleStatusPendingAnalysis, ArticleStatusApproved,
		ArticleStatusAnalyzed, ArticleStatusRejected, ArticleStatusPublished:
		return true
	default:
		return false
	}
}

// Transition returns the status reached by applying action to s.
func (s ArticleStatus) Transition(action ArticleAction) (ArticleStatus, error) {
	if next, ok := articleTransitions[s][action]; ok {
		return next, nil
	}
	return s, &TransitionError{From: s, Action: action}
}

// Can reports whether action is permitted from s.
func (s ArticleStatus) Can(action ArticleAction) bool {
	_, ok := articleTransitions[s][action]
	return ok
}

// Sources lists the statuses from which the action may be applied, in a stable order.
func (a ArticleAction) Sources() []ArticleStatus {
	ordered := []ArticleStatus{
		ArticleStatusPendingReview,
		ArticleStatusPendingAnalysis,
		ArticleStatusApproved,
		ArticleStatusAnalyzed,
		ArticleStatusRejected,
		ArticleStatusPublished,
	}
	sources := make([]ArticleStatus, 0, 2)
	for _, status := range ordered {
		if status.Can(a) {
			sources = append(sources, status)
		}
	}
	return sources
}
