package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArticleStatusTransitions(t *testing.T) {
	cases := []struct {
		from   ArticleStatus
		action ArticleAction
		to     ArticleStatus
		ok     bool
	}{
		{ArticleStatusPendingReview, ArticleActionApprove, ArticleStatusPendingAnalysis, true},
		{ArticleStatusPendingReview, ArticleActionReject, ArticleStatusRejected, true},
		{ArticleStatusPendingAnalysis, ArticleActionRecordEvidence, ArticleStatusAnalyzed, true},
		{ArticleStatusApproved, ArticleActionRecordEvidence, ArticleStatusAnalyzed, true},
		{ArticleStatusPendingAnalysis, ArticleActionApprove, "", false},
		{ArticleStatusRejected, ArticleActionReject, "", false},
		{ArticleStatusPendingReview, ArticleActionRecordEvidence, "", false},
		{ArticleStatusAnalyzed, ArticleActionRecordEvidence, "", false},
		{ArticleStatusPublished, ArticleActionApprove, "", false},
	}
	for _, tc := range cases {
		next, err := tc.from.Transition(tc.action)
		if !tc.ok {
			var transitionErr *TransitionError
			require.ErrorAs(t, err, &transitionErr, "%s/%s", tc.from, tc.action)
			assert.Equal(t, tc.from, transitionErr.From)
			assert.Equal(t, tc.from, next)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tc.to, next)
	}
}

func TestArticleActionSources(t *testing.T) {
	assert.Equal(t, []ArticleStatus{ArticleStatusPendingReview}, ArticleActionApprove.Sources())
	assert.Equal(t, []ArticleStatus{ArticleStatusPendingAnalysis, ArticleStatusApproved}, ArticleActionRecordEvidence.Sources())
}

func TestAverageRatingWithReplacement(t *testing.T) {
	var ratings []Rating
	assert.Equal(t, 0.0, AverageRating(ratings))

	ratings = UpsertRating(ratings, Rating{UserID: "u1", Value: 5})
	ratings = UpsertRating(ratings, Rating{UserID: "u2", Value: 4})
	ratings = UpsertRating(ratings, Rating{UserID: "u3", Value: 4})
	assert.Equal(t, 4.33, AverageRating(ratings))

	ratings = UpsertRating(ratings, Rating{UserID: "u1", Value: 1})
	require.Len(t, ratings, 3)
	assert.Equal(t, 3.0, AverageRating(ratings))
}

func TestArticleSearchFilterMatches(t *testing.T) {
	abstract := "A study on TDD impacts."
	article := Article{Title: "Test-Driven Development in Practice", Abstract: &abstract, PublicationYear: 2020}
	from, to := 2019, 2021
	late := 2021

	assert.True(t, ArticleSearchFilter{}.Matches(article))
	assert.True(t, ArticleSearchFilter{Query: "tdd"}.Matches(article))
	assert.True(t, ArticleSearchFilter{Query: "DRIVEN"}.Matches(article))
	assert.False(t, ArticleSearchFilter{Query: "pair programming"}.Matches(article))
	assert.True(t, ArticleSearchFilter{YearFrom: &from, YearTo: &to}.Matches(article))
	assert.False(t, ArticleSearchFilter{YearFrom: &late}.Matches(article))
	assert.True(t, ArticleSearchFilter{Query: "  "}.Empty())
	assert.True(t, ArticleSearchFilter{Query: " TDD"}.Matches(article))
	assert.False(t, ArticleSearchFilter{Query: " test"}.Matches(article))
}

func TestAdvancedSearchFilterUnsatisfiable(t *testing.T) {
	from, to := 2022, 2020

	assert.False(t, AdvancedSearchFilter{}.Unsatisfiable())
	assert.False(t, AdvancedSearchFilter{YearFrom: &to, YearTo: &from}.Unsatisfiable())
	assert.False(t, AdvancedSearchFilter{EvidenceResult: EvidenceResultSupports}.Unsatisfiable())
	assert.True(t, AdvancedSearchFilter{YearFrom: &from, YearTo: &to}.Unsatisfiable())
	assert.True(t, AdvancedSearchFilter{EvidenceResult: "maybe"}.Unsatisfiable())
}

func TestRolesNormalize(t *testing.T) {
	roles := Roles{"Admin", "analyst", "analyst", "ghost"}.Normalize()
	assert.Equal(t, Roles{RoleAdmin, RoleAnalyst}, roles)
	assert.True(t, roles.HasAny(RoleModerator, RoleAnalyst))
	assert.False(t, roles.Has(RoleSubmitter))
}
