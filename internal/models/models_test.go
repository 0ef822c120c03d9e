package models

import (
	"testing"

	"github.com/fatflowers/sitecraft/pkg/types"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func TestTableNames(t *testing.T) {
	require.Equal(t, "submission", Submission{}.TableName())
	require.Equal(t, "submission_note", SubmissionNote{}.TableName())
	require.Equal(t, "submission_file", SubmissionFile{}.TableName())
	require.Equal(t, "submission_log", SubmissionLog{}.TableName())
	require.Equal(t, "webhook_event_log", WebhookEventLog{}.TableName())
}

func TestSubmission_HasActiveSubscription(t *testing.T) {
	var nilSub *Submission
	require.False(t, nilSub.HasActiveSubscription())
	require.False(t, (&Submission{}).HasActiveSubscription())
	require.False(t, (&Submission{SubscriptionStatus: lo.ToPtr(types.SubscriptionStatusPastDue)}).HasActiveSubscription())
	require.True(t, (&Submission{SubscriptionStatus: lo.ToPtr(types.SubscriptionStatusActive)}).HasActiveSubscription())
}
