package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/askthebridge/bridge/internal/model"
)

func TestAnswerText(t *testing.T) {
	require.Equal(t, "plain", answerText(&model.Answer{Text: "plain"}))
	require.Equal(t, "", answerText(&model.Answer{}))

	multi := &model.Answer{
		Partners: []model.PartnerAnswer{
			{PartnerName: "Alpha Marine", Answer: "first answer"},
			{PartnerName: "Beta Crewing", Answer: "second answer"},
		},
	}
	require.Equal(t, "Alpha Marine: first answer\n\nBeta Crewing: second answer", answerText(multi))

	// Text wins when both are set.
	multi.Text = "summary"
	require.Equal(t, "summary", answerText(multi))
}
