package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRankForThresholds(t *testing.T) {
	tests := []struct {
		percent int
		want    Ranking
	}{
		{0, Unrated},
		{1, Fail},
		{69, Fail},
		{70, Pass},
		{89, Pass},
		{90, Excellent},
		{100, Excellent},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RankFor(tt.percent), "percent %d", tt.percent)
	}
}

func TestRankingPresentation(t *testing.T) {
	assert.Equal(t, "KHÔNG ĐẠT", Fail.Upper())
	assert.Equal(t, "XUẤT SẮC", Excellent.Upper())
	assert.Equal(t, "none", Unrated.Tone())
	assert.Equal(t, "pass", Pass.Tone())
	assert.Len(t, RankingBands(), 3)
}
