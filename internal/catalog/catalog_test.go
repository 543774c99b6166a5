package catalog

import (
	"testing"

	"github.com/futig/mitr-backend/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecommend(t *testing.T) {
	tests := []struct {
		name   string
		reason string
		want   entity.AssessmentID
		ok     bool
	}{
		{name: "anxious", reason: "I feel anxious before meetings", want: entity.AssessmentGAD7, ok: true},
		{name: "hopeless", reason: "Everything seems Hopeless lately", want: entity.AssessmentPHQ9, ok: true},
		{name: "struggle", reason: "I struggle to get through the day", want: entity.AssessmentGHQ12, ok: true},
		{name: "stress", reason: "work STRESS", want: entity.AssessmentGAD7, ok: true},
		{name: "phq9 wins over gad7", reason: "sad and worried", want: entity.AssessmentPHQ9, ok: true},
		{name: "no match", reason: "routine check-up", ok: false},
		{name: "empty", reason: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Recommend(tt.reason)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOffer(t *testing.T) {
	assert.Equal(t,
		[]entity.AssessmentID{entity.AssessmentPHQ9, entity.AssessmentGAD7, entity.AssessmentGHQ12},
		Offer(""),
	)
	assert.Equal(t,
		[]entity.AssessmentID{entity.AssessmentGHQ12, entity.AssessmentPHQ9, entity.AssessmentGAD7},
		Offer(entity.AssessmentGHQ12),
	)
}

func TestAssessmentCatalog(t *testing.T) {
	counts := map[entity.AssessmentID]int{
		entity.AssessmentPHQ9:  9,
		entity.AssessmentGAD7:  7,
		entity.AssessmentGHQ12: 12,
	}

	for id, n := range counts {
		a, ok := Assessment(id)
		require.True(t, ok, id)
		assert.Len(t, a.Questions, n)
		assert.Len(t, a.Options, 4)
		assert.True(t, a.IsLastQuestion(n-1))
		assert.False(t, a.IsLastQuestion(n-2))
	}

	_, ok := Assessment("bdi")
	assert.False(t, ok)
}

func TestResources(t *testing.T) {
	assert.Len(t, Resources(ResourceFilter{}), 11)

	videos := Resources(ResourceFilter{Types: []entity.ResourceType{entity.ResourceVideo}})
	require.Len(t, videos, 3)
	for _, r := range videos {
		assert.Equal(t, entity.ResourceVideo, r.Type)
	}

	breathing := Resources(ResourceFilter{Query: "  BREATHING "})
	ids := make([]string, 0, len(breathing))
	for _, r := range breathing {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"exercise-box-breathing", "video-box-breathing", "video-meditation-5min", "article-nhs-breathing"}, ids)

	nhs := Resources(ResourceFilter{
		Types: []entity.ResourceType{entity.ResourceCBT, entity.ResourceArticle},
		Query: "nhs",
	})
	require.Len(t, nhs, 1)
	assert.Equal(t, "article-nhs-breathing", nhs[0].ID)

	assert.Empty(t, Resources(ResourceFilter{Query: "no such resource"}))
}

func TestEmbedURL(t *testing.T) {
	assert.Equal(t, "https://www.youtube.com/embed/tEmt1Znux58", EmbedURL("https://www.youtube.com/watch?v=tEmt1Znux58"))
	assert.Equal(t, "https://www.youtube.com/embed/abc", EmbedURL("https://youtu.be/abc"))
	assert.Equal(t, "/resources/box-breathing.html", EmbedURL("/resources/box-breathing.html"))
}

func TestRandomReferral(t *testing.T) {
	all := Referrals()
	require.Len(t, all, 5)
	for i := 0; i < 20; i++ {
		assert.Contains(t, all, RandomReferral())
	}
}
