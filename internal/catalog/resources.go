package catalog

import (
	"net/url"
	"slices"
	"strings"

	"github.com/futig/mitr-backend/internal/entity"
)

var resources = []entity.Resource{
	// CBT
	{
		ID:          "cbt-self-esteem",
		Type:        entity.ResourceCBT,
		Title:       "CBT Module: What is Self‑Esteem?",
		Description: "CCI workbook module introducing self‑esteem with CBT strategies.",
		URL:         "/resources/cbt-self-esteem.html",
		Provider:    "Centre for Clinical Interventions (CCI)",
		Tags:        []string{"cbt", "self-esteem", "workbook"},
	},
	{
		ID:          "cbt-thought-record",
		Type:        entity.ResourceCBT,
		Title:       "CBT Thought Record Sheet (PDF)",
		Description: "A printable thought record to identify triggers, thoughts, and balanced alternatives.",
		URL:         "/resources/cbt-thought-record.html",
		Provider:    "Get Self Help",
		Tags:        []string{"cbt", "thought record", "worksheet"},
	},
	{
		ID:          "cbt-what-is-anxiety",
		Type:        entity.ResourceCBT,
		Title:       "CBT: What is Anxiety?",
		Description: "Learn how anxiety works and how CBT helps reduce it.",
		URL:         "/resources/cbt-what-is-anxiety.html",
		Provider:    "CCI",
		Tags:        []string{"cbt", "anxiety", "psychoeducation"},
	},
	// Exercises
	{
		ID:          "exercise-box-breathing",
		Type:        entity.ResourceExercise,
		Title:       "Box Breathing: 4‑4‑4‑4 Technique",
		Description: "A simple paced breathing exercise to activate calm.",
		URL:         "/resources/box-breathing.html",
		Provider:    "Healthline",
		Tags:        []string{"breathing", "stress", "calming"},
	},
	{
		ID:          "exercise-grounding-54321",
		Type:        entity.ResourceExercise,
		Title:       "Grounding Techniques (5‑4‑3‑2‑1)",
		Description: "Practice present‑moment awareness using your senses.",
		URL:         "https://www.healthline.com/health/grounding-techniques",
		Provider:    "Healthline",
		Tags:        []string{"grounding", "anxiety", "mindfulness"},
	},
	{
		ID:          "exercise-cognitive-restructuring",
		Type:        entity.ResourceExercise,
		Title:       "Cognitive Restructuring in CBT",
		Description: "Step‑by‑step guide to challenge unhelpful thoughts.",
		URL:         "/resources/cognitive-restructuring.html",
		Provider:    "PositivePsychology.com",
		Tags:        []string{"cbt", "reframing", "thoughts"},
	},
	// Videos
	{
		ID:          "video-box-breathing",
		Type:        entity.ResourceVideo,
		Title:       "Guided Box Breathing (5 mins)",
		Description: "A short guided session to slow your breath and mind.",
		URL:         "https://www.youtube.com/watch?v=tEmt1Znux58",
		Provider:    "YouTube",
		Tags:        []string{"breathing", "relaxation", "video"},
	},
	{
		ID:          "video-meditation-5min",
		Type:        entity.ResourceVideo,
		Title:       "5‑Minute Mindful Breathing",
		Description: "Gently return attention to the breath.",
		URL:         "https://www.youtube.com/watch?v=YFSc7Ck0Ao0",
		Provider:    "YouTube",
		Tags:        []string{"meditation", "breath", "mindfulness"},
	},
	{
		ID:          "video-pmr",
		Type:        entity.ResourceVideo,
		Title:       "Progressive Muscle Relaxation",
		Description: "Release tension through a guided PMR routine.",
		URL:         "https://www.youtube.com/watch?v=ihO02wUzgkc",
		Provider:    "YouTube",
		Tags:        []string{"relaxation", "pmr", "body"},
	},
	// Articles
	{
		ID:          "article-anxiety-self-care",
		Type:        entity.ResourceArticle,
		Title:       "Anxiety self‑care tips",
		Description: "Simple ways to help manage anxiety symptoms day‑to‑day.",
		URL:         "/resources/anxiety-self-care.html",
		Provider:    "Mind UK",
		Tags:        []string{"anxiety", "self‑care", "tips"},
	},
	{
		ID:          "article-nhs-breathing",
		Type:        entity.ResourceArticle,
		Title:       "NHS: Breathing Exercises for Stress",
		Description: "A quick technique to reduce stress whenever you need it.",
		URL:         "/resources/breathing-for-stress.html",
		Provider:    "NHS",
		Tags:        []string{"breathing", "stress", "nhs"},
	},
}

// ResourceFilter narrows the resource list. Zero value matches everything.
type ResourceFilter struct {
	Types []entity.ResourceType
	Query string
}

// Resources returns the catalog entries matching the filter, in catalog order.
func Resources(filter ResourceFilter) []entity.Resource {
	query := strings.ToLower(strings.TrimSpace(filter.Query))

	out := make([]entity.Resource, 0, len(resources))
	for _, r := range resources {
		if len(filter.Types) > 0 && !slices.Contains(filter.Types, r.Type) {
			continue
		}
		if query != "" && !strings.Contains(haystack(r), query) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func haystack(r entity.Resource) string {
	return strings.ToLower(strings.Join([]string{r.Title, r.Description, r.Provider, strings.Join(r.Tags, " ")}, " "))
}

// EmbedURL converts YouTube watch and short links into embeddable player links.
// Other URLs are returned unchanged.
func EmbedURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	var id string
	switch {
	case strings.Contains(u.Hostname(), "youtu.be"):
		id = strings.TrimPrefix(u.Path, "/")
	case strings.Contains(u.Hostname(), "youtube.com"):
		id = u.Query().Get("v")
	}
	if id == "" {
		return raw
	}
	return "https://www.youtube.com/embed/" + id
}
