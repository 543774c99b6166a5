package entity

type ResourceType string

const (
	ResourceCBT      ResourceType = "cbt"
	ResourceExercise ResourceType = "exercise"
	ResourceVideo    ResourceType = "video"
	ResourceArticle  ResourceType = "article"
)

func (t ResourceType) IsValid() bool {
	switch t {
	case ResourceCBT, ResourceExercise, ResourceVideo, ResourceArticle:
		return true
	default:
		return false
	}
}

// Resource is a self-help material from the static catalog.
type Resource struct {
	ID          string       `json:"id"`
	Type        ResourceType `json:"type"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	URL         string       `json:"url"`
	Provider    string       `json:"provider"`
	Tags        []string     `json:"tags"`
}
