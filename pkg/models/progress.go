package models

// Topic types shown on the theory tracker
const (
	TopicTypeImportant = "Important"
	TopicTypeOther     = "Other"
)

// Topic is one entry of a subject's learning path
type Topic struct {
	ID      string `json:"id"`
	Subject string `json:"subject"`
	Title   string `json:"title"`
	Type    string `json:"type"`
	Order   int    `json:"order"`
}

// TopicsFile is the layout of the topic catalog seed JSON file
type TopicsFile struct {
	Topics []Topic `json:"topics"`
}

// TopicProgress per-user flags for one topic
type TopicProgress struct {
	IsCompleted  bool   `json:"isCompleted"`
	IsBookmarked bool   `json:"isBookmarked"`
	RemindOn     string `json:"remindOn,omitempty"` // ISO date, empty when no reminder
	Notes        string `json:"notes,omitempty"`
}

// UpdateProgressRequest request to change one progress field
type UpdateProgressRequest struct {
	Subject string      `json:"subject" validate:"required"`
	TopicID string      `json:"topicId" validate:"required"`
	Field   string      `json:"field" validate:"required,oneof=isCompleted isBookmarked remindOn notes"`
	Value   interface{} `json:"value"`
}
