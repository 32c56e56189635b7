package models

import "time"

// Session status values
const (
	SessionStatusActive    = "active"
	SessionStatusSubmitted = "submitted"
)

// SessionView is the serializable snapshot of an active quiz session
type SessionView struct {
	Subject          string      `json:"subject"`
	Source           string      `json:"source"`
	TopicsCovered    []string    `json:"topicsCovered"`
	Questions        []Question  `json:"questions"`
	Selections       map[int]int `json:"selections"`
	Bookmarks        []int       `json:"bookmarks"`
	RemainingSeconds int         `json:"remainingSeconds"`
	Status           string      `json:"status"`
	Score            int         `json:"score"`
	Total            int         `json:"total"`
}

// AnsweredQuestion is one per-question result inside a submitted report
type AnsweredQuestion struct {
	QuestionText        string   `json:"questionText"`
	Options             []string `json:"options"`
	CorrectAnswerIndex  int      `json:"correctAnswerIndex"`
	SelectedAnswerIndex *int     `json:"selectedAnswerIndex"` // null when unanswered
	TopicTag            string   `json:"topicTag"`
	Difficulty          string   `json:"difficulty"`
	Explanation         string   `json:"explanation,omitempty"`
}

// BookmarkedQuestion is a question flagged for later review
type BookmarkedQuestion struct {
	QuestionText string `json:"questionText"`
	TopicTag     string `json:"topicTag"`
	Difficulty   string `json:"difficulty"`
}

// QuizReport is the summary transmitted to the grading/history endpoint
type QuizReport struct {
	Subject             string               `json:"subject"`
	Source              string               `json:"source"`
	Topics              []string             `json:"topics"`
	Questions           []AnsweredQuestion   `json:"questions"`
	BookmarkedQuestions []BookmarkedQuestion `json:"bookmarkedQuestions"`
}

// SubmitResult is the locally computed outcome of a submission
type SubmitResult struct {
	Score            int  `json:"score"`
	Total            int  `json:"total"`
	AlreadySubmitted bool `json:"alreadySubmitted"`
}

// AttemptRecord is a graded attempt as stored by the history endpoint
type AttemptRecord struct {
	ID                  string               `json:"id"`
	UserID              string               `json:"userId"`
	Subject             string               `json:"subject"`
	Source              string               `json:"source"`
	Topics              []string             `json:"topics"`
	Score               int                  `json:"score"`
	Total               int                  `json:"total"`
	Questions           []AnsweredQuestion   `json:"questions"`
	BookmarkedQuestions []BookmarkedQuestion `json:"bookmarkedQuestions"`
	SubmittedAt         time.Time            `json:"submittedAt"`
}

// SelectAnswerRequest request to record an answer choice
type SelectAnswerRequest struct {
	Position    int `json:"position"`
	OptionIndex int `json:"optionIndex"`
}

// ToggleBookmarkRequest request to flip a bookmark flag
type ToggleBookmarkRequest struct {
	Position int `json:"position"`
}
