package models

// Difficulty levels for a question
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// Question represents a single quiz item
type Question struct {
	Text               string   `json:"questionText"`
	Options            []string `json:"options"`
	CorrectOptionIndex int      `json:"correctAnswerIndex"`
	Topic              string   `json:"topic"`
	Difficulty         string   `json:"difficulty,omitempty"`
	Explanation        string   `json:"explanation,omitempty"`
}

// NormalizedDifficulty returns the question difficulty, defaulting to medium
func (q *Question) NormalizedDifficulty() string {
	switch q.Difficulty {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return q.Difficulty
	default:
		return DifficultyMedium
	}
}

// QuizBundle is the pending question set handed from the theory screen to the quiz runner
type QuizBundle struct {
	Subject       string     `json:"subject"`
	Source        string     `json:"source"`
	TopicsCovered []string   `json:"topicsCovered"`
	Questions     []Question `json:"questions"`
}

// QuestionBank holds the questions available for one subject
type QuestionBank struct {
	Subject   string     `json:"subject"`
	Questions []Question `json:"questions"`
}

// BanksFile is the layout of the question seed JSON file
type BanksFile struct {
	Subjects []QuestionBank `json:"subjects"`
	Metadata struct {
		Version     string `json:"version"`
		LastUpdated string `json:"lastUpdated"`
		Description string `json:"description"`
	} `json:"metadata"`
}

// APIResponse standard envelope for API responses
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// GenerateQuizRequest request to build a pending quiz from bank questions
type GenerateQuizRequest struct {
	Subject string   `json:"subject" validate:"required"`
	Topics  []string `json:"topics" validate:"required,min=1"`
	Source  string   `json:"source"`
	Count   int      `json:"count"`
}
