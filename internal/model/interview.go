package model

// InterviewState is a QuestionPlanner state
type InterviewState string

const (
	StateAskBudget     InterviewState = "ASK_BUDGET"
	StateAskFamily     InterviewState = "ASK_FAMILY"
	StateAskCondition  InterviewState = "ASK_CONDITION"
	StateAskUsage      InterviewState = "ASK_USAGE"
	StateAskPreference InterviewState = "ASK_PREFERENCE"
	StateDone          InterviewState = "DONE"
)

// Question is the prompt for the next answer
type Question struct {
	State InterviewState `json:"state"`
	Field Field          `json:"field"`
	Index int            `json:"index"` // 1-based
	Total int            `json:"total"`
	Text  string         `json:"text"`
}

// Turn is one question/answer pair of the interview history
type Turn struct {
	Question  Question `json:"question"`
	Answer    string   `json:"answer"`
	Extracted []Field  `json:"extracted,omitempty"`
}

// StartInterviewResponse is returned when a session begins
type StartInterviewResponse struct {
	SessionID string    `json:"session_id"`
	Question  *Question `json:"question"`
	Done      bool      `json:"done"`
}

// AnswerRequest carries one free-text answer
type AnswerRequest struct {
	Answer string `json:"answer" binding:"required"`
}

// AnswerResponse reports the interview progress after an answer
type AnswerResponse struct {
	SessionID string    `json:"session_id"`
	Question  *Question `json:"question,omitempty"`
	Done      bool      `json:"done"`
	Profile   *Profile  `json:"profile"`
	Extracted []Field   `json:"extracted"`
}

// InterviewStatus is a snapshot of a session
type InterviewStatus struct {
	SessionID string   `json:"session_id"`
	State     string   `json:"state"`
	Asked     int      `json:"asked"`
	Done      bool     `json:"done"`
	Profile   *Profile `json:"profile"`
	History   []Turn   `json:"history"`
}

// RecommendRequest asks for recommendations for an explicit profile
type RecommendRequest struct {
	Profile *Profile `json:"profile" binding:"required"`
	TopK    int      `json:"top_k"`
}

// RecommendResponse is the terminal output of the pipeline
type RecommendResponse struct {
	Profile         *Profile         `json:"profile"`
	Recommendations []Recommendation `json:"recommendations"`
	Candidates      int              `json:"candidates"`
	Took            int64            `json:"took_ms"`
}

// EmbeddingBatchRequest represents a batch embedding update request
type EmbeddingBatchRequest struct {
	Embeddings []EmbeddingItem `json:"embeddings" binding:"required"`
}

// EmbeddingBatchResponse represents the response for batch embedding update
type EmbeddingBatchResponse struct {
	Success int      `json:"success"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors,omitempty"`
}
