package dto

type AskRequest struct {
	Question  string `json:"question" validate:"required"`
	SessionID string `json:"sessionId"`
}

// AskResponse always carries an answer. Degraded is set when the chatbot
// engine was unavailable and the caller got the canned fallback instead.
type AskResponse struct {
	Answer    string `json:"answer"`
	SessionID string `json:"sessionId"`
	Degraded  bool   `json:"degraded"`
}
