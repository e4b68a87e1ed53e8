package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"admission-api/core/config"
	"admission-api/core/errors"
	"admission-api/core/logger"
	"admission-api/core/utils"
	"admission-api/modules/chatbot/dto"

	"golang.org/x/time/rate"
)

// FallbackAnswer is returned when the engine is down. The conversation keeps
// working in degraded mode instead of erroring the widget out.
const FallbackAnswer = "Xin lỗi, trợ lý ảo đang tạm thời gián đoạn. " +
	"Bạn có thể đặt lịch tư vấn trực tiếp hoặc gửi yêu cầu hỗ trợ, phòng tuyển sinh sẽ trả lời sớm nhất."

// ChatbotEngine is the outbound conversation API.
type ChatbotEngine interface {
	Ask(ctx context.Context, sessionID, question string) (string, *errors.AppError)
}

// ChatbotService fronts the external engine with a per-user rate limit and
// the degraded fallback.
type ChatbotService struct {
	engine ChatbotEngine

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

func NewChatbotService(engine ChatbotEngine) *ChatbotService {
	return &ChatbotService{
		engine:   engine,
		limiters: make(map[string]*rate.Limiter),
		// One question per 2 seconds sustained, bursts of 5.
		limit: rate.Every(2 * time.Second),
		burst: 5,
	}
}

type ChatbotServiceInterface interface {
	Ask(ctx context.Context, userID string, req *dto.AskRequest) (*dto.AskResponse, *errors.AppError)
}

func (s *ChatbotService) limiterFor(userID string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()
	limiter, ok := s.limiters[userID]
	if !ok {
		limiter = rate.NewLimiter(s.limit, s.burst)
		s.limiters[userID] = limiter
	}
	return limiter
}

func (s *ChatbotService) Ask(ctx context.Context, userID string, req *dto.AskRequest) (*dto.AskResponse, *errors.AppError) {
	if !s.limiterFor(userID).Allow() {
		return nil, errors.NewAppError(errors.ErrRateLimited, "Too many questions, slow down a little", nil)
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = utils.GenerateID()
	}

	answer, appErr := s.engine.Ask(ctx, sessionID, req.Question)
	if appErr != nil {
		// Engine trouble is logged and absorbed; the widget stays alive.
		logger.Error("ChatbotService:Ask:Engine:Error:", appErr)
		return &dto.AskResponse{
			Answer:    FallbackAnswer,
			SessionID: sessionID,
			Degraded:  true,
		}, nil
	}

	return &dto.AskResponse{Answer: answer, SessionID: sessionID}, nil
}

// HTTPEngine talks to the hosted chatbot over REST.
type HTTPEngine struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewHTTPEngine(cfg config.ChatbotConfig) *HTTPEngine {
	return &HTTPEngine{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type engineRequest struct {
	SessionID string `json:"sessionId"`
	Question  string `json:"question"`
}

type engineResponse struct {
	Success bool   `json:"success"`
	Answer  string `json:"answer"`
	Message string `json:"message"`
}

func (e *HTTPEngine) Ask(ctx context.Context, sessionID, question string) (string, *errors.AppError) {
	payload, err := json.Marshal(engineRequest{SessionID: sessionID, Question: question})
	if err != nil {
		return "", errors.NewAppError(errors.ErrInternalServer, "Failed to encode the question", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/v1/chat", bytes.NewReader(payload))
	if err != nil {
		return "", errors.NewAppError(errors.ErrInternalServer, "Failed to build the chatbot request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return "", errors.NewAppError(errors.ErrUpstreamNetwork, "Chatbot engine is unreachable", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.NewAppError(errors.ErrUpstreamNetwork, "Failed to read the chatbot response", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.Error("ChatbotEngine:Ask:HTTPError", "status", resp.StatusCode, "body", string(raw))
		return "", errors.NewAppError(errors.ErrUpstreamHTTP,
			fmt.Sprintf("Chatbot engine returned HTTP %d", resp.StatusCode), nil)
	}

	var result engineResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		return "", errors.NewAppError(errors.ErrUpstreamDataShape, "Chatbot engine returned a non-JSON body", err)
	}
	if !result.Success {
		return "", errors.NewAppError(errors.ErrUpstreamApplication,
			fmt.Sprintf("Chatbot engine rejected the question: %s", result.Message), nil)
	}
	if result.Answer == "" {
		return "", errors.NewAppError(errors.ErrUpstreamDataShape, "Chatbot engine response is missing the answer", nil)
	}
	return result.Answer, nil
}
