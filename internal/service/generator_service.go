package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"learn_my_way_backend/internal/config"
	"learn_my_way_backend/internal/model"
	"learn_my_way_backend/pkg/logger"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// generatorTimeout 生成请求的客户端超时，超时即落静态兜底内容
const generatorTimeout = 20 * time.Second

// GeneratorService 调用 OpenAI 兼容接口生成挑战内容。
// 任何失败（网络、超时、响应不是合法 JSON）都以静态负载兜底，
// 学习流程不因生成服务不可用而中断。
type GeneratorService struct {
	cfg    config.AIConfig
	client *http.Client
}

func NewGeneratorService(cfg config.AIConfig) *GeneratorService {
	return &GeneratorService{
		cfg:    cfg,
		client: &http.Client{Timeout: generatorTimeout},
	}
}

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatCompletionRequest struct {
	Model    string        `json:"model"`
	Messages []ChatMessage `json:"messages"`
}

type ChatCompletionResponse struct {
	Choices []struct {
		Message ChatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// GenerateChallenge 返回挑战负载和是否使用了兜底内容
func (s *GeneratorService) GenerateChallenge(ctx context.Context, ct model.ChallengeType, gradeLevel string) (json.RawMessage, bool) {
	prompt, ok := challengePrompts[ct]
	if !ok {
		return FallbackContent(ct), true
	}

	text, err := s.chat(ctx, fmt.Sprintf(prompt, gradeLevel))
	if err != nil {
		logger.Log.Warn("challenge generation failed, using fallback content",
			zap.String("challengeType", string(ct)), zap.Error(err))
		return FallbackContent(ct), true
	}

	cleaned := stripJSONFences(text)
	if !json.Valid([]byte(cleaned)) {
		logger.Log.Warn("challenge generation returned invalid JSON, using fallback content",
			zap.String("challengeType", string(ct)))
		return FallbackContent(ct), true
	}
	return json.RawMessage(cleaned), false
}

func (s *GeneratorService) chat(ctx context.Context, prompt string) (string, error) {
	reqBody := ChatCompletionRequest{
		Model: s.cfg.Model,
		Messages: []ChatMessage{
			{Role: "system", Content: "You are a friendly teacher creating learning content for children. Respond with JSON only, no commentary."},
			{Role: "user", Content: prompt},
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.cfg.BaseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("generator API error (status %d): %s", resp.StatusCode, string(body))
	}

	var result ChatCompletionResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", err
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("generator returned no choices")
	}
	return result.Choices[0].Message.Content, nil
}

// stripJSONFences 去掉模型习惯性包裹的 ```json 围栏
func stripJSONFences(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	return strings.TrimSpace(text)
}

// 各挑战类型的生成提示词，%s 为年级区间
var challengePrompts = map[model.ChallengeType]string{
	model.ChallengeReading: `Generate a reading comprehension passage for grades %s. Include: passage (200-300 words), 5 comprehension questions with multiple choice answers (A, B, C, D). Make the passage engaging and appropriate for the grade level. Format as JSON: { "passage": "string", "questions": [{ "id": number, "question": "string", "options": ["A", "B", "C", "D"], "correctAnswer": "A|B|C|D" }] }`,
	model.ChallengeWriting: `Generate a creative writing prompt for grades %s. The prompt should spark imagination, ask for descriptive language, and be achievable in 10-15 minutes of writing. Format as JSON: { "prompt": "string", "minWords": number, "tips": ["string"] }`,
	model.ChallengePronunciation: `Generate 5 pronunciation practice words for grades %s. Pick words children commonly mispronounce. Format as JSON: { "words": [{ "word": "string", "phonetic": "string", "tip": "string" }] }`,
	model.ChallengeGrammar: `Generate 5 grammar practice questions for grades %s covering tenses, articles and subject-verb agreement. Format as JSON: { "questions": [{ "id": number, "question": "string", "options": ["A", "B", "C", "D"], "correctAnswer": "A|B|C|D" }] }`,
}

// 生成服务不可用时的静态兜底负载
var fallbackContent = map[model.ChallengeType]json.RawMessage{
	model.ChallengeReading: json.RawMessage(`{
		"passage": "Maya loved visiting her grandmother's garden. Every summer morning, she would walk between the rows of tomatoes and sunflowers, watching the bees hum from flower to flower. One day she noticed a small bird building a nest in the old apple tree. Day after day, Maya watched the nest grow from a few twigs into a cozy home. When three tiny blue eggs appeared, she promised to keep the secret safe. By the end of summer, Maya had watched the eggs hatch and the little birds learn to fly. She decided that patience, like a garden, always grows something wonderful.",
		"questions": [
			{ "id": 1, "question": "Where did Maya see the bird's nest?", "options": ["In the sunflowers", "In the old apple tree", "On the garden fence", "Under the tomatoes"], "correctAnswer": "B" },
			{ "id": 2, "question": "How many eggs were in the nest?", "options": ["Two", "Four", "Three", "Five"], "correctAnswer": "C" },
			{ "id": 3, "question": "What lesson did Maya learn?", "options": ["Birds are noisy", "Patience grows something wonderful", "Gardens need water", "Summer is short"], "correctAnswer": "B" }
		]
	}`),
	model.ChallengeWriting: json.RawMessage(`{
		"prompt": "Write a short story about a magical adventure in your favorite place. Describe what you see, hear, and feel during your adventure. Use at least 5 descriptive words.",
		"minWords": 50,
		"tips": ["Start with where you are", "Use your five senses", "Give your story a beginning, middle and end"]
	}`),
	model.ChallengePronunciation: json.RawMessage(`{
		"words": [
			{ "word": "butterfly", "phonetic": "/ˈbʌtərflaɪ/", "tip": "Three beats: but-ter-fly" },
			{ "word": "squirrel", "phonetic": "/ˈskwɜːrəl/", "tip": "Start with 'skw' like in 'square'" },
			{ "word": "library", "phonetic": "/ˈlaɪbrəri/", "tip": "Don't skip the first 'r'" },
			{ "word": "vegetable", "phonetic": "/ˈvedʒtəbəl/", "tip": "Say it in three beats: vej-tuh-bul" },
			{ "word": "comfortable", "phonetic": "/ˈkʌmftərbəl/", "tip": "The 'or' almost disappears" }
		]
	}`),
	model.ChallengeGrammar: json.RawMessage(`{
		"questions": [
			{ "id": 1, "question": "She ___ to school every day.", "options": ["go", "goes", "going", "gone"], "correctAnswer": "B" },
			{ "id": 2, "question": "I saw ___ elephant at the zoo.", "options": ["a", "an", "the", "no article"], "correctAnswer": "B" },
			{ "id": 3, "question": "The dogs ___ in the park yesterday.", "options": ["plays", "played", "playing", "play"], "correctAnswer": "B" }
		]
	}`),
}

// FallbackContent 返回指定类型的静态兜底负载
func FallbackContent(ct model.ChallengeType) json.RawMessage {
	if content, ok := fallbackContent[ct]; ok {
		return content
	}
	return json.RawMessage(`{}`)
}
