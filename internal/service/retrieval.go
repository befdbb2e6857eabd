package service

import (
	"context"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/irihojaphet/kozi-chatbot-admin/internal/domain"
	"github.com/irihojaphet/kozi-chatbot-admin/internal/openai"
)

const (
	// DefaultContextLimit is the number of chunks requested per query.
	DefaultContextLimit = 6
	// MinRelevance is the lowest similarity a chunk needs to enter the prompt.
	MinRelevance = 0.55
	// ResponseTemperature keeps grounded answers close to the provided context.
	ResponseTemperature float32 = 0.2
)

// KnowledgeSearcher ranks knowledge chunks against a query.
type KnowledgeSearcher interface {
	Search(ctx context.Context, query string, limit int) ([]domain.SearchResult, error)
}

// ChatCompleter produces a chat completion.
type ChatCompleter interface {
	Complete(ctx context.Context, system string, turns []openai.ChatTurn, temperature float32) (string, error)
}

// UserContext carries optional facts about the asking user.
type UserContext struct {
	ProfileCompletion *int
}

// RetrievalService grounds language model answers in the knowledge store.
type RetrievalService struct {
	searcher KnowledgeSearcher
	llm      ChatCompleter
	persona  string
	logger   *slog.Logger
}

func NewRetrievalService(searcher KnowledgeSearcher, llm ChatCompleter, logger *slog.Logger) *RetrievalService {
	if logger == nil {
		logger = slog.Default()
	}
	return &RetrievalService{
		searcher: searcher,
		llm:      llm,
		persona:  AdminPersona,
		logger:   logger.With("component", "retrieval"),
	}
}

var queryExpansions = []struct {
	pattern     *regexp.Regexp
	replacement string
}{
	{regexp.MustCompile(`(?i)\bregistration fees?\b`), "service fee"},
	{regexp.MustCompile(`(?i)\bservice fees?\b`), "service fee fees price prices cost costs"},
	{regexp.MustCompile(`(?i)\bprices?\b`), "price prices cost costs fee fees"},
	{regexp.MustCompile(`(?i)\bcosts?\b`), "cost costs price prices fee fees"},
}

// NormalizeQuery expands fee and price wording so paraphrases hit the same
// chunks. Expansions apply in order, each to the output of the previous one.
func NormalizeQuery(q string) string {
	for _, e := range queryExpansions {
		q = e.pattern.ReplaceAllLiteralString(q, e.replacement)
	}
	return q
}

// GetRelevantContext returns the text of chunks that clear MinRelevance,
// joined by blank lines. Search failures yield an empty context.
func (s *RetrievalService) GetRelevantContext(ctx context.Context, query string, limit int) string {
	if s.searcher == nil {
		return ""
	}
	if limit <= 0 {
		limit = DefaultContextLimit
	}

	normalized := NormalizeQuery(query)
	results, err := s.searcher.Search(ctx, normalized, limit)
	if err != nil {
		s.logger.Error("context retrieval failed", "query", query, "error", err)
		return ""
	}

	var relevant []string
	for _, r := range results {
		if r.Similarity >= MinRelevance {
			relevant = append(relevant, r.Text)
		}
	}

	s.logger.Info("retrieved relevant context",
		"query", query,
		"normalized", normalized,
		"results", len(results),
		"relevant", len(relevant),
	)
	return strings.Join(relevant, "\n\n")
}

// BuildSystemPrompt appends retrieved knowledge and user status to persona.
func BuildSystemPrompt(persona, knowledge string, userCtx UserContext) string {
	var b strings.Builder
	b.WriteString(persona)
	if knowledge != "" {
		b.WriteString("\nRELEVANT KOZI INFORMATION:\n")
		b.WriteString(knowledge)
		b.WriteString("\n")
	}
	if userCtx.ProfileCompletion != nil {
		b.WriteString("\nUSER STATUS:\n- Profile completion: ")
		b.WriteString(strconv.Itoa(*userCtx.ProfileCompletion))
		b.WriteString("%\n")
	}
	return b.String()
}

// GenerateContextualResponse answers userMessage with the retrieved context
// in the system prompt. Language model errors are returned to the caller.
func (s *RetrievalService) GenerateContextualResponse(ctx context.Context, userMessage string, history []openai.ChatTurn, userCtx UserContext) (string, error) {
	if s.llm == nil {
		return "", domain.ErrLLMNotConfigured
	}

	knowledge := s.GetRelevantContext(ctx, userMessage, DefaultContextLimit)
	system := BuildSystemPrompt(s.persona, knowledge, userCtx)

	turns := make([]openai.ChatTurn, 0, len(history)+1)
	turns = append(turns, history...)
	turns = append(turns, openai.ChatTurn{Role: openai.RoleUser, Content: userMessage})

	reply, err := s.llm.Complete(ctx, system, turns, ResponseTemperature)
	if err != nil {
		s.logger.Error("contextual response failed", "error", err)
		return "", err
	}

	s.logger.Info("contextual response generated", "has_context", knowledge != "", "message_length", len(userMessage))
	return reply, nil
}
