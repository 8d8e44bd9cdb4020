package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
)

// maxSuggestions caps every suggestion response, external or local.
const maxSuggestions = 5

// suggestionInstruction is the fixed system prompt for the external call.
// The model is told to answer with a bare JSON array so the reply can be
// parsed without natural-language scraping.
const suggestionInstruction = "あなたは掲示板のカテゴリ提案アシスタントです。" +
	"入力された本文に合うカテゴリ名を最大3件、JSON配列(文字列のみ)で返してください。説明文は不要です。"

// Completer is the outbound text-completion dependency of the suggestion
// service. *llm.Client satisfies it; tests substitute a fake.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// categoryBucket maps query keywords to a curated category set for the local
// fallback. Keywords are matched case-insensitively as substrings.
type categoryBucket struct {
	keywords   []string
	categories []string
}

// fallbackBuckets are checked in order; every matching bucket contributes its
// categories. Queries matching no bucket get defaultCategories.
var fallbackBuckets = []categoryBucket{
	{
		keywords: []string{
			"開発", "プログラミング", "コード", "エンジニア", "アプリ", "実装", "バグ",
			"flutter", "react", "vue", "python", "golang", "javascript", "typescript", "web",
		},
		categories: []string{"技術", "プログラミング", "モバイル開発"},
	},
	{
		keywords: []string{
			"ai", "人工知能", "機械学習", "ディープラーニング", "生成", "chatgpt", "llm", "データ分析",
		},
		categories: []string{"AI", "機械学習", "データサイエンス"},
	},
	{
		keywords: []string{
			"仕事", "職場", "キャリア", "転職", "会議", "マネジメント", "チーム", "残業",
		},
		categories: []string{"ビジネス", "キャリア", "働き方"},
	},
}

var defaultCategories = []string{"雑談", "質問", "その他"}

// SuggestionService proposes thread categories for free text.
//
// When a completion client is configured it asks the external API once; any
// failure on that path degrades silently to the deterministic local keyword
// matcher. SuggestCategories therefore never returns an error.
type SuggestionService struct {
	completer Completer // nil when no API key is configured
	logger    *slog.Logger
}

// NewSuggestionService creates a SuggestionService. Pass a nil completer to
// run with the local fallback only.
func NewSuggestionService(completer Completer, logger *slog.Logger) *SuggestionService {
	return &SuggestionService{
		completer: completer,
		logger:    logger,
	}
}

// SuggestCategories returns up to 5 distinct category names for the query.
// An empty (or whitespace-only) query returns an empty list without touching
// the external API.
func (s *SuggestionService) SuggestCategories(ctx context.Context, query string) []string {
	query = strings.TrimSpace(query)
	if query == "" {
		return []string{}
	}

	if s.completer != nil {
		if categories, ok := s.suggestExternal(ctx, query); ok {
			return categories
		}
	}

	return s.suggestLocal(query)
}

// suggestExternal asks the completion API and parses its reply. The second
// return value is false whenever anything goes wrong, which sends the caller
// to the local fallback.
func (s *SuggestionService) suggestExternal(ctx context.Context, query string) ([]string, bool) {
	reply, err := s.completer.Complete(ctx, suggestionInstruction, query)
	if err != nil {
		s.logger.Debug("category suggestion API failed, using local fallback",
			slog.String("error", err.Error()),
		)
		return nil, false
	}

	var categories []string
	if err := json.Unmarshal([]byte(stripCodeFence(reply)), &categories); err != nil {
		s.logger.Debug("category suggestion reply was not a JSON string array",
			slog.String("reply", reply),
		)
		return nil, false
	}

	categories = dedupeAndCap(categories)
	if len(categories) == 0 {
		return nil, false
	}
	return categories, true
}

// suggestLocal is the deterministic keyword matcher. Matching is
// case-insensitive substring containment over the query.
func (s *SuggestionService) suggestLocal(query string) []string {
	lowered := strings.ToLower(query)

	var categories []string
	for _, bucket := range fallbackBuckets {
		for _, keyword := range bucket.keywords {
			if strings.Contains(lowered, keyword) {
				categories = append(categories, bucket.categories...)
				break
			}
		}
	}

	if len(categories) == 0 {
		categories = defaultCategories
	}

	return dedupeAndCap(categories)
}

// stripCodeFence removes surrounding ``` markers and an optional leading
// "json" language tag, which chat models frequently wrap around JSON replies.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
	}

	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "json") {
		s = strings.TrimPrefix(s, "json")
	}

	return strings.TrimSpace(s)
}

// dedupeAndCap trims entries, drops empties and duplicates (keeping first
// occurrence order), and cuts the list at maxSuggestions.
func dedupeAndCap(categories []string) []string {
	seen := map[string]bool{}
	result := []string{}
	for _, c := range categories {
		c = strings.TrimSpace(c)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		result = append(result, c)
		if len(result) == maxSuggestions {
			break
		}
	}
	return result
}
