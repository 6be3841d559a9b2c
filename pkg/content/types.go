// Package content provides the typed client and caching service for the
// AI content upstream: introductions, contextual phrases, word
// breakdowns, fun facts, quizzes, chat turns and mini-game content.
package content

// Content kinds. The kind selects the upstream endpoint and the middle
// segment of the cache key.
const (
	KindIntro     = "intro"
	KindPhrases   = "phrases"
	KindBreakdown = "breakdown"
	KindFunFacts  = "funfacts"
	KindQuiz      = "quiz"
	KindChat      = "chat"
	KindGame      = "game"
)

// maxChatHistory is how many trailing chat turns travel with a chat
// request; older turns do not change the reply enough to justify the
// cache misses they cause.
const maxChatHistory = 5

// IntroRequest asks for an age-adapted introduction of an object.
type IntroRequest struct {
	ObjectName string `json:"object_name"`
	RoomName   string `json:"room_name,omitempty"`
	Language   string `json:"language"`
	AgeGroup   string `json:"age_group,omitempty"`
}

// Intro is an age-adapted introduction of an object.
type Intro struct {
	IntroText string `json:"intro_text"`
	Model     string `json:"model,omitempty"`
	FromCache bool   `json:"from_cache"`
	Fallback  bool   `json:"fallback,omitempty"`
}

// PhrasesRequest asks for contextual phrases using an object.
type PhrasesRequest struct {
	ObjectName string `json:"object_name"`
	RoomName   string `json:"room_name,omitempty"`
	Language   string `json:"language"`
	AgeGroup   string `json:"age_group,omitempty"`
	Count      int    `json:"count,omitempty"`
}

// Phrase is a single contextual phrase with the situation it fits.
type Phrase struct {
	Text      string `json:"text"`
	Situation string `json:"situation,omitempty"`
}

// PhraseSet is a set of contextual phrases for an object.
type PhraseSet struct {
	Phrases   []Phrase `json:"phrases"`
	Model     string   `json:"model,omitempty"`
	FromCache bool     `json:"from_cache"`
	Fallback  bool     `json:"fallback,omitempty"`
}

// BreakdownRequest asks for the pronunciation breakdown of a word.
type BreakdownRequest struct {
	Word     string `json:"word"`
	Language string `json:"language"`
}

// Breakdown is the pronunciation breakdown of a word.
type Breakdown struct {
	Word      string   `json:"word"`
	IPA       string   `json:"ipa"`
	Syllables []string `json:"syllables"`
	Model     string   `json:"model,omitempty"`
	FromCache bool     `json:"from_cache"`
}

// FunFactsRequest asks for fun facts about an object.
type FunFactsRequest struct {
	ObjectName string `json:"object_name"`
	Language   string `json:"language"`
	AgeGroup   string `json:"age_group,omitempty"`
	Count      int    `json:"count,omitempty"`
}

// FunFacts is a set of child-friendly facts about an object.
type FunFacts struct {
	Facts     []string `json:"facts"`
	Model     string   `json:"model,omitempty"`
	FromCache bool     `json:"from_cache"`
}

// QuizRequest asks for a quiz about a room or object.
type QuizRequest struct {
	Topic         string `json:"topic"`
	Language      string `json:"language"`
	AgeGroup      string `json:"age_group,omitempty"`
	QuestionCount int    `json:"question_count,omitempty"`
}

// QuizQuestion is a single multiple-choice question.
type QuizQuestion struct {
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	AnswerIndex int      `json:"answer_index"`
}

// Quiz is a generated multiple-choice quiz.
type Quiz struct {
	Questions []QuizQuestion `json:"questions"`
	Model     string         `json:"model,omitempty"`
	FromCache bool           `json:"from_cache"`
}

// ChatTurn is one prior exchange in a conversation.
type ChatTurn struct {
	Role string `json:"role"` // "child" or "bot"
	Text string `json:"text"`
}

// ChatRequest asks for the next conversational reply while chatting with
// an object. History carries at most the last five turns.
type ChatRequest struct {
	ObjectName string     `json:"object_name"`
	Message    string     `json:"message"`
	History    []ChatTurn `json:"history,omitempty"`
	Language   string     `json:"language"`
	AgeGroup   string     `json:"age_group,omitempty"`
}

// ChatReply is the bot's reply with example sentences and suggested
// follow-up questions.
type ChatReply struct {
	BotResponse string   `json:"bot_response"`
	Examples    []string `json:"examples,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
	Model       string   `json:"model,omitempty"`
	FromCache   bool     `json:"from_cache"`
	Fallback    bool     `json:"fallback,omitempty"`
}

// Game types the upstream can generate content for. The proxy passes the
// content through; game rules live in the app.
const (
	GameGuessWord      = "guess_word"
	GameAnagram        = "anagram"
	GameQuickQuiz      = "quick_quiz"
	GameMissingLetters = "missing_letters"
)

// GameRequest asks for the word material of a mini-game round.
type GameRequest struct {
	GameType string `json:"game_type"`
	RoomName string `json:"room_name"`
	Language string `json:"language"`
	AgeGroup string `json:"age_group,omitempty"`
	Count    int    `json:"count,omitempty"`
}

// GameItem is one word of a mini-game round with its hint.
type GameItem struct {
	Word string `json:"word"`
	Hint string `json:"hint,omitempty"`
}

// Game is the generated material for one mini-game round.
type Game struct {
	GameType  string     `json:"game_type"`
	Items     []GameItem `json:"items"`
	Model     string     `json:"model,omitempty"`
	FromCache bool       `json:"from_cache"`
}
