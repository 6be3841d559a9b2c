package content

import (
	"strings"
)

// Canned content served when the upstream fails. The child always gets an
// answer; fallbacks are marked and never cached so the next request tries
// the upstream again.

// fallbackIntro builds a generic object introduction.
func fallbackIntro(objectName string) *Intro {
	name := strings.TrimSpace(objectName)
	if name == "" {
		name = "thing"
	}
	return &Intro{
		IntroText: "Hi! I'm " + indefiniteArticle(name) + " " + strings.ToLower(name) +
			". Tap me to learn how to say my name!",
		Fallback: true,
	}
}

// fallbackPhrases builds a minimal phrase set around the object name.
func fallbackPhrases(objectName string) *PhraseSet {
	name := strings.ToLower(strings.TrimSpace(objectName))
	if name == "" {
		name = "thing"
	}
	article := indefiniteArticle(name)
	return &PhraseSet{
		Phrases: []Phrase{
			{Text: "This is " + article + " " + name + ".", Situation: "pointing at it"},
			{Text: "I like the " + name + "!", Situation: "showing excitement"},
			{Text: "Where is the " + name + "?", Situation: "looking for it"},
		},
		Fallback: true,
	}
}

// fallbackChatReply picks a reply from the child's message keywords.
func fallbackChatReply(objectName, message string) *ChatReply {
	name := strings.ToLower(strings.TrimSpace(objectName))
	if name == "" {
		name = "friend"
	}
	lower := strings.ToLower(message)

	var response string
	switch {
	case strings.Contains(lower, "hello") || strings.Contains(lower, "hi"):
		response = "Hello! I'm the " + name + ". Nice to meet you!"
	case strings.Contains(lower, "name"):
		response = "My name is " + name + "! Can you say it with me?"
	case strings.Contains(lower, "color") || strings.Contains(lower, "colour"):
		response = "Look closely at me! What color do you think I am?"
	case strings.Contains(lower, "bye"):
		response = "Bye bye! Come back and talk to me soon!"
	default:
		response = "That's interesting! What else would you like to know about the " + name + "?"
	}

	return &ChatReply{
		BotResponse: response,
		Suggestions: []string{
			"What is your name?",
			"What color are you?",
			"What do you do?",
		},
		Fallback: true,
	}
}

// indefiniteArticle returns "a" or "an" for the given noun.
func indefiniteArticle(noun string) string {
	noun = strings.TrimSpace(noun)
	if noun == "" {
		return "a"
	}
	switch noun[0] {
	case 'a', 'e', 'i', 'o', 'u', 'A', 'E', 'I', 'O', 'U':
		return "an"
	}
	return "a"
}
