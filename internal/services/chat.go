package services

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/http"
	"strings"

	"synthara-assistant-go/internal/llm"
	"synthara-assistant-go/internal/services/replies"

	"go.uber.org/zap"
)

const (
	chatEmptyInputText    = "Please enter a message to continue. 😊"
	chatFallbackModeText  = "I'm currently operating in fallback mode without AI capabilities. I can answer basic questions about mental health and SyntharaAI. Try asking about resources, tools, or therapy. 🤖"
	chatEmptyResponseText = "I received an empty response. Please try again. 🤔"
	chatTimeoutText       = "The request timed out. Please try again later. ⏱️"
	chatBlockedText       = "I can't respond to that type of request. Let's talk about mental health tech instead. 🙂"
	chatStoppedText       = "I had to stop generating a response. Could you rephrase your question? 🤔"
	chatDegradedText      = "I encountered an issue with the AI service. I can answer questions about mental health, resources, or SyntharaAI. 🔄"
	chatDegradedHintText  = "I encountered an issue with the AI service, but I can tell you that %s 🔄"
)

var (
	identityKeywords = []string{"who is niladri", "about niladri", "niladri das", "creator", "developer", "github profile"}
	greetingKeywords = []string{"hello", "hi", "hey", "greetings"}
)

const chatSystemContext = `You are an assistant for SyntharaAI, supporting mental health professionals.
Provide brief, clear answers (2-3 sentences) focused on mental health tech or resources.
Use bullet points for lists and include an emoji where appropriate. 😊

SyntharaAI has a comprehensive supply chain that connects data sources, AI processing, and delivery of insights:
- Data flows from secure collection points through ethical AI processing to actionable insights
- Security includes end-to-end encryption, anonymization, and strict access controls
- The system complies with healthcare regulations including HIPAA and GDPR

SyntharaAI's Fair Policy ensures equitable access to mental health resources:
- Equal treatment regardless of background, with tools designed for diverse populations
- Transparent pricing with sliding scale options for all income levels
- Regular audits to identify and eliminate bias in AI systems

SyntharaAI is committed to honesty and transparency:
- Clear communication about capabilities and limitations of our technology
- Evidence-based claims about effectiveness in supporting mental health
- Complete transparency about data usage and business practices

SyntharaAI's copyright and legal framework protects both the company and users:
- All content is protected under copyright law with specific licensing terms
- Terms of Service outline user rights, responsibilities, and liability limitations
- Privacy Policy details data collection, usage, storage, and protection practices
- Disclaimer clarifies that our tools support but don't replace professional medical advice

SyntharaAI uses specific terminology including:
- Clarity Metrics: Measures of how well mental health information is understood
- Connection Pathways: Secure communication channels between professionals and clients
- Insight Nodes: Points where patterns are identified and translated into actionable information
- Ethical AI Framework: System ensuring fair, transparent AI with respect for privacy

User query: `

// ChatModel is the model backend used for open questions
type ChatModel interface {
	Available() bool
	Chat(ctx context.Context, prompt string) (string, error)
}

// ProfileSource supplies the creator profile text
type ProfileSource interface {
	ProfileSummary(ctx context.Context) string
}

// ChatReply is the text returned to the user with its HTTP status
type ChatReply struct {
	Text   string
	Status int
}

// ChatService routes a chat message through the canned answers before
// falling back to the model.
type ChatService struct {
	model   ChatModel
	profile ProfileSource
	replies *replies.Table
	log     *zap.Logger
}

// NewChatService creates a new chat service
func NewChatService(model ChatModel, profile ProfileSource, table *replies.Table, log *zap.Logger) *ChatService {
	return &ChatService{
		model:   model,
		profile: profile,
		replies: table,
		log:     log,
	}
}

// Respond answers one message. No state is kept between calls.
func (s *ChatService) Respond(ctx context.Context, message string) ChatReply {
	input := html.EscapeString(strings.ToLower(message))
	if strings.TrimSpace(input) == "" {
		return ChatReply{Text: chatEmptyInputText, Status: http.StatusBadRequest}
	}

	if containsAny(input, identityKeywords...) {
		return ChatReply{Text: s.profile.ProfileSummary(ctx), Status: http.StatusOK}
	}

	if containsAny(input, greetingKeywords...) {
		return ChatReply{Text: s.replies.Greeting(), Status: http.StatusOK}
	}

	if reply, ok := s.replies.Match(input); ok {
		return ChatReply{Text: reply, Status: http.StatusOK}
	}

	if !s.model.Available() {
		s.log.Warn("No valid API key found, using fallback response")
		return ChatReply{Text: chatFallbackModeText, Status: http.StatusOK}
	}

	text, err := s.model.Chat(ctx, chatSystemContext+input)
	if err != nil {
		s.log.Error("Model error during chat", zap.Error(err))
		return s.degraded(input, err)
	}

	if strings.TrimSpace(text) == "" {
		s.log.Error("Empty model response for chat")
		return ChatReply{Text: chatEmptyResponseText, Status: http.StatusInternalServerError}
	}

	return ChatReply{Text: text, Status: http.StatusOK}
}

// degraded maps a model failure to the reply shown instead
func (s *ChatService) degraded(input string, err error) ChatReply {
	if llm.IsTimeout(err) {
		return ChatReply{Text: chatTimeoutText, Status: http.StatusServiceUnavailable}
	}

	var llmErr *llm.Error
	if errors.As(err, &llmErr) {
		switch llmErr.Type {
		case llm.ErrorTypeEmpty:
			return ChatReply{Text: chatEmptyResponseText, Status: http.StatusInternalServerError}
		case llm.ErrorTypeBlocked:
			return ChatReply{Text: chatBlockedText, Status: http.StatusBadRequest}
		case llm.ErrorTypeStopped:
			return ChatReply{Text: chatStoppedText, Status: http.StatusBadRequest}
		}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "blocked"):
		return ChatReply{Text: chatBlockedText, Status: http.StatusBadRequest}
	case strings.Contains(msg, "stop"):
		return ChatReply{Text: chatStoppedText, Status: http.StatusBadRequest}
	}

	// Best effort: a single word of the message may name a canned topic
	for _, token := range strings.Fields(input) {
		if reply, ok := s.replies.Lookup(token); ok {
			return ChatReply{Text: fmt.Sprintf(chatDegradedHintText, reply), Status: http.StatusOK}
		}
	}

	return ChatReply{Text: chatDegradedText, Status: http.StatusOK}
}
