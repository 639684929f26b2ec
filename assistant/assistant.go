package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Errors returned by Ask
var (
	ErrEmptyQuestion = errors.New("question required")
	ErrNotConfigured = errors.New("AI assistant is not configured")
	ErrNoAnswer      = errors.New("AI assistant returned no answer")
)

// MaxHistory is how many prior turns are sent with a question
const MaxHistory = 40

// Part is one piece of a chat turn
type Part struct {
	Text string `json:"text"`
}

// Turn is a previous message in the conversation, role is "user" or "model"
type Turn struct {
	Role  string `json:"role"`
	Parts []Part `json:"parts"`
}

// Asker answers legal questions in the context of a conversation
type Asker interface {
	Ask(ctx context.Context, question string, history []Turn) (string, error)
}

const systemInstruction = `You are an expert Indian legal assistant.

Answer strictly under Indian law (IPC, CrPC, CPC, the Constitution of India, the Evidence Act, the IT Act, labour laws and so on). When an issue depends on state law, say that it may vary by state.

Structure every answer as:
A. Short direct answer in two to four sentences.
B. Relevant law: the Act and the section numbers.
C. Explanation in simple terms.
D. Practical guidance: what the user can do next, where to go (police, court, consumer forum, labour court) and the procedural steps.

Never invent section numbers. If unsure, say "The exact section may vary; this appears to fall under..." and do not guess confidently.
Speak professionally and naturally. Ask clarifying questions when facts are unclear and be empathetic when the matter involves harm or a dispute.
Never suggest illegal actions or help anyone evade law enforcement.
Take the previous conversation into account.

Always end with: "**Disclaimer:** I am an AI legal guide, not a substitute for a qualified advocate. Please consult a lawyer for official legal proceedings."`

// Gemini answers questions with a Google Gemini model
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini connects to the Gemini API, an empty key yields an assistant
// that reports ErrNotConfigured.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return &Gemini{model: model}, nil
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

// Ask implements Asker
func (g *Gemini) Ask(ctx context.Context, question string, history []Turn) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", ErrEmptyQuestion
	}
	if g.client == nil {
		return "", ErrNotConfigured
	}

	model := g.client.GenerativeModel(g.model)
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(systemInstruction)}}
	chat := model.StartChat()
	chat.History = toHistory(history)

	resp, err := chat.SendMessage(ctx, genai.Text(question))
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	answer := answerText(resp)
	if answer == "" {
		return "", ErrNoAnswer
	}
	return answer, nil
}

// Close releases the API connection
func (g *Gemini) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}

func toHistory(turns []Turn) []*genai.Content {
	if len(turns) > MaxHistory {
		turns = turns[len(turns)-MaxHistory:]
	}
	history := make([]*genai.Content, 0, len(turns))
	for _, t := range turns {
		role := "user"
		if t.Role == "model" {
			role = "model"
		}
		var parts []genai.Part
		for _, p := range t.Parts {
			if p.Text != "" {
				parts = append(parts, genai.Text(p.Text))
			}
		}
		if len(parts) == 0 {
			continue
		}
		history = append(history, &genai.Content{Role: role, Parts: parts})
	}
	return history
}

func answerText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var b strings.Builder
	for _, c := range resp.Candidates {
		if c == nil || c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				b.WriteString(string(t))
			}
		}
		// only the first candidate is shown
		break
	}
	return b.String()
}
