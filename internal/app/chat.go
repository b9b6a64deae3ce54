package app

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Chat senders.
const (
	SenderBot  = "bot"
	SenderUser = "user"
)

const autoReply = "Gracias por tu mensaje. Este es un chat de demostración. Para pedidos reales, visita nuestro menú principal."

// ChatMessage is one bubble in the demo chat.
type ChatMessage struct {
	ID     string `json:"id"`
	Text   string `json:"text"`
	Sender string `json:"sender"`
	Time   string `json:"time"`
}

// Chat is a local demo chat room. Every user message gets the same automatic reply;
// nothing leaves the process.
type Chat struct {
	mu       sync.Mutex
	messages []ChatMessage
	now      func() time.Time
}

// NewChat returns a room seeded with the welcome messages.
func NewChat() *Chat {
	return &Chat{
		messages: []ChatMessage{
			{ID: uuid.NewString(), Text: "¡Hola! Bienvenido a FastFood.exe 🍔", Sender: SenderBot, Time: "10:30"},
			{ID: uuid.NewString(), Text: "¿En qué puedo ayudarte hoy?", Sender: SenderBot, Time: "10:30"},
		},
		now: time.Now,
	}
}

// Messages returns the conversation so far.
func (c *Chat) Messages() []ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]ChatMessage, len(c.messages))
	copy(out, c.messages)
	return out
}

// Send posts text as the user and returns the new messages: the user's and the reply.
// Blank text is ignored and returns nil.
func (c *Chat) Send(text string) []ChatMessage {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	stamp := c.now().Format("15:04")
	added := []ChatMessage{
		{ID: uuid.NewString(), Text: text, Sender: SenderUser, Time: stamp},
		{ID: uuid.NewString(), Text: autoReply, Sender: SenderBot, Time: stamp},
	}
	c.messages = append(c.messages, added...)
	return added
}
