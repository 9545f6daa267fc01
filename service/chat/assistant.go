// Package chat is the storefront's scripted assistant. Transcripts live in
// memory per profile and are never persisted.
package chat

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"cafe.GO/core/cache"
	"cafe.GO/model/catalog"
)

// Roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

const (
	RecommendationText = "Here are some items you might like based on your request:"
	NoMatchText        = "I couldn't find any products matching your request. Can I help you with something else?"
	TroubleText        = "I'm having trouble finding products right now. Please try again later."
)

// Replies are used when the message mentions no product.
var Replies = []string{
	"I'd be happy to help you with our menu options!",
	"Our coffee is sourced from ethically managed farms.",
	"Would you like to know about our seasonal specials?",
	"I can help you place an order or answer any questions about our items.",
	"Our most popular item is the Vanilla Latte with our homemade syrup.",
}

// Keywords trigger product recommendations.
var Keywords = []string{"coffee", "latte", "espresso", "cake", "pastry", "food", "drink", "menu"}

const recommendLimit = 3

type Message struct {
	ID        string            `json:"id"`
	Role      string            `json:"role"`
	Content   string            `json:"content"`
	Timestamp time.Time         `json:"timestamp"`
	Products  []catalog.Product `json:"products,omitempty"`
}

// Recommender supplies products for recommendations.
type Recommender interface {
	Recommend(ctx context.Context, limit int) ([]catalog.Product, error)
}

// Transcript is one profile's conversation.
type Transcript struct {
	mu       sync.Mutex
	messages []Message
}

func (t *Transcript) append(m Message) {
	t.mu.Lock()
	t.messages = append(t.messages, m)
	t.mu.Unlock()
}

// Messages returns a copy of the conversation.
func (t *Transcript) Messages() []Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Message, len(t.messages))
	copy(out, t.messages)
	return out
}

type Assistant struct {
	products Recommender
	cache    *cache.Cache
	ttl      time.Duration
	delay    func() time.Duration
	logger   *zap.Logger

	rmu sync.Mutex
	rnd *rand.Rand
	now func() time.Time
}

type Option func(*Assistant)

// WithRand makes reply selection deterministic.
func WithRand(r *rand.Rand) Option {
	return func(a *Assistant) { a.rnd = r }
}

// WithDelay sets a simulated thinking time before each reply.
func WithDelay(d func() time.Duration) Option {
	return func(a *Assistant) { a.delay = d }
}

func WithCache(c *cache.Cache, ttl time.Duration) Option {
	return func(a *Assistant) {
		a.cache = c
		a.ttl = ttl
	}
}

// RandomDelay waits between base and base+spread.
func RandomDelay(base, spread time.Duration) func() time.Duration {
	return func() time.Duration {
		if spread <= 0 {
			return base
		}
		return base + time.Duration(rand.Int63n(int64(spread)))
	}
}

func NewAssistant(products Recommender, logger *zap.Logger, opts ...Option) *Assistant {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &Assistant{
		products: products,
		cache:    cache.GetInstance(),
		ttl:      2 * time.Hour,
		logger:   logger,
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
		now:      time.Now,
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Transcript returns the live transcript for profile, creating it on first use.
func (a *Assistant) Transcript(profile string) *Transcript {
	v, _ := a.cache.GetOrSet("chat|"+profile, a.ttl, func() interface{} { return &Transcript{} })
	a.cache.Touch("chat|"+profile, a.ttl)
	return v.(*Transcript)
}

// Send records the user's message and the assistant's reply. It returns the
// reply. A cancelled ctx during the thinking delay leaves only the user
// message recorded.
func (a *Assistant) Send(ctx context.Context, profile, text string) (*Message, error) {
	t := a.Transcript(profile)
	t.append(a.message(RoleUser, text, nil))

	if a.delay != nil {
		if d := a.delay(); d > 0 {
			timer := time.NewTimer(d)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, ctx.Err()
			case <-timer.C:
			}
		}
	}

	reply := a.reply(ctx, text)
	t.append(reply)
	return &reply, nil
}

func (a *Assistant) reply(ctx context.Context, text string) Message {
	if !mentionsProduct(text) {
		a.rmu.Lock()
		r := Replies[a.rnd.Intn(len(Replies))]
		a.rmu.Unlock()
		return a.message(RoleAssistant, r, nil)
	}
	products, err := a.products.Recommend(ctx, recommendLimit)
	if err != nil {
		a.logger.Warn("chat recommendations failed", zap.Error(err))
		return a.message(RoleAssistant, TroubleText, nil)
	}
	if len(products) == 0 {
		return a.message(RoleAssistant, NoMatchText, nil)
	}
	return a.message(RoleAssistant, RecommendationText, products)
}

func mentionsProduct(text string) bool {
	lower := strings.ToLower(text)
	for _, k := range Keywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

func (a *Assistant) message(role, content string, products []catalog.Product) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: a.now().UTC(),
		Products:  products,
	}
}
