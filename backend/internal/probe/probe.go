package probe

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"threadgraph/backend/pkg/logger"
)

// Availability is the tri-state result of a capability probe. Optional
// collaborators that are not configured probe as Unknown rather than
// Unavailable, so status reporting never has to guess.
type Availability string

const (
	Available   Availability = "available"
	Unavailable Availability = "unavailable"
	Unknown     Availability = "unknown"
)

// GraphStore is the store surface the graph probe needs
type GraphStore interface {
	Verify(ctx context.Context) error
	CountContent(ctx context.Context) (int64, error)
}

// SystemStatus reports the reachability of the system's collaborators
type SystemStatus struct {
	Graph        Availability `json:"graph"`
	ContentCount int64        `json:"content_count"`
	Redis        Availability `json:"redis"`
	Ollama       Availability `json:"ollama"`
}

// Prober checks the graph store and the optional Redis and Ollama
// collaborators
type Prober struct {
	store     GraphStore
	redisURL  string
	ollamaURL string
	timeout   time.Duration
	logger    *zap.Logger
}

// NewProber creates a prober. Empty URLs mark the matching collaborator as
// unconfigured; its probe reports Unknown.
func NewProber(store GraphStore, redisURL, ollamaURL string) *Prober {
	return &Prober{
		store:     store,
		redisURL:  redisURL,
		ollamaURL: ollamaURL,
		timeout:   5 * time.Second,
		logger:    logger.Get(),
	}
}

// Status runs every probe and assembles the combined report. Probes never
// fail the call; unreachable collaborators surface as Unavailable.
func (p *Prober) Status(ctx context.Context) *SystemStatus {
	status := &SystemStatus{}
	status.Graph, status.ContentCount = p.Graph(ctx)
	status.Redis = p.Redis(ctx)
	status.Ollama = p.Ollama(ctx)
	return status
}

// Graph probes the graph store and, when reachable, reports the content
// node count
func (p *Prober) Graph(ctx context.Context) (Availability, int64) {
	if p.store == nil {
		return Unknown, 0
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if err := p.store.Verify(ctx); err != nil {
		p.logger.Debug("Graph probe failed", zap.Error(err))
		return Unavailable, 0
	}
	count, err := p.store.CountContent(ctx)
	if err != nil {
		p.logger.Debug("Graph probe count failed", zap.Error(err))
		return Available, 0
	}
	return Available, count
}

// Redis probes the configured Redis instance with a single PING
func (p *Prober) Redis(ctx context.Context) Availability {
	if p.redisURL == "" {
		return Unknown
	}

	opts, err := redis.ParseURL(p.redisURL)
	if err != nil {
		p.logger.Debug("Redis probe failed", zap.Error(err))
		return Unavailable
	}
	opts.DialTimeout = p.timeout

	client := redis.NewClient(opts)
	defer client.Close()

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		p.logger.Debug("Redis probe failed", zap.Error(err))
		return Unavailable
	}
	return Available
}

// Ollama probes the configured Ollama instance through its OpenAI-compatible
// model listing
func (p *Prober) Ollama(ctx context.Context) Availability {
	if p.ollamaURL == "" {
		return Unknown
	}

	config := openai.DefaultConfig("ollama")
	config.BaseURL = p.ollamaURL + "/v1"
	client := openai.NewClientWithConfig(config)

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if _, err := client.ListModels(ctx); err != nil {
		p.logger.Debug("Ollama probe failed", zap.Error(err))
		return Unavailable
	}
	return Available
}
