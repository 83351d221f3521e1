package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// HealthServer provides HTTP health check endpoints
type HealthServer struct {
	port          int
	redisClient   *redis.Client
	streamKey     string
	consumerGroup string
	tokenizer     bool
	logger        *zap.Logger
	server        *http.Server
}

// NewHealthServer creates a new health server. Readiness requires the
// consumer group on streamKey to exist.
func NewHealthServer(port int, redisClient *redis.Client, streamKey, consumerGroup string, tokenizer bool, logger *zap.Logger) *HealthServer {
	return &HealthServer{
		port:          port,
		redisClient:   redisClient,
		streamKey:     streamKey,
		consumerGroup: consumerGroup,
		tokenizer:     tokenizer,
		logger:        logger,
	}
}

// Handler returns the HTTP handler serving /health and /ready
func (hs *HealthServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", hs.handleHealth)
	mux.HandleFunc("/ready", hs.handleReady)
	return mux
}

// Start starts the health check server
func (hs *HealthServer) Start() error {
	hs.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", hs.port),
		Handler:           hs.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	hs.logger.Info("starting health server", zap.Int("port", hs.port))

	go func() {
		if err := hs.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			hs.logger.Error("health server error", zap.Error(err))
		}
	}()

	return nil
}

// Stop stops the health check server
func (hs *HealthServer) Stop() error {
	if hs.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	hs.logger.Info("stopping health server")
	return hs.server.Shutdown(ctx)
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// healthCheck runs one named check; a non-nil error marks it failed
type healthCheck struct {
	name string
	run  func(ctx context.Context) (string, error)
}

func (hs *HealthServer) pingRedis(ctx context.Context) (string, error) {
	if err := hs.redisClient.Ping(ctx).Err(); err != nil {
		return "", err
	}
	return "healthy", nil
}

func (hs *HealthServer) tokenizerState(context.Context) (string, error) {
	if hs.tokenizer {
		return "enabled", nil
	}
	return "disabled", nil
}

func (hs *HealthServer) consumerGroupState(ctx context.Context) (string, error) {
	groups, err := hs.redisClient.XInfoGroups(ctx, hs.streamKey).Result()
	if err != nil {
		return "", err
	}
	if !hasGroup(groups, hs.consumerGroup) {
		return "", fmt.Errorf("consumer group %s not found on %s", hs.consumerGroup, hs.streamKey)
	}
	return "present", nil
}

// runChecks stops at the first failing check
func (hs *HealthServer) runChecks(r *http.Request, list ...healthCheck) (map[string]string, bool) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	checks := make(map[string]string, len(list))
	for _, p := range list {
		state, err := p.run(ctx)
		if err != nil {
			checks[p.name] = fmt.Sprintf("unhealthy: %v", err)
			hs.logger.Debug("health check failed", zap.String("check", p.name), zap.Error(err))
			return checks, false
		}
		checks[p.name] = state
	}
	return checks, true
}

// handleHealth reports liveness: Redis reachable, tokenizer state
func (hs *HealthServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	checks, ok := hs.runChecks(r,
		healthCheck{name: "redis", run: hs.pingRedis},
		healthCheck{name: "tokenizer", run: hs.tokenizerState},
	)
	if !ok {
		hs.respondJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "unhealthy", Checks: checks})
		return
	}
	hs.respondJSON(w, http.StatusOK, HealthResponse{Status: "healthy", Checks: checks})
}

// handleReady reports readiness: Redis reachable and the consumer group created
func (hs *HealthServer) handleReady(w http.ResponseWriter, r *http.Request) {
	checks, ok := hs.runChecks(r,
		healthCheck{name: "redis", run: hs.pingRedis},
		healthCheck{name: "consumer_group", run: hs.consumerGroupState},
	)
	if !ok {
		hs.respondJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "not ready", Checks: checks})
		return
	}
	hs.respondJSON(w, http.StatusOK, HealthResponse{Status: "ready", Checks: checks})
}

// respondJSON writes a JSON response
func (hs *HealthServer) respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		hs.logger.Error("failed to encode response", zap.Error(err))
	}
}

func hasGroup(groups []redis.XInfoGroup, name string) bool {
	for _, g := range groups {
		if g.Name == name {
			return true
		}
	}
	return false
}
