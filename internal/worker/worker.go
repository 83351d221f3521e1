package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/aescanero/dago-node-prompt/internal/assemble"
	"github.com/aescanero/dago-node-prompt/internal/block"
	"github.com/aescanero/dago-node-prompt/internal/config"
	"github.com/aescanero/dago-node-prompt/internal/prompt"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// BlockLoader loads stored block definitions
type BlockLoader interface {
	LoadMany(ctx context.Context, ids []prompt.BlockID) ([]block.Block, error)
}

// Worker represents the prompt render worker
type Worker struct {
	id            string
	config        *config.Config
	redisClient   *redis.Client
	assembler     *assemble.Assembler
	blocks        BlockLoader
	tokenizer     prompt.Tokenizer
	logger        *zap.Logger
	ctx           context.Context
	cancel        context.CancelFunc
	wg            sync.WaitGroup
	streamKey     string
	consumerGroup string
	resultStream  string
}

// NewWorker creates a new worker. tokenizer may be nil, in which case
// token_size fails for every request.
func NewWorker(
	cfg *config.Config,
	redisClient *redis.Client,
	assembler *assemble.Assembler,
	blocks BlockLoader,
	tokenizer prompt.Tokenizer,
	logger *zap.Logger,
) *Worker {
	ctx, cancel := context.WithCancel(context.Background())

	return &Worker{
		id:            cfg.WorkerID,
		config:        cfg,
		redisClient:   redisClient,
		assembler:     assembler,
		blocks:        blocks,
		tokenizer:     tokenizer,
		logger:        logger,
		ctx:           ctx,
		cancel:        cancel,
		streamKey:     cfg.StreamKey,
		consumerGroup: cfg.ConsumerGroup,
		resultStream:  cfg.ResultStream,
	}
}

// Start starts the worker
func (w *Worker) Start() error {
	w.logger.Info("starting prompt worker",
		zap.String("worker_id", w.id),
		zap.String("stream_key", w.streamKey),
		zap.String("consumer_group", w.consumerGroup),
	)

	// Create consumer group if it doesn't exist
	if err := w.ensureConsumerGroup(); err != nil {
		return fmt.Errorf("failed to ensure consumer group: %w", err)
	}

	// Start processing work
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.processWork()
	}()

	w.logger.Info("prompt worker started", zap.String("worker_id", w.id))
	return nil
}

// Stop stops the worker and waits for the in-flight request
func (w *Worker) Stop() error {
	w.logger.Info("stopping prompt worker", zap.String("worker_id", w.id))

	// Cancel context to stop work processing
	w.cancel()
	w.wg.Wait()

	w.logger.Info("prompt worker stopped", zap.String("worker_id", w.id))
	return nil
}

// ensureConsumerGroup creates the consumer group if it doesn't exist
func (w *Worker) ensureConsumerGroup() error {
	err := w.redisClient.XGroupCreateMkStream(w.ctx, w.streamKey, w.consumerGroup, "0").Err()
	if err != nil {
		// BUSYGROUP means the group already exists
		if strings.HasPrefix(err.Error(), "BUSYGROUP") {
			w.logger.Debug("consumer group already exists",
				zap.String("group", w.consumerGroup),
			)
			return nil
		}
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	w.logger.Info("created consumer group",
		zap.String("group", w.consumerGroup),
		zap.String("stream", w.streamKey),
	)
	return nil
}

// processWork processes work from the Redis stream
func (w *Worker) processWork() {
	w.logger.Info("starting work processing loop")

	for {
		select {
		case <-w.ctx.Done():
			w.logger.Info("work processing loop stopped")
			return
		default:
			// Read from stream
			streams, err := w.redisClient.XReadGroup(w.ctx, &redis.XReadGroupArgs{
				Group:    w.consumerGroup,
				Consumer: w.id,
				Streams:  []string{w.streamKey, ">"},
				Count:    1,
				Block:    w.config.BlockTime,
			}).Result()

			if err != nil {
				if err == redis.Nil || w.ctx.Err() != nil {
					continue
				}
				w.logger.Error("failed to read from stream",
					zap.Error(err),
				)
				time.Sleep(time.Second)
				continue
			}

			// Process each message
			for _, stream := range streams {
				for _, message := range stream.Messages {
					w.handleMessage(message)
				}
			}
		}
	}
}

// handleMessage handles a single render request message
func (w *Worker) handleMessage(message redis.XMessage) {
	messageID := message.ID
	w.logger.Info("processing render request",
		zap.String("message_id", messageID),
	)

	// Parse the render request
	request, err := parseRenderRequest(message.Values)
	if err != nil {
		w.logger.Error("failed to parse render request",
			zap.String("message_id", messageID),
			zap.Error(err),
		)
		w.acknowledgeMessage(messageID)
		return
	}

	// Render and publish
	result, err := w.Process(w.ctx, request)
	if err == nil {
		err = w.publishResult(request, result)
	}
	if err != nil {
		w.logger.Error("failed to process render request",
			zap.String("message_id", messageID),
			zap.String("request_id", request.RequestID),
			zap.Error(err),
		)
		// Publish error event
		w.publishError(request, err)
	}

	// Acknowledge the message
	w.acknowledgeMessage(messageID)
}

// RenderRequest asks for an ordered list of blocks to be rendered. Stored
// blocks named by BlockIDs come first, followed by inline Blocks.
// Both are decoded in Process so that a bad definition is reported on the
// error stream under the request id.
type RenderRequest struct {
	RequestID string             `json:"request_id"`
	Mode      string             `json:"mode"`
	BlockIDs  []string           `json:"block_ids,omitempty"`
	Blocks    json.RawMessage    `json:"blocks,omitempty"`
	Context   prompt.ContextSpec `json:"context"`
}

// parseRenderRequest parses a render request from a Redis message
func parseRenderRequest(values map[string]interface{}) (*RenderRequest, error) {
	dataStr, ok := values["data"].(string)
	if !ok {
		return nil, fmt.Errorf("missing or invalid 'data' field")
	}

	var request RenderRequest
	if err := json.Unmarshal([]byte(dataStr), &request); err != nil {
		return nil, fmt.Errorf("failed to unmarshal render request: %w", err)
	}

	return &request, nil
}

// Process renders one request
func (w *Worker) Process(ctx context.Context, request *RenderRequest) (*assemble.Result, error) {
	mode, err := assemble.ParseMode(request.Mode)
	if err != nil {
		return nil, err
	}

	var blocks []block.Block
	if len(request.BlockIDs) > 0 {
		if w.blocks == nil {
			return nil, fmt.Errorf("request names stored blocks but no block store is configured")
		}
		ids := make([]prompt.BlockID, 0, len(request.BlockIDs))
		for _, raw := range request.BlockIDs {
			id, err := prompt.ParseBlockID(raw)
			if err != nil {
				return nil, err
			}
			ids = append(ids, id)
		}
		stored, err := w.blocks.LoadMany(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("failed to load blocks: %w", err)
		}
		blocks = append(blocks, stored...)
	}
	if len(request.Blocks) > 0 {
		inline, err := block.DecodeList(request.Blocks)
		if err != nil {
			return nil, fmt.Errorf("invalid inline blocks: %w", err)
		}
		blocks = append(blocks, inline...)
	}

	if len(blocks) == 0 {
		return nil, fmt.Errorf("request has no blocks")
	}

	renderCtx, err := request.Context.Build(w.tokenizer)
	if err != nil {
		return nil, fmt.Errorf("invalid context: %w", err)
	}

	return w.assembler.Assemble(mode, blocks, renderCtx)
}

// publishResult publishes the rendered output
func (w *Worker) publishResult(request *RenderRequest, result *assemble.Result) error {
	event := map[string]interface{}{
		"request_id": request.RequestID,
		"mode":       result.Mode,
		"timestamp":  time.Now().UTC(),
	}
	if result.Mode == assemble.ModePrompt {
		event["prompt"] = result.Prompt
	} else {
		event["messages"] = result.Messages
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	// Publish to result stream
	_, err = w.redisClient.XAdd(w.ctx, &redis.XAddArgs{
		Stream: w.resultStream,
		Values: map[string]interface{}{
			"data": string(data),
		},
	}).Result()

	if err != nil {
		return fmt.Errorf("failed to publish to stream: %w", err)
	}

	w.logger.Info("published render result",
		zap.String("request_id", request.RequestID),
		zap.String("mode", string(result.Mode)),
	)

	return nil
}

// publishError publishes an error event
func (w *Worker) publishError(request *RenderRequest, err error) {
	errorEvent := map[string]interface{}{
		"request_id": request.RequestID,
		"error":      err.Error(),
		"timestamp":  time.Now().UTC(),
	}

	data, marshalErr := json.Marshal(errorEvent)
	if marshalErr != nil {
		w.logger.Error("failed to marshal error event", zap.Error(marshalErr))
		return
	}

	// Publish error to a separate stream
	_, publishErr := w.redisClient.XAdd(w.ctx, &redis.XAddArgs{
		Stream: w.resultStream + ".errors",
		Values: map[string]interface{}{
			"data": string(data),
		},
	}).Result()

	if publishErr != nil {
		w.logger.Error("failed to publish error event", zap.Error(publishErr))
	}
}

// acknowledgeMessage acknowledges a message from the stream
func (w *Worker) acknowledgeMessage(messageID string) {
	err := w.redisClient.XAck(w.ctx, w.streamKey, w.consumerGroup, messageID).Err()
	if err != nil {
		w.logger.Error("failed to acknowledge message",
			zap.String("message_id", messageID),
			zap.Error(err),
		)
	}
}
