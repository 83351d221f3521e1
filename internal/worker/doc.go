// Package worker implements the prompt worker lifecycle and Redis Streams integration.
//
// The worker consumes render requests from a Redis stream, renders the
// requested blocks against the request context, and publishes the rendered
// messages or prompt to the result stream.
//
// A render request is a JSON document in the "data" field of a stream entry:
//
//	{
//	  "request_id": "r-1",
//	  "mode": "messages",
//	  "block_ids": ["4f7c..."],
//	  "blocks": [{"type": "plain", "name": "intro", "role": "system", "template": "{{char}}"}],
//	  "context": {"variables": {"char": "John"}, "now": "2024-09-12T21:14:15Z", "seed": 7}
//	}
//
// Example usage:
//
//	cfg, _ := config.Load()
//	redisClient := redis.NewClient(&redis.Options{...})
//	blocks := store.NewRedisBlockStore(redisClient, cfg.BlockKeyPrefix, cfg.BlockTTL, logger)
//	assembler := assemble.NewAssembler(block.NewRenderer(nil, logger), logger)
//
//	worker := worker.NewWorker(cfg, redisClient, assembler, blocks, tokenizer, logger)
//	if err := worker.Start(); err != nil {
//	    log.Fatal(err)
//	}
//	defer worker.Stop()
//
// The worker handles:
//   - Redis Streams subscription and consumer group management
//   - Loading stored blocks and decoding inline blocks
//   - Rendering and result publishing
//   - Error reporting on <result stream>.errors
//   - Graceful shutdown
//
// Health checks are provided via a separate HTTP server:
//
//	healthServer := worker.NewHealthServer(8083, redisClient, cfg.StreamKey, cfg.ConsumerGroup, true, logger)
//	healthServer.Start()
//	defer healthServer.Stop()
package worker
