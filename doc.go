// Package mongolog provides logging handlers that persist application log
// records as structured documents in MongoDB, either one insert per record
// or batched through a buffered, asynchronously flushed write path.
//
// Key Features:
//
//   - Unbuffered handler: one document insert per emitted record
//   - Buffered handler: lock-guarded document buffer flushed by size,
//     by severity, by a periodic timer, and on shutdown
//   - Bulk writes with per-document fallback when the bulk insert fails
//   - Best-effort delivery: write failures never propagate to the caller
//   - Fail-silently mode for hosts that must never see logging errors
//   - Error side channel for diagnosing dropped documents
//   - Pluggable stores: MongoDB collections or NATS subjects
//   - log/slog adapter
//
// Basic Usage:
//
//	store, err := backends.NewMongoStore(ctx, backends.MongoConfig{
//		Host:       "localhost",
//		Port:       27017,
//		Database:   "logs",
//		Collection: "logs",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	handler, err := mongolog.NewBuffered(store,
//		mongolog.WithBufferSize(100),
//		mongolog.WithFlushInterval(5*time.Second),
//		mongolog.WithEarlyFlushLevel(mongolog.LevelCritical),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer handler.Destroy()
//
//	handler.Emit(mongolog.NewRecord(mongolog.LevelInfo, "app", "started"))
//
// With log/slog:
//
//	logger := slog.New(mongolog.NewSlogHandler(handler, mongolog.LevelInfo))
//	logger.Info("request served", "status", 200)
//
// Delivery is at-most-once: documents a flush fails to write are dropped,
// not retried, and surfaced only through the configured ErrorHandler.
package mongolog
