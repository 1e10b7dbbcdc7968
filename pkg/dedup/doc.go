// Package dedup provides content-addressed persistence for retrieved batches.
//
// Every batch key (the comma-joined accession list sent to the sequence
// archive) maps to a deterministic content digest. A store keeps one payload
// per digest, write-once, and the presence of a payload is the signal that
// the batch is already satisfied and needs no fetch. This makes interrupted
// sessions resumable: re-running over the same store re-skips everything
// already persisted and only re-attempts missing batches.
//
// Two backends are provided:
//
// - FileStore writes `<digest>.fasta` files into a download directory. This
// is the default for single-host sessions and doubles as the final output
// layout.
// - RedisStore keeps payloads in Redis under a shared namespace, for
// deployments where several hosts divide one accession set between them.
//
// # Basic Usage
//
//	// Create file-backed store (creates the directory if absent)
//	store, err := dedup.NewFileStore("downloads/nucleotide")
//	if err != nil {
//		return err
//	}
//
//	// Skip batches already persisted
//	ok, err := store.Has(ctx, key)
//	if err != nil {
//		return err
//	}
//	if ok {
//		continue
//	}
//
//	// Persist a freshly fetched payload
//	if err := store.Put(ctx, key, payload); err != nil {
//		return err
//	}
//
// # Redis Backend
//
//	redisClient := redis.NewClient(&redis.Options{
//		Addr: "localhost:6379",
//	})
//	store := dedup.NewRedisStore(redisClient)
//
// # Metrics
//
// The stores export Prometheus metrics:
//
//   - gogetem_dedup_hits_total{backend} - Store hits by backend
//   - gogetem_dedup_misses_total{backend} - Store misses by backend
//   - gogetem_dedup_writes_total{backend} - Payloads persisted by backend
//   - gogetem_dedup_errors_total{operation} - Store operation errors
package dedup
