// Package storage persists the crawled collection as one durable snapshot.
//
// Three backends implement Store:
//   - JSONStore: a 4-space indented JSON array written through a temporary
//     file and an atomic rename (the default, imdb.json)
//   - SQLiteStore: one row per record, rewritten in a single transaction
//   - PostgresStore: the same layout in Postgres, inserts sent as pgx batches
//
// Every backend rewrites the whole collection on Save and treats missing or
// corrupt prior state as an empty collection on Load.
//
// Usage:
//
//	store, err := storage.Open(ctx, cfg.Storage, log)
//	if err != nil {
//		return err
//	}
//	defer store.Close()
//
//	collection := store.Load(ctx)
//	known := storage.IdentityKeys(collection)
package storage
