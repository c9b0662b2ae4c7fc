// Package snapshot captures committed trees for inspection and replay.
//
// A Snapshot records the host tree rendered into a host.MemoryHost
// container and, optionally, the engine's fiber tree. Snapshots are kept
// in a Store: DiskStore writes JSON files, S3Store writes objects to a
// bucket through the AWS SDK.
//
//	snap := snapshot.Take("counter", container, engine)
//	id, err := store.Put(ctx, snap)
package snapshot
