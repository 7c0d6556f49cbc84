package types

import "context"

// ProgressPublisher ships per-file progress events to an external system.
type ProgressPublisher interface {
	GetComponentMetadata() ComponentMetadata
	Publish(ctx context.Context, ev ProgressEvent) error
	Close() error
}

// OutputUploader copies persisted outputs to object storage.
type OutputUploader interface {
	GetComponentMetadata() ComponentMetadata
	// Upload sends the files in paths and returns the object keys written, in order.
	Upload(ctx context.Context, paths ...string) ([]string, error)
}
