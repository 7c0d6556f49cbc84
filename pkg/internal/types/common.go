package types

// ComponentMetadata identifies a pipeline component in logs and sensor callbacks.
type ComponentMetadata struct {
	ID   string // Unique identifier for the component.
	Type string // Component class, e.g. "DATASET_BUILDER" or "DISPATCHER".
	Name string // Human-readable name for the component.
}

// Option defines a configuration option function applicable to any component T.
type Option[T any] func(T)
