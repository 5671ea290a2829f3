package types

// PubSubType defines the type of pubsub implementation
type PubSubType string

const (
	// MemoryPubSub uses the in-process watermill gochannel
	MemoryPubSub PubSubType = "memory"
)
