package port

// Persistence is durable client storage, partitioned by store name.
// Each store reads and writes only its own key.
type Persistence interface {
	// Load returns the value saved under key. ok is false when nothing was saved.
	Load(key string) (value []byte, ok bool, err error)

	// Save replaces the value under key.
	Save(key string, value []byte) error

	Close() error
}
