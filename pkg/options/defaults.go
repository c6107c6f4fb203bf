package options

const (
	// Specifies the default working directory where fxkv stores its files.
	// If no other directory is specified during initialization, the current
	// directory is used.
	DefaultDataDir = "."

	// Represents the default number of values each tree caches in memory.
	DefaultCacheCapacity = 1024

	// Represents the minimum allowed cache capacity.
	MinCacheCapacity = 1

	// Defines the default bound on the sequencer's action channel.
	DefaultSequencerBacklog = 128

	// Represents the minimum allowed sequencer backlog.
	MinSequencerBacklog = 1

	// Defines the default number of worker-pool threads.
	DefaultPoolSize = 4

	// Represents the minimum allowed worker-pool size.
	MinPoolSize = 1
)

// Holds the default configuration settings for an fxkv instance.
var defaultOptions = Options{
	DataDir:          DefaultDataDir,
	CacheCapacity:    DefaultCacheCapacity,
	SequencerBacklog: DefaultSequencerBacklog,
	PoolSize:         DefaultPoolSize,
}

func NewDefaultOptions() Options {
	return defaultOptions
}
