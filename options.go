package vxcore

// Default pool and batch sizes, taken from spec.md's reference values.
const (
	DefaultBrickPoolSize   = 32768
	DefaultLayer0PoolSize  = 8192
	DefaultVoxelQueueSize  = 1024
	DefaultDeallocQueueSize = 4096
)

// Options configures the engine's pool capacities and batch sizes. Use
// NewOptions for the spec-reference defaults, then apply Option funcs to
// override individual fields, mirroring the teacher repo's builder
// pattern (app_builder.go, engine_builder.go).
type Options struct {
	BrickPoolSize   uint32
	Layer0PoolSize  uint32
	VoxelQueueSize  int
	DeallocQueueSize int
	Logger          Logger
}

// Option mutates an Options value.
type Option func(*Options)

// NewOptions builds the spec-reference default configuration and applies
// any overrides.
func NewOptions(opts ...Option) Options {
	o := Options{
		BrickPoolSize:    DefaultBrickPoolSize,
		Layer0PoolSize:   DefaultLayer0PoolSize,
		VoxelQueueSize:   DefaultVoxelQueueSize,
		DeallocQueueSize: DefaultDeallocQueueSize,
		Logger:           NopLogger{},
	}
	for _, apply := range opts {
		apply(&o)
	}
	return o
}

// WithBrickPoolSize overrides the brick pool capacity.
func WithBrickPoolSize(n uint32) Option { return func(o *Options) { o.BrickPoolSize = n } }

// WithLayer0PoolSize overrides the LayerNode pool capacity.
func WithLayer0PoolSize(n uint32) Option { return func(o *Options) { o.Layer0PoolSize = n } }

// WithVoxelQueueSize overrides the per-chunk batch size used to drain the
// CPU voxel queue and to walk a model's voxel buffer during placement.
func WithVoxelQueueSize(n int) Option { return func(o *Options) { o.VoxelQueueSize = n } }

// WithDeallocQueueSize overrides how many brick-pool slots the dealloc pass
// inspects per process() call.
func WithDeallocQueueSize(n int) Option { return func(o *Options) { o.DeallocQueueSize = n } }

// WithLogger overrides the ambient logger.
func WithLogger(l Logger) Option { return func(o *Options) { o.Logger = l } }
