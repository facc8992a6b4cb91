package livequery

const (
	// DefaultPageSize is the page size used when none is specified.
	DefaultPageSize = 50

	// DefaultMaxPageSize is the maximum page size allowed by default.
	// This protects against resource exhaustion from unreasonably large
	// page requests.
	DefaultMaxPageSize = 1000
)

// PageArgs represents a one-based page request.
type PageArgs struct {
	// Page is the one-based page number. Values below 1 are treated as 1.
	Page int `json:"page"`

	// Size is the requested page size. Zero or negative means "use the
	// configured default".
	Size int `json:"size"`
}

// Normalize returns a copy of the args with Page raised to at least 1.
func (pa PageArgs) Normalize() PageArgs {
	if pa.Page < 1 {
		pa.Page = 1
	}
	return pa
}

// Offset returns the number of records to skip for this page at the given
// effective size.
func (pa PageArgs) Offset(size int) int {
	pa = pa.Normalize()
	return (pa.Page - 1) * size
}

// PageConfig holds pagination configuration options.
// Use NewPageConfig() to create a config with sensible defaults, then
// customize using the With* methods.
type PageConfig struct {
	// DefaultSize is the page size used when PageArgs does not specify one.
	DefaultSize int

	// MaxSize is the maximum allowed page size. Requests exceeding it are
	// capped (not rejected).
	MaxSize int
}

// NewPageConfig creates a PageConfig with the package defaults.
func NewPageConfig() *PageConfig {
	return &PageConfig{
		DefaultSize: DefaultPageSize,
		MaxSize:     DefaultMaxPageSize,
	}
}

// WithDefaultSize sets the default page size and returns the config for chaining.
func (c *PageConfig) WithDefaultSize(size int) *PageConfig {
	if size > 0 {
		c.DefaultSize = size
	}
	return c
}

// WithMaxSize sets the maximum page size and returns the config for chaining.
func (c *PageConfig) WithMaxSize(size int) *PageConfig {
	if size > 0 {
		c.MaxSize = size
	}
	return c
}

// EffectiveSize returns the page size to use, applying defaults and caps.
func (c *PageConfig) EffectiveSize(pa PageArgs) int {
	if c == nil {
		c = NewPageConfig()
	}

	defaultSize := c.DefaultSize
	if defaultSize <= 0 {
		defaultSize = DefaultPageSize
	}
	maxSize := c.MaxSize
	if maxSize <= 0 {
		maxSize = DefaultMaxPageSize
	}

	if pa.Size <= 0 {
		return defaultSize
	}
	if pa.Size > maxSize {
		return maxSize
	}
	return pa.Size
}

// TotalPages returns ceil(totalCount / pageSize). A zero totalCount (or a
// non-positive pageSize) yields zero pages.
func TotalPages(totalCount int64, pageSize int) int {
	if totalCount <= 0 || pageSize <= 0 {
		return 0
	}
	return int((totalCount + int64(pageSize) - 1) / int64(pageSize))
}

// ClampPage forces a one-based page number into [1, totalPages]. When the
// result set is empty (totalPages == 0) the page clamps to 1. Out-of-range
// page numbers are never an error, only clamped.
func ClampPage(page, totalPages int) int {
	if totalPages <= 0 || page < 1 {
		return 1
	}
	if page > totalPages {
		return totalPages
	}
	return page
}
