package definition

import (
	"context"
	"errors"
	"sync"

	"github.com/goliatone/go-dorf/pkg/future"
)

// ErrNoOptionSource is returned when a choice field has neither static nor
// async options.
var ErrNoOptionSource = errors.New("definition: expected promise or stream when no static options specified")

// Option is a single selectable entry. Key is the model value, Value the
// display text.
type Option struct {
	Key   any    `json:"key" yaml:"key" toml:"key"`
	Value string `json:"value" yaml:"value" toml:"value"`
}

// ChooseOptions configures a field with a bounded option set. Set either
// OptionsToSelect or AsyncOptionsToSelect; a non-nil static list wins.
type ChooseOptions struct {
	Options
	OptionsToSelect      []Option
	AsyncOptionsToSelect *future.Future[[]Option]
}

// Choose is the shared part of select and radio definitions.
type Choose struct {
	Base
	static []Option
	async  *future.Future[[]Option]

	mu       sync.Mutex
	cached   []Option
	resolved bool
	err      error
}

func NewChoose(opts ChooseOptions) *Choose {
	var static []Option
	if opts.OptionsToSelect != nil {
		static = append([]Option{}, opts.OptionsToSelect...)
	}
	return &Choose{
		Base:   NewBase(opts.Options),
		static: static,
		async:  opts.AsyncOptionsToSelect,
	}
}

// OptionsToSelect returns the option list. With an async source it returns
// the cached list, which stays empty until the source settles. Once settled,
// the value is cached and later reads never touch the source again. A failed
// source yields an empty list; see OptionsErr.
func (c *Choose) OptionsToSelect() ([]Option, error) {
	if c.static != nil {
		return append([]Option{}, c.static...), nil
	}
	if c.async == nil {
		return nil, ErrNoOptionSource
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.resolved {
		value, settled, err := c.async.Peek()
		if settled {
			c.store(value, err)
		}
	}
	return append([]Option{}, c.cached...), nil
}

// WaitOptions blocks until the options are available or ctx is done.
func (c *Choose) WaitOptions(ctx context.Context) ([]Option, error) {
	if c.static != nil || c.async == nil {
		return c.OptionsToSelect()
	}
	value, err := c.async.Await(ctx)
	if err != nil && ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.resolved {
		c.store(value, err)
	}
	if c.err != nil {
		return nil, c.err
	}
	return append([]Option{}, c.cached...), nil
}

// OptionsErr returns the failure of the async source, if it failed.
func (c *Choose) OptionsErr() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// HasAsyncOptions reports whether options come from an async source.
func (c *Choose) HasAsyncOptions() bool {
	return c.static == nil && c.async != nil
}

// AsyncOptions returns the async source, or nil.
func (c *Choose) AsyncOptions() *future.Future[[]Option] {
	if c.static != nil {
		return nil
	}
	return c.async
}

func (c *Choose) store(value []Option, err error) {
	c.resolved = true
	if err != nil {
		c.err = err
		c.cached = nil
		return
	}
	c.cached = append([]Option{}, value...)
}
