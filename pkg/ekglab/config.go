package ekglab

import (
	"time"

	"github.com/himanishpuri/EKGLab/pkg/ekglab/plot"
	"github.com/himanishpuri/EKGLab/pkg/ekglab/transport"
)

// DefaultMinSamples is the fewest mapped samples a drawing needs before it
// is analyzed.
const DefaultMinSamples = 50

type Config struct {
	DBPath     string
	Surface    plot.Surface
	MinSamples int
	Pace       time.Duration
	Logger     Logger
	Storage    Storage
}

type Option func(*Config)

func WithDBPath(path string) Option {
	return func(c *Config) {
		c.DBPath = path
	}
}

// WithSurface sets the drawing surface raw pixel coordinates refer to.
func WithSurface(s plot.Surface) Option {
	return func(c *Config) {
		c.Surface = s
	}
}

func WithMinSamples(n int) Option {
	return func(c *Config) {
		c.MinSamples = n
	}
}

// WithPace sets the delay between lines sent to a device.
func WithPace(d time.Duration) Option {
	return func(c *Config) {
		c.Pace = d
	}
}

func WithLogger(log Logger) Option {
	return func(c *Config) {
		c.Logger = log
	}
}

func WithStorage(storage Storage) Option {
	return func(c *Config) {
		c.Storage = storage
	}
}

func defaultConfig() *Config {
	return &Config{
		DBPath:     "ekglab.sqlite3",
		Surface:    plot.Surface{Width: 1100, Height: 500, Margin: plot.DefaultMargin},
		MinSamples: DefaultMinSamples,
		Pace:       transport.DefaultPace,
		Logger:     nil,
	}
}
