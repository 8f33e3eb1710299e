package stream

import (
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/matt-g-everett/fluidtx/geometry"
	"github.com/matt-g-everett/fluidtx/render"
	"github.com/matt-g-everett/fluidtx/tween"
	"github.com/matt-g-everett/fluidtx/viewport"
	"gopkg.in/yaml.v2"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// AnimationConfig shapes the pour timeline.
type AnimationConfig struct {
	Percent     float64 `yaml:"percent"`
	Duration    float64 `yaml:"duration"`
	Fluctuation float64 `yaml:"fluctuation"`
	FrameRate   float64 `yaml:"frameRate"`
	Repeat      int     `yaml:"repeat"`
	PourEase    string  `yaml:"pourEase"`
	RippleEase  string  `yaml:"rippleEase"`
}

// DurationTime returns the pour duration.
func (a AnimationConfig) DurationTime() time.Duration {
	return time.Duration(a.Duration * float64(time.Second))
}

type Config struct {
	Viewport struct {
		Container string  `yaml:"container"`
		Width     float64 `yaml:"width"`
		Height    float64 `yaml:"height"`
	} `yaml:"viewport"`
	Style struct {
		Fill        string  `yaml:"fill"`
		Stroke      string  `yaml:"stroke"`
		StrokeWidth float64 `yaml:"strokeWidth"`
	} `yaml:"style"`
	Animation AnimationConfig `yaml:"animation"`
	HTTP      struct {
		Listen string `yaml:"listen"`
	} `yaml:"http"`
	Export struct {
		Dir     string `yaml:"dir"`
		Workers int    `yaml:"workers"`
	} `yaml:"export"`
	Mqtt struct {
		URL      string `yaml:"url"`
		ClientID string `yaml:"clientID"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
		QoS      byte   `yaml:"qos"`
		Topics   struct {
			Stream  string `yaml:"stream"`
			Control string `yaml:"control"`
		} `yaml:"topics"`
	} `yaml:"mqtt"`
}

// DefaultConfig returns the settings of the original pour.
func DefaultConfig() Config {
	var c Config
	c.Viewport.Container = viewport.DefaultContainer
	c.Viewport.Width = 1280
	c.Viewport.Height = 720
	c.Style.Fill = render.DefaultFill
	c.Style.Stroke = render.DefaultStroke
	c.Style.StrokeWidth = render.DefaultStrokeWidth
	c.Animation = AnimationConfig{
		Percent:     0.77,
		Duration:    3,
		Fluctuation: geometry.DefaultFluctuation,
		FrameRate:   tween.DefaultFrameRate,
		PourEase:    "power1.out",
		RippleEase:  "power2.inOut",
	}
	c.HTTP.Listen = ":3000"
	c.Export.Dir = "output"
	c.Export.Workers = 4
	c.Mqtt.ClientID = "fluidtx"
	c.Mqtt.Topics.Stream = "home/fluid/stream"
	c.Mqtt.Topics.Control = "home/fluid/control"
	return c
}

// ParseConfig decodes YAML over the defaults and validates the result.
func ParseConfig(data []byte) (Config, error) {
	c := DefaultConfig()
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// LoadConfig reads and parses a YAML config file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return ParseConfig(data)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Validate reports the first setting that cannot be used.
func (c Config) Validate() error {
	switch {
	case c.Viewport.Container == "":
		return fmt.Errorf("%w: viewport.container is empty", ErrInvalidConfig)
	case !finite(c.Viewport.Width) || c.Viewport.Width < 0:
		return fmt.Errorf("%w: viewport.width %v", ErrInvalidConfig, c.Viewport.Width)
	case !finite(c.Viewport.Height) || c.Viewport.Height < 0:
		return fmt.Errorf("%w: viewport.height %v", ErrInvalidConfig, c.Viewport.Height)
	case !finite(c.Animation.Percent):
		return fmt.Errorf("%w: animation.percent %v", ErrInvalidConfig, c.Animation.Percent)
	case !finite(c.Animation.Duration) || c.Animation.Duration < 0:
		return fmt.Errorf("%w: animation.duration %v", ErrInvalidConfig, c.Animation.Duration)
	case !finite(c.Animation.Fluctuation):
		return fmt.Errorf("%w: animation.fluctuation %v", ErrInvalidConfig, c.Animation.Fluctuation)
	case !finite(c.Animation.FrameRate) || c.Animation.FrameRate <= 0:
		return fmt.Errorf("%w: animation.frameRate %v", ErrInvalidConfig, c.Animation.FrameRate)
	case c.Animation.Repeat < -1:
		return fmt.Errorf("%w: animation.repeat %d", ErrInvalidConfig, c.Animation.Repeat)
	case c.Export.Workers < 1:
		return fmt.Errorf("%w: export.workers %d", ErrInvalidConfig, c.Export.Workers)
	case c.Mqtt.QoS > 2:
		return fmt.Errorf("%w: mqtt.qos %d", ErrInvalidConfig, c.Mqtt.QoS)
	}

	for _, name := range []string{c.Animation.PourEase, c.Animation.RippleEase} {
		if _, err := tween.ParseEase(name); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
	}

	if _, err := c.RenderStyle(); err != nil {
		return fmt.Errorf("%w: style: %v", ErrInvalidConfig, err)
	}
	return nil
}

// RenderStyle parses the style section.
func (c Config) RenderStyle() (render.Style, error) {
	return render.ParseStyle(c.Style.Fill, c.Style.Stroke, c.Style.StrokeWidth)
}
