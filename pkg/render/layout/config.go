package layout

import "fmt"

// Default page geometry, in logical pixels.
const (
	DefaultWidth      = 800
	DefaultHeight     = 1100
	DefaultMargin     = 70
	DefaultTop        = 140
	DefaultLineHeight = 26
	DefaultMaskHeight = 20
)

// Config describes the page geometry used by [Compute].
type Config struct {
	// Width and Height are the canvas size.
	Width, Height int

	// Margin is the left margin and, mirrored, the right margin.
	Margin float64

	// Top is the y coordinate of the first body row (top of the text box).
	Top float64

	// LineHeight is the vertical advance between rows.
	LineHeight float64

	// MaskHeight is the height of the opaque box painted over masked tokens.
	MaskHeight float64
}

// DefaultConfig returns the standard 800x1100 page.
func DefaultConfig() Config {
	return Config{
		Width:      DefaultWidth,
		Height:     DefaultHeight,
		Margin:     DefaultMargin,
		Top:        DefaultTop,
		LineHeight: DefaultLineHeight,
		MaskHeight: DefaultMaskHeight,
	}
}

// RightEdge returns the x coordinate past which a token wraps.
func (c Config) RightEdge() float64 {
	return float64(c.Width) - c.Margin
}

// UsableWidth returns the horizontal space available to a row.
func (c Config) UsableWidth() float64 {
	return c.RightEdge() - c.Margin
}

// Validate reports geometry that cannot hold any text.
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("canvas size must be positive, got %dx%d", c.Width, c.Height)
	}
	if c.Margin < 0 {
		return fmt.Errorf("margin must not be negative, got %v", c.Margin)
	}
	if c.UsableWidth() <= 0 {
		return fmt.Errorf("margin %v leaves no usable width on a %dpx canvas", c.Margin, c.Width)
	}
	if c.LineHeight <= 0 {
		return fmt.Errorf("line height must be positive, got %v", c.LineHeight)
	}
	if c.MaskHeight <= 0 {
		return fmt.Errorf("mask height must be positive, got %v", c.MaskHeight)
	}
	return nil
}

// withDefaults fills zero fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Width == 0 {
		c.Width = d.Width
	}
	if c.Height == 0 {
		c.Height = d.Height
	}
	if c.Margin == 0 {
		c.Margin = d.Margin
	}
	if c.Top == 0 {
		c.Top = d.Top
	}
	if c.LineHeight == 0 {
		c.LineHeight = d.LineHeight
	}
	if c.MaskHeight == 0 {
		c.MaskHeight = d.MaskHeight
	}
	return c
}
