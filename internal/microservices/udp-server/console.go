package udp

import (
	"io"

	"github.com/fatih/color"
)

// Console prints the human-readable trace, one line per event.
type Console struct {
	w        io.Writer
	received *color.Color
	text     *color.Color
	ok       *color.Color
	failed   *color.Color
}

// NewConsole writes to w. Colors are disabled when colored is false.
func NewConsole(w io.Writer, colored bool) *Console {
	c := &Console{
		w:        w,
		received: color.New(color.FgCyan),
		text:     color.New(color.FgHiBlack),
		ok:       color.New(color.FgGreen),
		failed:   color.New(color.FgRed),
	}
	if !colored {
		for _, col := range []*color.Color{c.received, c.text, c.ok, c.failed} {
			col.DisableColor()
		}
	}
	return c
}

func (c *Console) Received(msg *Inbound) {
	c.received.Fprintf(c.w, "Received: %s\n", msg)
	if text, ok := msg.Text(); ok {
		c.text.Fprintf(c.w, "  text: %q\n", text)
	}
}

func (c *Console) Responded() {
	c.ok.Fprintln(c.w, "Responded")
}

func (c *Console) Failed(err error) {
	c.failed.Fprintf(c.w, "Error: %v\n", err)
}
