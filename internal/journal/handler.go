package journal

import (
	"github.com/GriffinCanCode/TraceForge/internal/symbols"
	"github.com/GriffinCanCode/TraceForge/internal/trace"
)

// symbolCapture forwards every event to the wrapped handler and
// additionally registers symbol bindings, which builders ignore.
type symbolCapture struct {
	trace.Handler
	reg *symbols.Registry
}

// WithSymbols wraps h so that replayed NewSymbol events also populate
// reg. Use it when replaying a journal into a builder, so exported
// trees resolve to the names captured alongside the events.
func WithSymbols(h trace.Handler, reg *symbols.Registry) trace.Handler {
	return symbolCapture{Handler: h, reg: reg}
}

func (s symbolCapture) NewSymbol(id int32, text string) {
	s.reg.Register(id, text)
	s.Handler.NewSymbol(id, text)
}
