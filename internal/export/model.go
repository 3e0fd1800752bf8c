// Package export converts assembled call trees into their wire form,
// batches them, and ships batches to a spool file or an HTTP
// collector endpoint.
package export

import (
	"strconv"

	"github.com/GriffinCanCode/TraceForge/internal/symbols"
	"github.com/GriffinCanCode/TraceForge/internal/trace"
)

// Trace is the wire form of one assembled call tree.
type Trace struct {
	TraceID  int32  `json:"trace_id"`
	Clock    int64  `json:"clock"`
	Overflow bool   `json:"overflow,omitempty"`
	Root     *Frame `json:"root"`
}

// Frame is the wire form of one call-tree node.
type Frame struct {
	Class      string         `json:"class"`
	Method     string         `json:"method"`
	Signature  string         `json:"signature,omitempty"`
	DurationNS int64          `json:"duration_ns"`
	Calls      int64          `json:"calls"`
	Errors     int64          `json:"errors,omitempty"`
	Error      string         `json:"error,omitempty"`
	Attrs      map[string]any `json:"attrs,omitempty"`
	Children   []*Frame       `json:"children,omitempty"`
}

// Build converts the tree rooted at rec to wire form, resolving symbol
// ids through syms. A nil syms leaves ids as "#<id>" placeholders.
func Build(rec *trace.Record, syms *symbols.Registry) *Trace {
	t := &Trace{Root: buildFrame(rec, syms)}
	if m := rec.Marker(); m != nil {
		t.TraceID = m.TraceID()
		t.Clock = m.Clock()
		t.Overflow = m.HasOverflow()
	}
	return t
}

func buildFrame(rec *trace.Record, syms *symbols.Registry) *Frame {
	f := &Frame{
		Class:      resolve(syms, rec.ClassID()),
		Method:     resolve(syms, rec.MethodID()),
		Signature:  resolve(syms, rec.SignatureID()),
		DurationNS: rec.Time(),
		Calls:      rec.Calls(),
		Errors:     rec.Errors(),
	}
	if err := rec.Exception(); err != nil {
		f.Error = err.Error()
	}
	rec.EachAttr(func(id int32, val any) {
		if f.Attrs == nil {
			f.Attrs = make(map[string]any)
		}
		f.Attrs[resolve(syms, id)] = val
	})
	for _, child := range rec.Children() {
		f.Children = append(f.Children, buildFrame(child, syms))
	}
	return f
}

func resolve(syms *symbols.Registry, id int32) string {
	if syms == nil {
		return "#" + strconv.Itoa(int(id))
	}
	return syms.Resolve(id)
}

// Nodes counts the frames in the tree rooted at f.
func (f *Frame) Nodes() int {
	n := 1
	for _, child := range f.Children {
		n += child.Nodes()
	}
	return n
}
