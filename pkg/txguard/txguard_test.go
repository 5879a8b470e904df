package txguard

import (
	"testing"

	qt "github.com/frankban/quicktest"
	"rc5rx/pkg/port"
	"rc5rx/pkg/rc5"
)

type recorder struct {
	calls []string
}

func (r *recorder) Enable()  { r.calls = append(r.calls, "enable") }
func (r *recorder) Disable() { r.calls = append(r.calls, "disable") }

func TestGuardSet(t *testing.T) {
	c := qt.New(t)

	r := &recorder{}
	g := newGuard(r)
	c.Assert(g.Active(), qt.IsFalse)

	g.Set(false)
	g.Set(false)
	g.Set(true)
	g.Set(true)
	c.Assert(g.Active(), qt.IsTrue)
	g.Set(false)

	c.Assert(r.calls, qt.DeepEquals, []string{"enable", "disable", "enable"})
}

func TestGuardDisablesDecoder(t *testing.T) {
	c := qt.New(t)

	timing := rc5.DefaultTiming()
	timing.Width = 8
	d, err := rc5.New(timing)
	c.Assert(err, qt.IsNil)

	g := newGuard(d)
	d.OnEdge(1800, port.FallingEdge)
	c.Assert(d.Phase(), qt.Equals, rc5.Accumulating)

	g.Set(true)
	c.Assert(d.Enabled(), qt.IsFalse)
	c.Assert(d.Phase(), qt.Equals, rc5.Idle)

	d.OnEdge(1800, port.FallingEdge)
	c.Assert(d.Phase(), qt.Equals, rc5.Idle)

	g.Set(false)
	d.OnEdge(1800, port.FallingEdge)
	c.Assert(d.Phase(), qt.Equals, rc5.Accumulating)
}
