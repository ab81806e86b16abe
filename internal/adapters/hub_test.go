package adapters

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeWS satisfies WSConn without a network.
type fakeWS struct {
	closed bool
}

func (f *fakeWS) ReadMessage() (int, []byte, error) { select {} }
func (f *fakeWS) WriteMessage(int, []byte) error    { return nil }
func (f *fakeWS) SetWriteDeadline(time.Time) error  { return nil }
func (f *fakeWS) SetReadDeadline(time.Time) error   { return nil }
func (f *fakeWS) SetReadLimit(int64)                {}
func (f *fakeWS) SetPongHandler(func(string) error) {}
func (f *fakeWS) Close() error                      { f.closed = true; return nil }

func mustFrame(t *testing.T, data []byte) frame {
	t.Helper()
	var f frame
	require.NoError(t, json.Unmarshal(data, &f))
	return f
}

func drain(c *Conn) [][]byte {
	var out [][]byte
	for {
		select {
		case data := <-c.send:
			out = append(out, data)
		default:
			return out
		}
	}
}

func TestHub_EmitUnknownTarget(t *testing.T) {
	req := require.New(t)
	h := NewHub()

	req.False(h.Emit("ghost", "chat:message", nil))
}

func TestHub_EmitDelivers(t *testing.T) {
	req := require.New(t)
	h := NewHub()
	c := NewConn(&fakeWS{})
	h.Register("a", c)

	req.True(h.Emit("a", "users:list", []string{"x"}))

	frames := drain(c)
	req.Len(frames, 1)
	f := mustFrame(t, frames[0])
	req.Equal("users:list", f.Event)
	req.JSONEq(`["x"]`, string(f.Payload))
}

func TestHub_BroadcastExceptSkipsSender(t *testing.T) {
	req := require.New(t)
	h := NewHub()
	a, b, c := NewConn(&fakeWS{}), NewConn(&fakeWS{}), NewConn(&fakeWS{})
	h.Register("a", a)
	h.Register("b", b)
	h.Register("c", c)

	h.BroadcastExcept("a", "user:moved", map[string]int{"x": 1})

	req.Empty(drain(a), "sender never hears its own event")
	req.Len(drain(b), 1)
	req.Len(drain(c), 1)
}

func TestHub_BroadcastReachesAll(t *testing.T) {
	req := require.New(t)
	h := NewHub()
	a, b := NewConn(&fakeWS{}), NewConn(&fakeWS{})
	h.Register("a", a)
	h.Register("b", b)

	h.Broadcast("office:activity", "hi")

	aFrames, bFrames := drain(a), drain(b)
	req.Len(aFrames, 1)
	req.Len(bFrames, 1)
	req.Equal(aFrames[0], bFrames[0], "identical payload for everyone")
}

func TestHub_BackpressuredTargetSkipped(t *testing.T) {
	req := require.New(t)
	h := NewHub()
	slow, fast := NewConn(&fakeWS{}), NewConn(&fakeWS{})
	h.Register("slow", slow)
	h.Register("fast", fast)

	for i := 0; i < sendBuffer; i++ {
		require.NoError(t, slow.TrySend([]byte("x")))
	}

	h.Broadcast("chat:message", "hello")

	req.Len(drain(fast), 1, "other targets still get the event")
	req.Len(drain(slow), sendBuffer, "nothing extra queued for the slow one")
}

func TestHub_RegisterReplaces(t *testing.T) {
	req := require.New(t)
	h := NewHub()
	c1, c2 := NewConn(&fakeWS{}), NewConn(&fakeWS{})

	req.Nil(h.Register("a", c1))
	req.Same(c1, h.Register("a", c2))

	req.False(h.Unregister("a", c1), "superseded conn cannot evict its replacement")
	req.True(h.Emit("a", "ping", nil))
	req.True(h.Unregister("a", c2))
	req.False(h.Emit("a", "ping", nil))
}

func TestConn_CloseIsIdempotent(t *testing.T) {
	req := require.New(t)
	ws := &fakeWS{}
	c := NewConn(ws)

	c.Close()
	c.Close()

	req.True(ws.closed)
	req.Error(c.TrySend([]byte("x")))
}
