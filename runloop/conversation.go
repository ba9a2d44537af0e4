package runloop

import (
	"github.com/agencyboard/agentrun/modelio"
)

// Conversation is the ordered, append-only message history that forms the
// model's context window. It is owned by exactly one Runner for the duration
// of a run; ownership transfers to the persisted snapshot on pause and back
// on resume. Serialization must preserve block order and tool-call pairing.
type Conversation []modelio.Message

// Clone returns a deep copy safe to hand across the pause boundary.
func (c Conversation) Clone() Conversation {
	if c == nil {
		return nil
	}
	out := make(Conversation, len(c))
	for i, msg := range c {
		out[i] = msg.Clone()
	}
	return out
}

// Append returns c with msg appended. The receiver is not mutated when the
// backing array is shared; callers always use the return value.
func (c Conversation) Append(msgs ...modelio.Message) Conversation {
	return append(c, msgs...)
}

// Alternates reports whether roles strictly alternate, starting with user.
// Snapshot consumers use it as a sanity check before resuming.
func (c Conversation) Alternates() bool {
	for i, msg := range c {
		want := modelio.RoleUser
		if i%2 == 1 {
			want = modelio.RoleAssistant
		}
		if msg.Role != want {
			return false
		}
	}
	return true
}
