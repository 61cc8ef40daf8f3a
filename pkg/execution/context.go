package execution

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"skipdb/pkg/logging"
	"skipdb/pkg/types"
)

// ExecContext carries per-query execution state shared by all operators
// in one plan tree: the query identity for log correlation and the arena
// that owns reference-typed values captured across scan restarts.
type ExecContext struct {
	QueryID uuid.UUID
	Log     *zap.Logger
	Arena   *Arena
}

// NewExecContext creates a fresh context with a random query id.
func NewExecContext() *ExecContext {
	id := uuid.New()
	return &ExecContext{
		QueryID: id,
		Log:     logging.GetLogger().With(zap.String("query_id", id.String())),
		Arena:   NewArena(),
	}
}

// Arena tracks field values whose lifetime must outlive the tuple they
// were read from. Operators that capture a reference-typed value across
// a scan restart hold a private copy here and drop it once replaced.
type Arena struct {
	held []types.Field
}

func NewArena() *Arena {
	return &Arena{}
}

// Hold registers a copy so the arena accounts for its lifetime.
func (a *Arena) Hold(f types.Field) {
	if f == nil {
		return
	}
	a.held = append(a.held, f)
}

// Drop releases a previously held value. Identity comparison is
// intentional: the caller releases the exact copy it registered.
func (a *Arena) Drop(f types.Field) {
	for i, h := range a.held {
		if h == f {
			a.held = append(a.held[:i], a.held[i+1:]...)
			return
		}
	}
}

// Reset releases everything at once, typically at query end.
func (a *Arena) Reset() {
	a.held = a.held[:0]
}

// Size reports how many values are currently held, used by tests to
// verify operators do not leak captured copies.
func (a *Arena) Size() int {
	return len(a.held)
}
