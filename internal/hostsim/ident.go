package hostsim

import (
	"crypto/rand"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

const sessionPrefix = "sess"

// identity mints prefixed ULIDs. ULIDs are lexicographically sortable by
// creation time, so session ids in the state dump read in connection order.
type identity struct {
	mu      sync.Mutex
	entropy io.Reader
}

var ident = identity{entropy: rand.Reader}

func (g *identity) mint(prefix string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return fmt.Sprintf("%s_%s", prefix, ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy))
}

// newSessionID identifies one channel connection in logs and the debug state
// dump.
func newSessionID() string {
	return ident.mint(sessionPrefix)
}
