package stream

import (
	"expvar"
	"sort"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/atomic"
)

var (
	metricMu   sync.Mutex
	metricRoot = metricTree{}
)

func init() {
	expvar.Publish("samplewire", expvarFunc(func() string {
		metricMu.Lock()
		defer metricMu.Unlock()
		var b strings.Builder
		metricRoot.writeJSON(&b)
		return b.String()
	}))
}

type expvarFunc func() string

func (f expvarFunc) String() string { return f() }

// metricTree nests counters by path, leaves are *counter.
type metricTree map[string]interface{}

// writeJSON writes the tree with sorted keys so the output is stable.
func (t metricTree) writeJSON(b *strings.Builder) {
	keys := make([]string, 0, len(t))
	for key := range t {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	b.WriteByte('{')
	for i, key := range keys {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(strconv.Quote(key))
		b.WriteString(": ")
		switch v := t[key].(type) {
		case metricTree:
			v.writeJSON(b)
		case *counter:
			b.WriteString(v.String())
		}
	}
	b.WriteByte('}')
}

type counter struct {
	atomic.Uint64
}

func (c *counter) String() string {
	return strconv.FormatUint(c.Load(), 10)
}

// newCounter registers a counter at path, the last element names the counter.
func newCounter(path ...string) *counter {
	metricMu.Lock()
	defer metricMu.Unlock()

	node := metricRoot
	for _, part := range path[:len(path)-1] {
		sub, ok := node[part].(metricTree)
		if !ok {
			sub = metricTree{}
			node[part] = sub
		}
		node = sub
	}
	c := &counter{}
	node[path[len(path)-1]] = c
	return c
}
