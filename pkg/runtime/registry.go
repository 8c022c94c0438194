package runtime

import (
	"sort"
	"sync"

	"github.com/golang/groupcache/lru"

	"github.com/pwrobel5/compilers-lab/pkg/ast"
)

// Record is one memoized expression: the first node registered under a
// structural key, how many times the key was seen again, and its result.
type Record struct {
	Key    string
	Node   ast.Expression
	Count  int
	Result Value

	seq uint64
}

// Registry is the expression registry shared by every frame of a Scope.
// Frame pushes and pops never remove records; a positive capacity evicts the
// least recently used ones.
type Registry struct {
	mu      sync.Mutex
	records map[string]*Record
	recency *lru.Cache
	seq     uint64
}

func NewRegistry(capacity int) *Registry {
	r := &Registry{records: make(map[string]*Record)}
	r.recency = lru.New(capacity)
	r.recency.OnEvicted = func(key lru.Key, _ interface{}) {
		delete(r.records, key.(string))
	}
	return r
}

func (r *Registry) lookup(key string) (*Record, bool) {
	if _, ok := r.recency.Get(key); !ok {
		return nil, false
	}
	rec, ok := r.records[key]
	return rec, ok
}

// register returns the record for key, adding one with a zero count when
// absent and bumping the count otherwise.
func (r *Registry) register(key string, node ast.Expression) *Record {
	if rec, ok := r.lookup(key); ok {
		rec.Count++
		return rec
	}
	r.seq++
	rec := &Record{Key: key, Node: node, seq: r.seq}
	r.records[key] = rec
	r.recency.Add(key, struct{}{})
	return rec
}

// Node returns the expression first registered under key.
func (r *Registry) Node(key string) (ast.Expression, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.lookup(key)
	if !ok {
		return nil, false
	}
	return rec.Node, true
}

// store saves the record's result exactly once.
func (rec *Record) store(val Value) error {
	if rec.Result != nil {
		return newError(MemoizationConsistency, "result for expression %s saved twice", rec.Key)
	}
	rec.Result = val
	return nil
}

// Memoize registers node under key and returns the cached result, computing
// and storing it on the first occurrence. compute runs under the registry
// lock so concurrent evaluations of one key store a single result; it must
// not touch the registry.
func (r *Registry) Memoize(key string, node ast.Expression, compute func() (Value, error)) (Value, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec := r.register(key, node)
	if rec.Result != nil {
		return rec.Result, nil
	}
	val, err := compute()
	if err != nil {
		return nil, err
	}
	if err := rec.store(val); err != nil {
		return nil, err
	}
	return val, nil
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

// Records returns a snapshot of every record in registration order.
func (r *Registry) Records() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Record, 0, len(r.records))
	for _, rec := range r.records {
		out = append(out, *rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}
