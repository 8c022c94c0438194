package runtime

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/pwrobel5/compilers-lab/pkg/ast"
)

var bindingIDs atomic.Uint64

// DeclaredName is one variable binding. Its kind is fixed at declaration.
type DeclaredName struct {
	id      uint64
	kind    Kind
	shape   []int
	value   Value
	version uint64
	used    bool
}

// DeclaredFunction is one function binding.
type DeclaredFunction struct {
	Definition *ast.FunctionDefinition
	used       bool
}

// Frame is one level of lexical nesting.
type Frame struct {
	names     map[string]*DeclaredName
	functions map[string]*DeclaredFunction
}

func newFrame() *Frame {
	return &Frame{
		names:     make(map[string]*DeclaredName),
		functions: make(map[string]*DeclaredFunction),
	}
}

// Ref identifies the exact binding and version a read observed.
type Ref struct {
	Binding uint64
	Version uint64
}

// Scope is the frame stack of one interpretation session plus its shared
// expression registry. Copies made with Copy share frames, registry and lock
// with the original; each operation holds the lock only for its own
// duration and never calls back into evaluation.
type Scope struct {
	mu       *sync.Mutex
	frames   []*Frame
	registry *Registry
}

type scopeConfig struct {
	registryCapacity int
}

type ScopeOption func(*scopeConfig)

// WithRegistryCapacity bounds the expression registry; 0 keeps every record.
func WithRegistryCapacity(n int) ScopeOption {
	return func(c *scopeConfig) { c.registryCapacity = n }
}

// NewScope creates a scope holding only the global frame.
func NewScope(opts ...ScopeOption) *Scope {
	var cfg scopeConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Scope{
		mu:       &sync.Mutex{},
		frames:   []*Frame{newFrame()},
		registry: NewRegistry(cfg.registryCapacity),
	}
}

func (s *Scope) Registry() *Registry {
	return s.registry
}

// Copy returns a shallow copy with its own frame-stack spine. Frames pushed
// on the copy are invisible to the original.
func (s *Scope) Copy() *Scope {
	s.mu.Lock()
	defer s.mu.Unlock()
	frames := make([]*Frame, len(s.frames))
	copy(frames, s.frames)
	return &Scope{mu: s.mu, frames: frames, registry: s.registry}
}

func (s *Scope) PushFrame() {
	s.mu.Lock()
	s.frames = append(s.frames, newFrame())
	s.mu.Unlock()
}

// PopFrame discards the innermost frame. The global frame is never popped.
func (s *Scope) PopFrame() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.frames) == 1 {
		return fmt.Errorf("cannot pop the global frame")
	}
	s.frames[len(s.frames)-1] = nil
	s.frames = s.frames[:len(s.frames)-1]
	return nil
}

// Depth reports the number of frames, the global one included.
func (s *Scope) Depth() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.frames)
}

func (s *Scope) top() *Frame {
	return s.frames[len(s.frames)-1]
}

// Declare binds name in the innermost frame. A nil value declares the kind's
// default.
func (s *Scope) Declare(name string, kind Kind, value Value) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	frame := s.top()
	if _, exists := frame.names[name]; exists {
		return newError(DuplicateDeclaration, "Variable %s is already declared", name)
	}
	if value == nil {
		value = DefaultValue(kind)
	}
	if value == nil || value.Kind() != kind {
		return newError(AssignmentTypeMismatch, "Value of wrong type assigned to %s. Expected %s given %s", name, kind, kindOf(value))
	}
	frame.names[name] = &DeclaredName{id: bindingIDs.Add(1), kind: kind, value: value}
	return nil
}

// DeclareArray binds a zero-filled array of the given element kind.
func (s *Scope) DeclareArray(name string, elem Kind, shape []int) error {
	arr, err := NewArray(elem, shape)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	frame := s.top()
	if _, exists := frame.names[name]; exists {
		return newError(DuplicateDeclaration, "Variable %s is already declared", name)
	}
	frame.names[name] = &DeclaredName{id: bindingIDs.Add(1), kind: elem, shape: arr.Shape, value: arr}
	return nil
}

func (s *Scope) resolve(name string) (*DeclaredName, error) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if decl, ok := s.frames[i].names[name]; ok {
			return decl, nil
		}
	}
	msg := "Name " + name + " not declared in any scope"
	if hint := suggest(name, s.visibleNames()); hint != "" {
		msg += "; did you mean " + hint + "?"
	}
	return nil, &Error{Kind: UndeclaredName, Message: msg}
}

// Assign stores a whole value into the nearest binding of name.
func (s *Scope) Assign(name string, value Value) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	decl, err := s.resolve(name)
	if err != nil {
		return err
	}
	if err := decl.accepts(name, value); err != nil {
		return err
	}
	if arr, ok := value.(*ArrayValue); ok {
		value = arr.Clone()
	}
	decl.value = value
	decl.version++
	return nil
}

// AssignIndex stores one element of an array binding.
func (s *Scope) AssignIndex(name string, index []Value, value Value) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	decl, err := s.resolve(name)
	if err != nil {
		return err
	}
	arr, ok := decl.value.(*ArrayValue)
	if !ok {
		return newError(ArrayIndexInvalid, "Name %s is not an array", name)
	}
	if value == nil || value.Kind() != arr.Elem {
		return newError(AssignmentTypeMismatch, "Value of wrong type assigned to %s. Expected %s given %s", name, arr.Elem, kindOf(value))
	}
	offset, err := arr.Offset(index)
	if err != nil {
		return err
	}
	arr.Elements[offset] = value
	decl.version++
	return nil
}

// Read returns the value of name and its version, marking it used.
func (s *Scope) Read(name string) (Value, uint64, error) {
	val, ref, err := s.ReadRef(name, nil)
	return val, ref.Version, err
}

// ReadIndex reads one array element and the array's version.
func (s *Scope) ReadIndex(name string, index []Value) (Value, uint64, error) {
	if len(index) == 0 {
		return nil, 0, newError(ArrayIndexInvalid, "empty index for %s", name)
	}
	val, ref, err := s.ReadRef(name, index)
	return val, ref.Version, err
}

// ReadRef reads name (an element when index is non-empty) and reports the
// binding identity and version observed by this read.
func (s *Scope) ReadRef(name string, index []Value) (Value, Ref, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	decl, err := s.resolve(name)
	if err != nil {
		return nil, Ref{}, err
	}
	decl.used = true
	ref := Ref{Binding: decl.id, Version: decl.version}
	if len(index) == 0 {
		if arr, ok := decl.value.(*ArrayValue); ok {
			return arr.Clone(), ref, nil
		}
		return decl.value, ref, nil
	}
	arr, ok := decl.value.(*ArrayValue)
	if !ok {
		return nil, Ref{}, newError(ArrayIndexInvalid, "Name %s is not an array", name)
	}
	offset, err := arr.Offset(index)
	if err != nil {
		return nil, Ref{}, err
	}
	return arr.Elements[offset], ref, nil
}

// Update applies fn to the current value (or element) of name as one
// atomic read-modify-write and returns the old and new values.
func (s *Scope) Update(name string, index []Value, fn func(Value) (Value, error)) (Value, Value, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	decl, err := s.resolve(name)
	if err != nil {
		return nil, nil, err
	}
	decl.used = true
	if len(index) == 0 {
		if _, isArr := decl.value.(*ArrayValue); isArr {
			return nil, nil, newError(BinaryOperationTypeMismatch, "cannot update whole array %s", name)
		}
		old := decl.value
		next, err := fn(old)
		if err != nil {
			return nil, nil, err
		}
		if err := decl.accepts(name, next); err != nil {
			return nil, nil, err
		}
		decl.value = next
		decl.version++
		return old, next, nil
	}
	arr, ok := decl.value.(*ArrayValue)
	if !ok {
		return nil, nil, newError(ArrayIndexInvalid, "Name %s is not an array", name)
	}
	offset, err := arr.Offset(index)
	if err != nil {
		return nil, nil, err
	}
	old := arr.Elements[offset]
	next, err := fn(old)
	if err != nil {
		return nil, nil, err
	}
	if next.Kind() != arr.Elem {
		return nil, nil, newError(AssignmentTypeMismatch, "Value of wrong type assigned to %s. Expected %s given %s", name, arr.Elem, next.Kind())
	}
	arr.Elements[offset] = next
	decl.version++
	return old, next, nil
}

func (d *DeclaredName) accepts(name string, value Value) error {
	if d.shape == nil {
		if value == nil || value.Kind() != d.kind {
			return newError(AssignmentTypeMismatch, "Value of wrong type assigned to %s. Expected %s given %s", name, d.kind, kindOf(value))
		}
		return nil
	}
	arr, ok := value.(*ArrayValue)
	if !ok || arr.Elem != d.kind || !sameShape(arr.Shape, d.shape) {
		return newError(AssignmentTypeMismatch, "Value of wrong type assigned to %s. Expected %s array of shape %v given %s", name, d.kind, d.shape, describeShape(value))
	}
	return nil
}

func describeShape(v Value) string {
	if arr, ok := v.(*ArrayValue); ok {
		return fmt.Sprintf("%s array of shape %v", arr.Elem, arr.Shape)
	}
	return kindOf(v)
}

func kindOf(v Value) string {
	if v == nil {
		return "no value"
	}
	return v.Kind().String()
}

// DeclareFunction binds a function definition in the innermost frame.
func (s *Scope) DeclareFunction(def *ast.FunctionDefinition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	frame := s.top()
	if _, exists := frame.functions[def.Name]; exists {
		return newError(DuplicateDeclaration, "Function %s is already declared", def.Name)
	}
	frame.functions[def.Name] = &DeclaredFunction{Definition: def}
	return nil
}

// ResolveFunction finds the nearest function binding, marking it used.
func (s *Scope) ResolveFunction(name string) (*ast.FunctionDefinition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.frames) - 1; i >= 0; i-- {
		if fn, ok := s.frames[i].functions[name]; ok {
			fn.used = true
			return fn.Definition, nil
		}
	}
	msg := "Function " + name + " not declared in any scope"
	if hint := suggest(name, s.visibleFunctions()); hint != "" {
		msg += "; did you mean " + hint + "?"
	}
	return nil, &Error{Kind: UndeclaredFunction, Message: msg}
}

// UnusedNames lists the innermost frame's names that were never read.
func (s *Scope) UnusedNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for name, decl := range s.top().names {
		if !decl.used {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// UnusedFunctions lists the innermost frame's functions never called.
func (s *Scope) UnusedFunctions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for name, fn := range s.top().functions {
		if !fn.used {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// Snapshot returns the visible bindings, innermost first, without marking
// them used.
func (s *Scope) Snapshot() map[string]Value {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]Value)
	for i := len(s.frames) - 1; i >= 0; i-- {
		for name, decl := range s.frames[i].names {
			if _, shadowed := out[name]; shadowed {
				continue
			}
			if arr, ok := decl.value.(*ArrayValue); ok {
				out[name] = arr.Clone()
				continue
			}
			out[name] = decl.value
		}
	}
	return out
}

// Keys returns the visible names in sorted order.
func (s *Scope) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := s.visibleNames()
	sort.Strings(keys)
	return keys
}

func (s *Scope) visibleNames() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, frame := range s.frames {
		for name := range frame.names {
			if _, ok := seen[name]; !ok {
				seen[name] = struct{}{}
				out = append(out, name)
			}
		}
	}
	return out
}

func (s *Scope) visibleFunctions() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, frame := range s.frames {
		for name := range frame.functions {
			if _, ok := seen[name]; !ok {
				seen[name] = struct{}{}
				out = append(out, name)
			}
		}
	}
	return out
}
