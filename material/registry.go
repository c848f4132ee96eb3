package material

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrUnknownMaterial is returned for a type name with no constructor.
	ErrUnknownMaterial = errors.New("unknown material type")
	// ErrDuplicate is returned when two constructors share a name.
	ErrDuplicate = errors.New("duplicate material type")
)

// Constructor creates a material from its initial uniforms.
type Constructor func(Uniforms) Material

// Registry maps material type names to constructors. It is immutable once
// built; pass it to whatever builds scenes.
type Registry struct {
	ctors map[string]Constructor
}

// RegistryBuilder collects constructors for a Registry.
type RegistryBuilder struct {
	ctors map[string]Constructor
	err   error
}

func NewRegistryBuilder() *RegistryBuilder {
	return &RegistryBuilder{ctors: make(map[string]Constructor)}
}

// Add registers ctor under name. The first error is reported by Build.
func (b *RegistryBuilder) Add(name string, ctor Constructor) *RegistryBuilder {
	if b.err != nil {
		return b
	}
	switch {
	case name == "":
		b.err = errors.New("material type name is empty")
	case ctor == nil:
		b.err = fmt.Errorf("material type %q has no constructor", name)
	default:
		if _, ok := b.ctors[name]; ok {
			b.err = fmt.Errorf("%w: %s", ErrDuplicate, name)
			return b
		}
		b.ctors[name] = ctor
	}
	return b
}

// Build freezes the collected constructors.
func (b *RegistryBuilder) Build() (*Registry, error) {
	if b.err != nil {
		return nil, b.err
	}
	ctors := make(map[string]Constructor, len(b.ctors))
	for k, v := range b.ctors {
		ctors[k] = v
	}
	return &Registry{ctors: ctors}, nil
}

// DefaultRegistry returns a registry holding the wave material.
func DefaultRegistry() *Registry {
	reg, err := NewRegistryBuilder().
		Add(WaveMaterialName, func(u Uniforms) Material { return NewWaveMaterial(u) }).
		Build()
	if err != nil {
		panic(err)
	}
	return reg
}

// New instantiates the material registered under name.
func (r *Registry) New(name string, u Uniforms) (Material, error) {
	ctor, ok := r.ctors[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMaterial, name)
	}
	return ctor(u), nil
}

// Names lists registered type names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.ctors))
	for n := range r.ctors {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
