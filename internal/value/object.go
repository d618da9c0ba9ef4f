// Copyright 2024 jsshaker Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package value

import "github.com/jsshaker/shaker/internal/depgraph"

// CfScopeID identifies the control-flow scope active when an object was
// created, used for write-barrier scoping (spec.md section 3.4). Defined
// here rather than in internal/scope so that both value and scope can refer
// to it without an import cycle; internal/scope's CfScope carries the
// canonical ID sequence.
type CfScopeID uint32

// ObjectID uniquely identifies an Object for the lifetime of one analysis.
type ObjectID uint32

// PrototypeKind distinguishes the four prototype shapes of spec.md 3.4.
type PrototypeKind uint8

const (
	PrototypeImplicitOrNull PrototypeKind = iota
	PrototypeBuiltin
	PrototypeCustom
	PrototypeUnknownDep
)

// Prototype describes an object's prototype chain head.
type Prototype struct {
	Kind     PrototypeKind
	Custom   *Object      // set when Kind == PrototypeCustom
	Builtin  string       // builtin name when Kind == PrototypeBuiltin
	UnkDep   depgraph.Dep // dep explaining the unknown prototype
}

// PropertyValueKind distinguishes the three shapes a PropertyValue may take.
type PropertyValueKind uint8

const (
	PVField PropertyValueKind = iota
	PVAccessor
	PVConsumed
)

// PropertyValue is one recorded write (or accessor definition, or consumed
// marker) for a property, per spec.md section 3.4.
type PropertyValue struct {
	Kind     PropertyValueKind
	Field    Entity
	ReadOnly bool
	Getter   Entity // valid when Kind == PVAccessor
	Setter   Entity // valid when Kind == PVAccessor
	HasGet   bool
	HasSet   bool
	LazyDep  *depgraph.Lazy // valid when Kind == PVConsumed
}

// Property is the per-key (or unknown-keyed, or rest) bookkeeping record.
type Property struct {
	Definite      bool
	Enumerable    bool
	Values        []PropertyValue
	NonExistent   depgraph.Lazy
	KeyEntity     Entity
	MangleAtom    MangleAtomID
}

// Object is the heavyweight object variant of spec.md section 3.4.
type Object struct {
	Base

	ID          ObjectID
	CreatedIn   CfScopeID
	Proto       Prototype
	MangleGroup uint32 // 0 = none; shared down a custom-prototype chain
	HasMangle   bool

	Keyed        map[PropertyKey]*Property
	UnknownKeyed *Property
	Rest         *Property

	consumed bool
}

// NewObject allocates an empty object created in the given CF scope.
func NewObject(id ObjectID, createdIn CfScopeID) *Object {
	return &Object{
		ID:        id,
		CreatedIn: createdIn,
		Keyed:     make(map[PropertyKey]*Property),
	}
}

func (o *Object) Kind() Kind { return KindObject }

// Consume marks the object (and everything reachable from it) as externally
// observable. Once consumed, every structured property table is discarded
// and subsequent operations funnel to the escaped-object degenerate path,
// per spec.md's object invariants.
func (o *Object) Consume(g *depgraph.Graph) {
	if o.consumed {
		return
	}
	o.consumed = true
	for _, p := range o.Keyed {
		consumeProperty(g, p)
	}
	if o.UnknownKeyed != nil {
		consumeProperty(g, o.UnknownKeyed)
	}
	if o.Rest != nil {
		consumeProperty(g, o.Rest)
	}
	o.Keyed = nil
	o.UnknownKeyed = nil
	o.Rest = nil
}

func consumeProperty(g *depgraph.Graph, p *Property) {
	for _, v := range p.Values {
		switch v.Kind {
		case PVField:
			v.Field.Consume(g)
		case PVAccessor:
			if v.HasGet {
				v.Getter.Consume(g)
			}
			if v.HasSet {
				v.Setter.Consume(g)
			}
		case PVConsumed:
			g.Consume(depgraph.OfLazy(v.LazyDep))
		}
	}
	g.Consume(depgraph.OfLazy(&p.NonExistent))
	p.KeyEntity.Consume(g)
}

// SetPrototypeBuiltin disables mangling for this object, per spec.md's
// object invariants.
func (o *Object) SetPrototypeBuiltin(name string) {
	o.Proto = Prototype{Kind: PrototypeBuiltin, Builtin: name}
	o.HasMangle = false
}

// SetPrototypeUnknown disables mangling, mirroring SetPrototypeBuiltin.
func (o *Object) SetPrototypeUnknown(dep depgraph.Dep) {
	o.Proto = Prototype{Kind: PrototypeUnknownDep, UnkDep: dep}
	o.HasMangle = false
}

// SetPrototypeCustom inherits the parent's mangling group, per spec.md:
// "Mangling groups are shared down a custom-prototype chain."
func (o *Object) SetPrototypeCustom(parent *Object) {
	o.Proto = Prototype{Kind: PrototypeCustom, Custom: parent}
	if parent.HasMangle {
		o.MangleGroup = parent.MangleGroup
		o.HasMangle = true
	}
}

func (o *Object) findProperty(key PropertyKey) *Property {
	if o.consumed {
		return nil
	}
	if p, ok := o.Keyed[key]; ok {
		return p
	}
	return nil
}

// GetProperty implements spec.md's GetProperty contract: a literal key
// takes the precise path (union across matching properties plus prototype
// chain and rest); a non-literal key (key.NonLiteral) takes the
// conservative path in getPropertyUnknownKey instead.
func (o *Object) GetProperty(ctx Ctx, dep depgraph.Dep, key PropertyKey) Entity {
	if o.consumed {
		ctx.Consume(dep)
		return ctx.Factory().ComputedUnknown(dep)
	}
	if key.NonLiteral {
		return o.getPropertyUnknownKey(ctx, dep)
	}
	var found []Entity
	if p := o.findProperty(key); p != nil {
		for _, v := range p.Values {
			found = append(found, propertyValueAsEntity(ctx, dep, v))
		}
	} else if o.UnknownKeyed != nil {
		for _, v := range o.UnknownKeyed.Values {
			found = append(found, propertyValueAsEntity(ctx, dep, v))
		}
	}
	switch o.Proto.Kind {
	case PrototypeCustom:
		found = append(found, o.Proto.Custom.GetProperty(ctx, dep, key))
	case PrototypeUnknownDep:
		ctx.Consume(o.Proto.UnkDep)
		found = append(found, ctx.Factory().ComputedUnknown(dep))
	case PrototypeBuiltin:
		if ctx.Config().UnmatchedPrototypePropertyAsUndefined() {
			found = append(found, Entity{Value: &Literal{LKind: LitUndefined}, Dep: dep})
		} else {
			found = append(found, ctx.Factory().ComputedUnknown(dep))
		}
	}
	if o.Rest != nil {
		for _, v := range o.Rest.Values {
			found = append(found, propertyValueAsEntity(ctx, dep, v))
		}
	}
	if len(found) == 0 {
		return Entity{Value: &Literal{LKind: LitUndefined}, Dep: dep}
	}
	return ctx.Factory().UnionOf(dep, found...)
}

// getPropertyUnknownKey implements the "Non-literal key" half of spec.md's
// GetProperty contract: the access might hit any property currently
// recorded, so every one of them (and the rest/prototype chain) must be
// consumed - value and mangling alike - and the result widened to Unknown,
// rather than silently missing whichever key the non-literal access
// actually lands on at runtime.
func (o *Object) getPropertyUnknownKey(ctx Ctx, dep depgraph.Dep) Entity {
	ctx.Consume(dep)
	g := ctx.Graph()
	for _, p := range o.Keyed {
		consumeProperty(g, p)
	}
	if o.UnknownKeyed != nil {
		consumeProperty(g, o.UnknownKeyed)
	}
	if o.Rest != nil {
		consumeProperty(g, o.Rest)
	}
	switch o.Proto.Kind {
	case PrototypeCustom:
		o.Proto.Custom.Consume(g)
	case PrototypeUnknownDep:
		ctx.Consume(o.Proto.UnkDep)
	}
	return ctx.Factory().ComputedUnknown(dep)
}

func propertyValueAsEntity(ctx Ctx, dep depgraph.Dep, v PropertyValue) Entity {
	switch v.Kind {
	case PVField:
		return v.Field
	case PVAccessor:
		if v.HasGet {
			return v.Getter.Value.Call(ctx, dep, Entity{}, nil)
		}
		return Entity{Value: &Literal{LKind: LitUndefined}, Dep: dep}
	default:
		return ctx.Factory().ComputedUnknown(dep)
	}
}

// SetProperty follows spec.md's exhaustive-write and setter-dispatch rules
// at the analyzer level (internal/analyzer glues exhaustive tracking in);
// at the object level it simply appends a new recorded write. A non-literal
// key (key.NonLiteral) cannot be resolved to one of o.Keyed's entries, so it
// is instead folded into the shared UnknownKeyed property.
func (o *Object) SetProperty(ctx Ctx, dep depgraph.Dep, key PropertyKey, val Entity) {
	if o.consumed {
		ctx.Consume(dep)
		ctx.Consume(depgraph.OfConsumer(val))
		return
	}
	if key.NonLiteral {
		o.setPropertyUnknownKey(ctx, dep, val)
		return
	}
	p, ok := o.Keyed[key]
	if !ok {
		p = &Property{Definite: true, Enumerable: true, KeyEntity: Entity{Value: keyLiteral(key), Dep: dep}}
		o.Keyed[key] = p
		if o.HasMangle {
			// Registering a key under a mangling group is handled by the
			// analyzer, which has access to the Mangler; it calls
			// RegisterMangleAtom after this method returns.
		}
	}
	for _, v := range p.Values {
		if v.Kind == PVAccessor && v.HasSet {
			v.Setter.Value.Call(ctx, dep, Entity{Value: o}, []Entity{val})
			return
		}
	}
	p.Values = append(p.Values, PropertyValue{Kind: PVField, Field: val})
}

// setPropertyUnknownKey records a write whose key couldn't be resolved to a
// literal under the shared UnknownKeyed property (spec.md section 3.4's
// "Unknown-keyed" bucket). dep (which the caller folds the key expression's
// own Dep into) is consumed immediately, since - unlike a literal key,
// whose evaluation has nothing left to observe once the literal is known -
// a non-literal key's computation may itself be arbitrary, observable code
// that must not be eliminated as dead.
func (o *Object) setPropertyUnknownKey(ctx Ctx, dep depgraph.Dep, val Entity) {
	if o.UnknownKeyed == nil {
		o.UnknownKeyed = &Property{Enumerable: true}
	}
	o.UnknownKeyed.Values = append(o.UnknownKeyed.Values, PropertyValue{Kind: PVField, Field: val})
	ctx.Consume(dep)
}

func keyLiteral(key PropertyKey) Value {
	if key.IsSymbol {
		return &Literal{LKind: LitSymbol, SymbolID: key.Sym}
	}
	return &Literal{LKind: LitString, Str: key.Str}
}

// DeleteProperty flips definite false and records the reason, per spec.md.
func (o *Object) DeleteProperty(ctx Ctx, dep depgraph.Dep, key PropertyKey) {
	if o.consumed {
		ctx.Consume(dep)
		return
	}
	if p, ok := o.Keyed[key]; ok {
		p.Definite = false
		p.NonExistent.Push(dep)
	}
}

// EnumerateProperties returns the known key/value pairs plus an optional
// fallback for unknown-keyed writes, per spec.md.
func (o *Object) EnumerateProperties(ctx Ctx, dep depgraph.Dep) EnumerateResult {
	if o.consumed {
		ctx.Consume(dep)
		u := ctx.Factory().ComputedUnknown(dep)
		return EnumerateResult{Unknown: &u, Dep: dep}
	}
	known := make(map[string]EnumerateEntry, len(o.Keyed))
	for k, p := range o.Keyed {
		if !p.Enumerable || k.IsSymbol {
			continue
		}
		var val Entity
		for _, v := range p.Values {
			val = propertyValueAsEntity(ctx, dep, v)
		}
		known[k.Str] = EnumerateEntry{Definite: p.Definite, Key: p.KeyEntity, Val: val}
	}
	var unknown *Entity
	if o.UnknownKeyed != nil {
		u := ctx.Factory().ComputedUnknown(dep)
		unknown = &u
	}
	return EnumerateResult{Known: known, Unknown: unknown, Dep: dep}
}

func (o *Object) TestTypeof() TypeofMask { return TypeofObject }
func (o *Object) TestTruthy() Tri        { return TriTrue }
func (o *Object) TestNullish() Tri       { return TriFalse }

func (o *Object) AsCacheable() (Cacheable, bool) { return Cacheable{}, false }
