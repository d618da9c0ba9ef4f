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

// Package mangle implements the mangling constraint solver of spec.md
// section 4.6: identity groups (atoms that must resolve to the same name)
// and uniqueness groups (atoms that must resolve to distinct names), with
// a union-find-style merge algorithm and deferred name resolution.
//
// Grounded directly on
// original_source/crates/jsshaker/src/mangling/{constraint.rs,mangler.rs}
// (the group-merge algorithm is carried over case-for-case, re-expressed
// in idiomatic Go) and on cuelang.org/go/internal/core/adt's closed.go
// leaf-to-root tree-merging discipline for the structurally analogous
// closedness groups.
package mangle

import "github.com/jsshaker/shaker/internal/value"

// IdentityGroupID and UniquenessGroupID are dense indices into a Mangler's
// group tables.
type IdentityGroupID uint32
type UniquenessGroupID uint32

type atomStateKind uint8

const (
	stateConstrained atomStateKind = iota
	stateConstant
	stateNonMangable
	statePreserved
	stateBuiltin
)

type atomState struct {
	kind       atomStateKind
	constant   string
	identity   *IdentityGroupID // nil = not yet in an identity group
	uniqueness map[UniquenessGroupID]bool
}

type identityGroup struct {
	atoms    []value.MangleAtomID
	resolved *string
}

type uniquenessGroup struct {
	atoms     []value.MangleAtomID
	used      int
	constants map[string]bool
}

// Mangler is the whole-analysis mangling state machine.
type Mangler struct {
	Enabled bool

	states map[value.MangleAtomID]*atomState
	nextID uint32

	identityGroups   []*identityGroup
	uniquenessGroups []*uniquenessGroup

	// constantNodes memoizes "use_constant_node": the first string literal
	// value assigned to a given DepAtom (e.g. a mangled import specifier
	// that must read the same name everywhere it's referenced), per
	// spec.md's SUPPLEMENTED FEATURES list.
	constantNodes map[uint64]value.MangleAtomID
}

// New creates a Mangler; enabled selects whether Resolve ever returns a
// mangled name or always defers to source text (enabled=false makes every
// atom effectively NonMangable from the caller's point of view).
func New(enabled bool) *Mangler {
	return &Mangler{
		Enabled:       enabled,
		states:        make(map[value.MangleAtomID]*atomState),
		constantNodes: make(map[uint64]value.MangleAtomID),
	}
}

func (m *Mangler) alloc(s *atomState) value.MangleAtomID {
	m.nextID++
	id := value.MangleAtomID(m.nextID)
	m.states[id] = s
	return id
}

// NewAtom allocates a fresh, unconstrained mangle atom.
func (m *Mangler) NewAtom() value.MangleAtomID {
	return m.alloc(&atomState{kind: stateConstrained, uniqueness: make(map[UniquenessGroupID]bool)})
}

// NewConstantAtom allocates an atom whose resolved name is fixed to str
// (e.g. a property key that must be preserved verbatim, like a DOM API
// name).
func (m *Mangler) NewConstantAtom(str string) value.MangleAtomID {
	return m.alloc(&atomState{kind: stateConstant, constant: str})
}

// NewPreservedAtom allocates an atom that is never mangled and resolves to
// no name override (the emitter keeps the original source text).
func (m *Mangler) NewPreservedAtom() value.MangleAtomID {
	return m.alloc(&atomState{kind: statePreserved})
}

// NewBuiltinAtom allocates an atom representing a builtin/well-known
// string; equality against a builtin atom pulls the other side into the
// builtin state too (builtins are "long enough to not conflict"), mirroring
// the SUPPLEMENTED FEATURES entry for AtomState::Builtin.
func (m *Mangler) NewBuiltinAtom() value.MangleAtomID {
	return m.alloc(&atomState{kind: stateBuiltin})
}

// UseConstantNode memoizes "the string literal value observed at this
// DepAtom", returning the (possibly newly allocated) atom backing it. A
// second call with the same node id returns the same atom, promoting it
// out of NonMangable if it had been marked so by a prior (different)
// caller, per mangler.rs's use_constant_node.
func (m *Mangler) UseConstantNode(node uint64, str string) value.MangleAtomID {
	if atom, ok := m.constantNodes[node]; ok {
		if m.states[atom].kind == stateNonMangable {
			m.states[atom] = &atomState{kind: stateConstant, constant: str}
		}
		return atom
	}
	atom := m.NewAtom()
	m.constantNodes[node] = atom
	return atom
}

// MarkEquality implements constraint.rs's mark_equality: records that a and
// b must (eq=true) or must not (eq=false) resolve to the same name,
// merging identity/uniqueness groups as needed.
func (m *Mangler) MarkEquality(eq bool, a, b value.MangleAtomID) {
	if a == b || a == value.NoMangleAtom || b == value.NoMangleAtom {
		return
	}
	sa, sb := m.states[a], m.states[b]
	if sa == nil || sb == nil {
		return
	}
	if sa.kind == stateBuiltin && sb.kind == stateBuiltin {
		return
	}
	if sa.kind == stateBuiltin || sb.kind == stateBuiltin {
		if eq {
			if sa.kind == stateBuiltin {
				m.states[b] = &atomState{kind: stateBuiltin}
			} else {
				m.states[a] = &atomState{kind: stateBuiltin}
			}
		}
		return
	}
	if sa.kind == stateConstant && sb.kind == stateConstant {
		return // both already fixed; nothing further to solve
	}
	if sa.kind == stateConstant {
		m.markAtomConstant(eq, b, sa.constant)
		return
	}
	if sb.kind == stateConstant {
		m.markAtomConstant(eq, a, sb.constant)
		return
	}
	if sa.kind != stateConstrained || sb.kind != stateConstrained {
		return
	}
	if eq {
		m.mergeIdentity(a, sa, b, sb)
	} else {
		m.addUniquenessPair(a, sa, b, sb)
	}
}

func (m *Mangler) mergeIdentity(a value.MangleAtomID, sa *atomState, b value.MangleAtomID, sb *atomState) {
	switch {
	case sa.identity != nil && sb.identity != nil:
		if *sa.identity == *sb.identity {
			return
		}
		ga, gb := m.identityGroups[*sa.identity], m.identityGroups[*sb.identity]
		from, to, toIdx := ga, gb, *sb.identity
		if len(ga.atoms) > len(gb.atoms) {
			from, to, toIdx = gb, ga, *sa.identity
		}
		for _, atom := range from.atoms {
			to.atoms = append(to.atoms, atom)
			m.states[atom].identity = &toIdx
		}
		from.atoms = nil
	case sa.identity != nil:
		sb.identity = sa.identity
		g := m.identityGroups[*sa.identity]
		g.atoms = append(g.atoms, b)
	case sb.identity != nil:
		sa.identity = sb.identity
		g := m.identityGroups[*sb.identity]
		g.atoms = append(g.atoms, a)
	default:
		m.identityGroups = append(m.identityGroups, &identityGroup{atoms: []value.MangleAtomID{a, b}})
		idx := IdentityGroupID(len(m.identityGroups) - 1)
		sa.identity = &idx
		sb.identity = &idx
	}
}

func (m *Mangler) addUniquenessPair(a value.MangleAtomID, sa *atomState, b value.MangleAtomID, sb *atomState) {
	m.uniquenessGroups = append(m.uniquenessGroups, &uniquenessGroup{atoms: []value.MangleAtomID{a, b}})
	idx := UniquenessGroupID(len(m.uniquenessGroups) - 1)
	sa.uniqueness[idx] = true
	sb.uniqueness[idx] = true
}

// NewUniquenessGroup allocates an empty uniqueness group, for a caller (an
// object literal's set of property keys, per spec.md section 3.4) that
// wants to register an arbitrary number of atoms as mutually distinct
// without first needing a pair to seed mergeIdentity/addUniquenessPair's
// pairwise construction.
func (m *Mangler) NewUniquenessGroup() UniquenessGroupID {
	m.uniquenessGroups = append(m.uniquenessGroups, &uniquenessGroup{})
	return UniquenessGroupID(len(m.uniquenessGroups) - 1)
}

// AddToUniquenessGroup implements add_to_uniqueness_group: registers atom
// as a member of group (used when an object's property-key set is itself
// a uniqueness group, per spec.md section 3.4).
func (m *Mangler) AddToUniquenessGroup(group UniquenessGroupID, atom value.MangleAtomID) {
	s := m.states[atom]
	if s == nil {
		return
	}
	switch s.kind {
	case stateConstrained:
		s.uniqueness[group] = true
		m.uniquenessGroups[group].atoms = append(m.uniquenessGroups[group].atoms, atom)
	case stateConstant:
		g := m.uniquenessGroups[group]
		if g.constants == nil {
			g.constants = make(map[string]bool)
		}
		g.constants[s.constant] = true
	case stateBuiltin:
		// builtins never conflict with mangled short names; nothing to do.
	}
}

// MarkNonMangable implements mark_atom_non_mangable: freezes atom (and
// everything in its identity group) to its current constant/source text.
func (m *Mangler) MarkNonMangable(atom value.MangleAtomID) {
	s := m.states[atom]
	if s == nil || s.kind != stateConstrained {
		return
	}
	group := s.identity
	m.states[atom] = &atomState{kind: stateNonMangable}
	if group != nil {
		g := m.identityGroups[*group]
		for _, a := range g.atoms {
			if a != atom {
				m.states[a] = &atomState{kind: stateNonMangable}
			}
		}
		g.atoms = nil
	}
}

func (m *Mangler) markAtomConstant(eq bool, atom value.MangleAtomID, constant string) {
	s := m.states[atom]
	if s == nil || s.kind == stateBuiltin {
		return
	}
	if eq {
		group := s.identity
		m.states[atom] = &atomState{kind: stateConstant, constant: constant}
		if group != nil {
			g := m.identityGroups[*group]
			for _, a := range g.atoms {
				m.states[a] = &atomState{kind: stateConstant, constant: constant}
			}
			g.atoms = nil
		}
	} else if s.kind == stateConstrained {
		// record as an excluded name within every uniqueness group atom
		// belongs to, so resolution skips over it.
		for gid := range s.uniqueness {
			g := m.uniquenessGroups[gid]
			if g.constants == nil {
				g.constants = make(map[string]bool)
			}
			g.constants[constant] = true
		}
	}
}

// Resolve returns the final mangled name for atom, or ("", false) if atom
// is not subject to mangling (Preserved/NonMangable) or the mangler is
// disabled. The result is memoized onto the atom's state.
func (m *Mangler) Resolve(atom value.MangleAtomID) (string, bool) {
	if !m.Enabled || atom == value.NoMangleAtom {
		return "", false
	}
	s := m.states[atom]
	if s == nil {
		return "", false
	}
	switch s.kind {
	case stateConstant:
		return s.constant, true
	case statePreserved, stateNonMangable, stateBuiltin:
		return "", false
	}
	var resolved string
	if s.identity != nil {
		resolved = m.resolveIdentityGroup(*s.identity)
	} else if len(s.uniqueness) == 0 {
		resolved = "_"
	} else {
		n := 0
		for gid := range s.uniqueness {
			if m.uniquenessGroups[gid].used > n {
				n = m.uniquenessGroups[gid].used
			}
		}
		name := m.nextFreeName(n, s.uniqueness)
		for gid := range s.uniqueness {
			m.uniquenessGroups[gid].used = n + 1
		}
		resolved = name
	}
	m.states[atom] = &atomState{kind: stateConstant, constant: resolved}
	return resolved, true
}

func (m *Mangler) nextFreeName(start int, groups map[UniquenessGroupID]bool) string {
	for n := start; ; n++ {
		name := GetMangledName(n)
		clash := false
		for gid := range groups {
			if m.uniquenessGroups[gid].constants[name] {
				clash = true
				break
			}
		}
		if !clash {
			return name
		}
	}
}

func (m *Mangler) resolveIdentityGroup(id IdentityGroupID) string {
	g := m.identityGroups[id]
	if g.resolved != nil {
		return *g.resolved
	}
	n := 0
	related := map[UniquenessGroupID]bool{}
	for _, atom := range g.atoms {
		s := m.states[atom]
		switch s.kind {
		case stateConstrained:
			for gid := range s.uniqueness {
				related[gid] = true
				if m.uniquenessGroups[gid].used > n {
					n = m.uniquenessGroups[gid].used
				}
			}
		case stateConstant:
			g.resolved = &s.constant
			return s.constant
		}
	}
	name := m.nextFreeName(n, related)
	for gid := range related {
		m.uniquenessGroups[gid].used = n + 1
	}
	g.resolved = &name
	return name
}
