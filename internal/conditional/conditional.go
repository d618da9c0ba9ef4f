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

// Package conditional implements the branch tracker of spec.md section
// 4.4: recording, for every `if`/ternary/logical-short-circuit/optional-
// chain expression, which branches were reachable and whether either had
// observable side effects, so that a later deoptimized call site can force
// both branches conservatively, and so the transformer knows whether to
// emit one arm, both arms, or the test alone.
//
// Grounded on cuelang.org/go/internal/core/adt's sched.go condition/signal
// bitset machinery.
package conditional

import (
	"github.com/jsshaker/shaker/internal/ast"
	"github.com/jsshaker/shaker/internal/depgraph"
	"github.com/jsshaker/shaker/internal/value"
)

// BranchData is recorded once per branch execution at a given AST id: which
// arm ran, the test entity, whether the arm was impure, and a Consumed flag.
// Per-node reachability lives in NodeData instead.
type BranchData struct {
	IsTrueBranch bool
	TestEntity   value.Entity
	Impure       bool // the branch performed an observable side effect
	Consumed     bool
}

// NodeData accumulates across every execution of one conditional AST node:
// whether the true/false arm was ever reachable, whether either was
// impure, and the test entities seen (consumed once both arms are known
// reachable).
type NodeData struct {
	MaybeTrue    bool
	MaybeFalse   bool
	ImpureTrue   bool
	ImpureFalse  bool
	TestsToConsume []value.Entity
}

// CallSiteID identifies the enclosing call scope a branch executed within,
// grouping branches so a deoptimized call site can force every branch it
// contains.
type CallSiteID uint32

// Tracker is the per-analysis branch registry.
type Tracker struct {
	nodeData       map[ast.NodeId]*NodeData
	callsiteToBranches map[CallSiteID][]branchRef
	deoptimized    map[CallSiteID]bool
}

type branchRef struct {
	node ast.NodeId
	data BranchData
}

// NewTracker creates an empty conditional-branch tracker, one per analysis.
func NewTracker() *Tracker {
	return &Tracker{
		nodeData:           make(map[ast.NodeId]*NodeData),
		callsiteToBranches: make(map[CallSiteID][]branchRef),
		deoptimized:        make(map[CallSiteID]bool),
	}
}

// RecordBranch registers one execution of a branch at node, grouped under
// callsite (the enclosing call scope id, or 0 at module top level).
func (t *Tracker) RecordBranch(node ast.NodeId, callsite CallSiteID, isTrue bool, test value.Entity, impure bool) {
	nd, ok := t.nodeData[node]
	if !ok {
		nd = &NodeData{}
		t.nodeData[node] = nd
	}
	if isTrue {
		nd.MaybeTrue = true
		if impure {
			nd.ImpureTrue = true
		}
	} else {
		nd.MaybeFalse = true
		if impure {
			nd.ImpureFalse = true
		}
	}
	nd.TestsToConsume = append(nd.TestsToConsume, test)
	t.callsiteToBranches[callsite] = append(t.callsiteToBranches[callsite], branchRef{
		node: node,
		data: BranchData{IsTrueBranch: isTrue, TestEntity: test, Impure: impure},
	})
}

// Deoptimize marks callsite as conservatively assumed to run every branch
// it contains, because the call target could no longer be resolved
// precisely (e.g. it flowed into an Unknown callee).
func (t *Tracker) Deoptimize(callsite CallSiteID) {
	t.deoptimized[callsite] = true
}

// ResolveDeoptimized implements the first half of the post-analysis pass:
// for every deoptimized call site, it marks the opposite arm of each
// recorded branch reachable when that opposite arm was impure, so both
// arms count as reachable. It consumes nothing itself (g is unused);
// ConsumeSettledTests then consumes the tests of every node whose arms
// are both reachable.
func (t *Tracker) ResolveDeoptimized(g *depgraph.Graph) {
	for callsite, branches := range t.callsiteToBranches {
		if !t.deoptimized[callsite] {
			continue
		}
		for _, b := range branches {
			nd := t.nodeData[b.node]
			if nd == nil {
				continue
			}
			if b.data.IsTrueBranch && nd.ImpureFalse {
				nd.MaybeFalse = true
			}
			if !b.data.IsTrueBranch && nd.ImpureTrue {
				nd.MaybeTrue = true
			}
		}
	}
}

// ConsumeSettledTests implements the second half of the post-analysis
// pass: for any node where both arms are now known reachable, consume its
// accumulated test entities (so the condition expression itself is live
// and will be emitted).
func (t *Tracker) ConsumeSettledTests(g *depgraph.Graph) {
	for _, nd := range t.nodeData {
		if nd.MaybeTrue && nd.MaybeFalse {
			for _, test := range nd.TestsToConsume {
				test.Consume(g)
			}
			nd.TestsToConsume = nil
		}
	}
}

// Result is what internal/transform consults to decide how to emit a
// conditional node.
type Result struct {
	BothReachable bool
	MaybeTrue     bool
	MaybeFalse    bool
}

// GetConditionalResult implements get_conditional_result(node).
func (t *Tracker) GetConditionalResult(node ast.NodeId) Result {
	nd, ok := t.nodeData[node]
	if !ok {
		return Result{}
	}
	return Result{BothReachable: nd.MaybeTrue && nd.MaybeFalse, MaybeTrue: nd.MaybeTrue, MaybeFalse: nd.MaybeFalse}
}
