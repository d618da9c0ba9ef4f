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

package scope

import (
	"github.com/jsshaker/shaker/internal/value"
)

// CallScope records the bookkeeping spec.md section 3.5 requires for one
// active function invocation: enough to resume the caller's scope stack on
// return, and to collect the callee's return values for union'ing into the
// call's result.
type CallScope struct {
	ID       CallScopeID
	Callee   *value.Function
	IsCtor   bool

	// SavedVarScope is the variable scope chain active at the call site,
	// restored when the call returns; the callee executes against its own
	// closed-over lexical scope instead.
	SavedVarScope *VariableScope

	// FnCfDepth is the CF stack depth at which the callee's own Function CF
	// scope sits, used by return statements to compute exit_to's target.
	FnCfDepth int

	BodyVarScope VariableScopeID

	IsAsync     bool
	IsGenerator bool

	Returns []value.Entity
}

// NewCallScope opens bookkeeping for one invocation of callee.
func NewCallScope(id CallScopeID, callee *value.Function, isCtor bool, savedVarScope *VariableScope, fnCfDepth int, bodyVarScope VariableScopeID) *CallScope {
	return &CallScope{
		ID:            id,
		Callee:        callee,
		IsCtor:        isCtor,
		SavedVarScope: savedVarScope,
		FnCfDepth:     fnCfDepth,
		BodyVarScope:  bodyVarScope,
		IsAsync:       callee.FnKind == value.FnAsync || callee.FnKind == value.FnAsyncGenerator,
		IsGenerator:   callee.FnKind == value.FnGenerator || callee.FnKind == value.FnAsyncGenerator,
	}
}

// RecordReturn appends one return-statement value seen during this call;
// the caller (internal/analyzer) unions Returns together as the call's
// final result once the body finishes.
func (c *CallScope) RecordReturn(e value.Entity) {
	c.Returns = append(c.Returns, e)
}
