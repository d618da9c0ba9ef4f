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

import (
	"fmt"

	"github.com/jsshaker/shaker/internal/ast"
	"github.com/jsshaker/shaker/internal/depgraph"
)

// fakeConfig is the smallest ConfigView satisfying the defaults most tests
// in this package don't care about.
type fakeConfig struct {
	maxSimpleStringLength int
	minSimpleNumberValue  float64
	maxSimpleNumberValue  float64
	unmatchedAsUndefined  bool
	preserveExceptions    bool
}

func (c fakeConfig) PreserveExceptions() bool                    { return c.preserveExceptions }
func (c fakeConfig) UnmatchedPrototypePropertyAsUndefined() bool { return c.unmatchedAsUndefined }
func (c fakeConfig) MaxSimpleStringLength() int                  { return c.maxSimpleStringLength }
func (c fakeConfig) MinSimpleNumberValue() float64               { return c.minSimpleNumberValue }
func (c fakeConfig) MaxSimpleNumberValue() float64               { return c.maxSimpleNumberValue }

func defaultFakeConfig() fakeConfig {
	return fakeConfig{
		maxSimpleStringLength: 64,
		minSimpleNumberValue:  -1000,
		maxSimpleNumberValue:  1000,
	}
}

// fakeCtx is a minimal Ctx: it records every dep handed to Consume, and
// routes factory allocation through a real Factory so tests can exercise
// genuine ID allocation.
type fakeCtx struct {
	graph      *depgraph.Graph
	factory    *Factory
	cfg        ConfigView
	consumed   []depgraph.Dep
	thrown     []string
}

func newFakeCtx() *fakeCtx {
	return &fakeCtx{
		graph:   depgraph.NewGraph(),
		factory: NewFactory(),
		cfg:     defaultFakeConfig(),
	}
}

func (c *fakeCtx) Graph() *depgraph.Graph { return c.graph }

func (c *fakeCtx) Consume(d depgraph.Dep) {
	c.consumed = append(c.consumed, d)
	c.graph.Consume(d)
}

func (c *fakeCtx) Factory() *Factory { return c.factory }

func (c *fakeCtx) ThrowBuiltinError(pos ast.Position, format string, args ...interface{}) Entity {
	c.thrown = append(c.thrown, fmt.Sprintf(format, args...))
	return Entity{Value: TheUnknown()}
}

func (c *fakeCtx) Config() ConfigView { return c.cfg }
