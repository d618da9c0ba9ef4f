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

// Package config implements spec.md section 6's TreeShakeConfig: the
// analyzer-wide flag set, its three presets (safest, recommended,
// smallest), and an optional on-disk project config file.
//
// Grounded on codenerd's internal/config/config.go for the
// yaml.v3-backed struct-with-defaults shape, generalized from codeNERD's
// single DefaultConfig to jsshaker's three named presets.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ManglingPreset selects how aggressively identifiers are renamed.
type ManglingPreset string

const (
	ManglingOff        ManglingPreset = ""
	ManglingConservative ManglingPreset = "conservative"
	ManglingAggressive   ManglingPreset = "aggressive"
)

// JSXMode selects how JSX expressions are interpreted.
type JSXMode string

const (
	JSXDisabled JSXMode = "disabled"
	JSXReact    JSXMode = "react"
)

// TreeShakeConfig is the full flag set of spec.md section 6. Zero value is
// NOT meaningful on its own; always start from a preset via Preset() or
// Default() and override fields afterward.
type TreeShakeConfig struct {
	UnmatchedPrototypePropertyAsUndefinedFlag bool `yaml:"unmatched_prototype_property_as_undefined"`
	PreserveExceptionsFlag                    bool `yaml:"preserve_exceptions"`
	PreserveWritablity                        bool `yaml:"preserve_writablity"`
	PreserveFunctionName                      bool `yaml:"preserve_function_name"`
	PreserveFunctionLength                    bool `yaml:"preserve_function_length"`
	MaxRecursionDepth                         int  `yaml:"max_recursion_depth"`
	MaxSimpleStringLengthFlag                 int  `yaml:"max_simple_string_length"`
	MinSimpleNumberValueFlag                  float64 `yaml:"min_simple_number_value"`
	MaxSimpleNumberValueFlag                  float64 `yaml:"max_simple_number_value"`
	RememberExhaustedVariables                bool `yaml:"remember_exhausted_variables"`
	EnableFnCache                             bool `yaml:"enable_fn_cache"`
	UnknownPropertyReadSideEffects             bool `yaml:"unknown_property_read_side_effects"`
	Mangling                                  ManglingPreset `yaml:"mangling"`
	JSX                                       JSXMode `yaml:"jsx"`
}

// value.ConfigView implementation: the value package only sees this narrow
// subset, via accessor methods rather than raw fields, so presets and the
// project config file can share one struct without value importing config.

func (c *TreeShakeConfig) PreserveExceptions() bool                   { return c.PreserveExceptionsFlag }
func (c *TreeShakeConfig) UnmatchedPrototypePropertyAsUndefined() bool { return c.UnmatchedPrototypePropertyAsUndefinedFlag }
func (c *TreeShakeConfig) MaxSimpleStringLength() int                 { return c.MaxSimpleStringLengthFlag }
func (c *TreeShakeConfig) MinSimpleNumberValue() float64              { return c.MinSimpleNumberValueFlag }
func (c *TreeShakeConfig) MaxSimpleNumberValue() float64              { return c.MaxSimpleNumberValueFlag }

// Safest never assumes an un-annotated program is well-behaved: it keeps
// exceptions, writability, and names observable so a consumer that relies
// on edge-case semantics still works after shaking.
func Safest() *TreeShakeConfig {
	return &TreeShakeConfig{
		UnmatchedPrototypePropertyAsUndefinedFlag: false,
		PreserveExceptionsFlag:                    true,
		PreserveWritablity:                        true,
		PreserveFunctionName:                      true,
		PreserveFunctionLength:                    true,
		MaxRecursionDepth:                         64,
		MaxSimpleStringLengthFlag:                 64,
		MinSimpleNumberValueFlag:                  -1 << 31,
		MaxSimpleNumberValueFlag:                  1 << 31,
		RememberExhaustedVariables:                false,
		EnableFnCache:                             false,
		UnknownPropertyReadSideEffects:             true,
		Mangling:                                  ManglingOff,
		JSX:                                        JSXDisabled,
	}
}

// Recommended is the default preset: assumes typical, non-pathological
// programs (no relying on function.name/length, no probing property
// writability), in exchange for smaller output.
func Recommended() *TreeShakeConfig {
	c := Safest()
	c.PreserveFunctionName = false
	c.PreserveFunctionLength = false
	c.PreserveWritablity = false
	c.EnableFnCache = true
	c.RememberExhaustedVariables = true
	c.Mangling = ManglingConservative
	return c
}

// Smallest trades soundness for size: treats unknown-prototype property
// reads as undefined, drops exceptions into Never, mangles aggressively.
func Smallest() *TreeShakeConfig {
	c := Recommended()
	c.UnmatchedPrototypePropertyAsUndefinedFlag = true
	c.PreserveExceptionsFlag = false
	c.UnknownPropertyReadSideEffects = false
	c.Mangling = ManglingAggressive
	return c
}

// Preset resolves a preset name from the CLI's -p/--preset flag.
func Preset(name string) (*TreeShakeConfig, error) {
	switch name {
	case "", "recommended":
		return Recommended(), nil
	case "safest":
		return Safest(), nil
	case "smallest":
		return Smallest(), nil
	default:
		return nil, fmt.Errorf("unknown preset %q", name)
	}
}

// LoadFile reads a YAML project config file and applies it on top of a
// preset (path resolution, defaulting, and an unmarshal-over-pointer shape
// mirrored from codeNERD's internal/config.Config).
func LoadFile(path string, base *TreeShakeConfig) (*TreeShakeConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := *base
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &cfg, nil
}
