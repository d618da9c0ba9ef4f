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

// Package vfs implements the virtual filesystem interface of spec.md
// section 6: resolve_module/read_file, with real-filesystem, single-file,
// and multi-file in-memory implementations, plus pure POSIX path
// normalization.
//
// OSFS is a from-scratch os/filepath implementation rather than an import
// of cuelang.org/go's own internal/filesystem/osfs.go: that file assumes
// io/fs semantics this package's narrower ResolveModule/ReadFile contract
// doesn't need. Module-specifier resolution follows the normalize_path
// rules spec.md's source repo describes.
package vfs

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// VFS is the minimal filesystem capability the module loader needs.
type VFS interface {
	// ResolveModule resolves specifier relative to importerPath, returning
	// the normalized absolute path of the target module, or false if it
	// cannot be resolved (a missing file, an unresolvable bare specifier).
	ResolveModule(importerPath, specifier string) (string, bool)
	// ReadFile returns the source text at path, or an error if it cannot
	// be read (a fatal condition per spec.md's error handling design).
	ReadFile(path string) (string, error)
}

// NormalizePath implements spec.md's pure POSIX normalization: iterate
// components, drop ".", pop on ".." unless at root or after another "..",
// stable ordering. Always returns a slash-separated path.
func NormalizePath(p string) string {
	p = filepath.ToSlash(p)
	absolute := strings.HasPrefix(p, "/")
	parts := strings.Split(p, "/")
	var out []string
	for _, part := range parts {
		switch part {
		case "", ".":
			continue
		case "..":
			if len(out) > 0 && out[len(out)-1] != ".." {
				out = out[:len(out)-1]
			} else if !absolute {
				out = append(out, "..")
			}
		default:
			out = append(out, part)
		}
	}
	joined := strings.Join(out, "/")
	if absolute {
		return "/" + joined
	}
	if joined == "" {
		return "."
	}
	return joined
}

func resolveRelative(importerPath, specifier string) string {
	if strings.HasPrefix(specifier, "/") {
		return NormalizePath(specifier)
	}
	dir := path.Dir(filepath.ToSlash(importerPath))
	return NormalizePath(dir + "/" + specifier)
}

// candidateExtensions are tried in order when a specifier has no
// extension, mirroring standard ESM bare/relative resolution heuristics.
var candidateExtensions = []string{"", ".js", ".jsx", ".mjs", "/index.js", "/index.jsx"}

// OSFS resolves modules against the real filesystem, rooted at CWD for
// relative entry specifiers.
type OSFS struct {
	CWD string
}

func (o *OSFS) absPath(p string) string {
	p = NormalizePath(p)
	if !filepath.IsAbs(p) {
		p = NormalizePath(filepath.ToSlash(o.CWD) + "/" + p)
	}
	return p
}

func (o *OSFS) ResolveModule(importerPath, specifier string) (string, bool) {
	if importerPath == "" {
		importerPath = o.absPath(specifier)
		if _, err := os.Stat(filepath.FromSlash(importerPath)); err == nil {
			return importerPath, true
		}
	}
	base := resolveRelative(importerPath, specifier)
	for _, ext := range candidateExtensions {
		candidate := base + ext
		if fi, err := os.Stat(filepath.FromSlash(candidate)); err == nil && !fi.IsDir() {
			return candidate, true
		}
	}
	return "", false
}

func (o *OSFS) ReadFile(p string) (string, error) {
	data, err := os.ReadFile(filepath.FromSlash(p))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", p, err)
	}
	return string(data), nil
}

// SingleFile is the single-file in-memory VFS of spec.md: the entry path
// is always the literal string "/entry.js" and it has no resolvable
// imports (every specifier fails to resolve).
type SingleFile struct {
	Source string
}

func (s *SingleFile) ResolveModule(importerPath, specifier string) (string, bool) {
	if importerPath == "" {
		return "/entry.js", true
	}
	return "", false
}

func (s *SingleFile) ReadFile(p string) (string, error) {
	if p != "/entry.js" {
		return "", fmt.Errorf("no such file: %s", p)
	}
	return s.Source, nil
}

// MultiFile is the map-backed in-memory VFS of spec.md: every path is
// pre-populated, and module resolution is pure path normalization plus a
// membership check against Files.
type MultiFile struct {
	Entry string
	Files map[string]string
}

func (m *MultiFile) ResolveModule(importerPath, specifier string) (string, bool) {
	if importerPath == "" {
		p := NormalizePath(m.Entry)
		if _, ok := m.Files[p]; ok {
			return p, true
		}
		return "", false
	}
	base := resolveRelative(importerPath, specifier)
	for _, ext := range candidateExtensions {
		candidate := base + ext
		if _, ok := m.Files[candidate]; ok {
			return candidate, true
		}
	}
	return "", false
}

func (m *MultiFile) ReadFile(p string) (string, error) {
	src, ok := m.Files[p]
	if !ok {
		return "", fmt.Errorf("no such file: %s", p)
	}
	return src, nil
}
