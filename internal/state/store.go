// Package state holds the switcher's nested keyed state: mix-effect block
// program/preview sources, transition style and position, the input
// catalog, video mode, and product name. Paths are dot-separated strings
// addressing a tree of string-valued leaves, matching the shape produced
// by the descriptor loader.
package state

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Store is a process-wide nested keyed map. It is mutated only from the
// single-threaded server loop; no internal locking is performed.
type Store struct {
	root map[string]any
}

// New returns an empty store.
func New() *Store {
	return &Store{root: map[string]any{}}
}

func splitPath(path string) []string {
	return strings.Split(path, ".")
}

// Get returns the string leaf at path, if present.
func (s *Store) Get(path string) (string, bool) {
	node, ok := s.node(splitPath(path), false)
	if !ok {
		return "", false
	}
	str, ok := node.(string)
	return str, ok
}

// GetInt parses the string leaf at path as a decimal integer.
func (s *Store) GetInt(path string) (int, bool) {
	str, ok := s.Get(path)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(str)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Set writes a string leaf at path, creating intermediate maps as needed.
func (s *Store) Set(path string, value string) {
	s.setLeaf(splitPath(path), value)
}

// SetInt writes the decimal string form of value at path.
func (s *Store) SetInt(path string, value int) {
	s.Set(path, strconv.Itoa(value))
}

// Keys returns the sorted child keys under path (used to enumerate an
// indexed map such as Settings.Inputs).
func (s *Store) Keys(path string) []string {
	node, ok := s.node(splitPath(path), false)
	if !ok {
		return nil
	}
	m, ok := node.(map[string]any)
	if !ok {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (s *Store) node(parts []string, create bool) (any, bool) {
	var cur map[string]any = s.root
	for i, part := range parts {
		last := i == len(parts)-1
		child, ok := cur[part]
		if !ok {
			if !create {
				return nil, false
			}
			newMap := map[string]any{}
			cur[part] = newMap
			child = newMap
		}
		if last {
			return child, true
		}
		m, ok := child.(map[string]any)
		if !ok {
			if !create {
				return nil, false
			}
			m = map[string]any{}
			cur[part] = m
		}
		cur = m
	}
	return cur, true
}

func (s *Store) setLeaf(parts []string, value string) {
	cur := s.root
	for i, part := range parts {
		if i == len(parts)-1 {
			cur[part] = value
			return
		}
		child, ok := cur[part]
		if !ok {
			m := map[string]any{}
			cur[part] = m
			cur = m
			continue
		}
		m, ok := child.(map[string]any)
		if !ok {
			m = map[string]any{}
			cur[part] = m
		}
		cur = m
	}
}

// SetMap grafts an already-built subtree at path, used by the descriptor
// loader to install whole branches at once.
func (s *Store) SetMap(path string, value map[string]any) {
	parts := splitPath(path)
	if len(parts) == 1 {
		s.root[parts[0]] = value
		return
	}
	s.node(parts[:len(parts)-1], true)
	parent, _ := s.node(parts[:len(parts)-1], true)
	parent.(map[string]any)[parts[len(parts)-1]] = value
}

// --- domain-specific convenience accessors, grounded in the paths §3 names ---

func mePath(me int, rest string) string {
	return fmt.Sprintf("MixEffectBlocks.%d.%s", me, rest)
}

// ProgramInput returns the numeric source id currently on program for me.
func (s *Store) ProgramInput(me int) int {
	v, _ := s.GetInt(mePath(me, "Program.input"))
	return v
}

// SetProgramInput sets the program source id for me.
func (s *Store) SetProgramInput(me int, source int) {
	s.SetInt(mePath(me, "Program.input"), source)
}

// PreviewInput returns the numeric source id currently on preview for me.
func (s *Store) PreviewInput(me int) int {
	v, _ := s.GetInt(mePath(me, "Preview.input"))
	return v
}

// SetPreviewInput sets the preview source id for me.
func (s *Store) SetPreviewInput(me int, source int) {
	s.SetInt(mePath(me, "Preview.input"), source)
}

// SwapProgramPreview exchanges program and preview sources for me.
func (s *Store) SwapProgramPreview(me int) {
	p, v := s.ProgramInput(me), s.PreviewInput(me)
	s.SetProgramInput(me, v)
	s.SetPreviewInput(me, p)
}

// TransitionStyle returns the configured transition style for me, defaulting
// to "Mix" when unset or unrecognized.
func (s *Store) TransitionStyle(me int) string {
	style, ok := s.Get(mePath(me, "TransitionStyle.style"))
	if !ok {
		return "Mix"
	}
	switch style {
	case "Mix", "Dip", "Wipe":
		return style
	default:
		return "Mix"
	}
}

// TransitionRate returns the configured frame count for me's current
// transition style, defaulting to 30 when unset or unparseable.
func (s *Store) TransitionRate(me int) int {
	style := s.TransitionStyle(me)
	rate, ok := s.GetInt(mePath(me, "TransitionStyle."+style+"Parameters.rate"))
	if !ok || rate <= 0 {
		return 30
	}
	return rate
}

// TransitionPosition returns me's current transition position (0..10000).
func (s *Store) TransitionPosition(me int) int {
	v, _ := s.GetInt(mePath(me, "TransitionStyle.transitionPosition"))
	return v
}

// SetTransitionPosition records the transition position for me as a decimal
// string, per TrPs's documented side effect.
func (s *Store) SetTransitionPosition(me int, position int) {
	s.SetInt(mePath(me, "TransitionStyle.transitionPosition"), position)
}

// InputIDs returns the sorted numeric input ids from Settings.Inputs.
func (s *Store) InputIDs() []int {
	keys := s.Keys("Settings.Inputs")
	ids := make([]int, 0, len(keys))
	for _, k := range keys {
		if n, err := strconv.Atoi(k); err == nil {
			ids = append(ids, n)
		}
	}
	sort.Ints(ids)
	return ids
}

// VideoMode returns the VideoMode.videoMode string, e.g. "1080i5994".
func (s *Store) VideoMode() string {
	v, _ := s.Get("VideoMode.videoMode")
	return v
}

// Product returns the configured product name.
func (s *Store) Product() string {
	v, _ := s.Get("product")
	return v
}
