// Package descriptor loads an XML-like configuration tree and flattens it
// into a state.Store, rewriting repeated child elements (mix-effect blocks,
// downstream keys, color generators, inputs) into indexed maps keyed by
// their "index" or "id" attribute. It also ships a built-in default store
// so the server has something usable with no descriptor file present.
package descriptor

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/broadcastswitch/switcherd/internal/state"
)

type element struct {
	Name     string
	Attrs    map[string]string
	Text     string
	Children []*element
}

// repeatingContainers maps a container element's tag name to the tag name
// of the repeated child it holds, so the container flattens directly to an
// indexed map instead of an intermediate single-key wrapper.
var repeatingContainers = map[string]string{
	"MixEffectBlocks": "MixEffectBlock",
	"DownstreamKeys":  "DownstreamKey",
	"ColorGenerators": "ColorGenerator",
	"Inputs":          "Input",
}

// Load parses the descriptor file at path and returns a populated Store.
func Load(path string) (*state.Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("descriptor: %w", err)
	}
	defer f.Close()
	return parse(f)
}

func parse(r io.Reader) (*state.Store, error) {
	root, err := parseElement(r)
	if err != nil {
		return nil, fmt.Errorf("descriptor: %w", err)
	}
	flat := flattenNode(root)
	m, ok := flat.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("descriptor: root element %q has no content", root.Name)
	}
	s := state.New()
	for k, v := range m {
		switch val := v.(type) {
		case map[string]any:
			s.SetMap(k, val)
		case string:
			s.Set(k, val)
		}
	}
	return s, nil
}

func parseElement(r io.Reader) (*element, error) {
	dec := xml.NewDecoder(r)
	var stack []*element
	var root *element
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			e := &element{Name: t.Name.Local, Attrs: map[string]string{}}
			for _, a := range t.Attr {
				e.Attrs[a.Name.Local] = a.Value
			}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, e)
			}
			stack = append(stack, e)
		case xml.EndElement:
			if len(stack) == 0 {
				continue
			}
			e := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				root = e
			}
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].Text += string(t)
			}
		}
	}
	if root == nil {
		return nil, fmt.Errorf("no root element")
	}
	return root, nil
}

func flattenNode(e *element) any {
	if childTag, ok := repeatingContainers[e.Name]; ok {
		return buildIndexed(e, childTag)
	}

	hasAttrs := len(e.Attrs) > 0
	hasChildren := len(e.Children) > 0
	text := strings.TrimSpace(e.Text)

	if !hasAttrs && !hasChildren {
		return text
	}

	d := map[string]any{}
	for k, v := range e.Attrs {
		d[k] = v
	}

	groups := map[string][]*element{}
	var order []string
	for _, c := range e.Children {
		if _, seen := groups[c.Name]; !seen {
			order = append(order, c.Name)
		}
		groups[c.Name] = append(groups[c.Name], c)
	}
	for _, name := range order {
		kids := groups[name]
		if len(kids) == 1 {
			d[name] = flattenNode(kids[0])
		} else {
			indexed := map[string]any{}
			for i, k := range kids {
				indexed[indexKey(k, i)] = flattenNode(k)
			}
			d[name] = indexed
		}
	}

	if text != "" {
		d["#text"] = text
	}
	return d
}

func buildIndexed(e *element, childTag string) map[string]any {
	indexed := map[string]any{}
	i := 0
	for _, c := range e.Children {
		if c.Name != childTag {
			continue
		}
		indexed[indexKey(c, i)] = flattenNode(c)
		i++
	}
	return indexed
}

func indexKey(e *element, position int) string {
	if v, ok := e.Attrs["index"]; ok {
		return v
	}
	if v, ok := e.Attrs["id"]; ok {
		return v
	}
	return strconv.Itoa(position)
}

// Default returns a built-in store with sane defaults: two mix-effect
// blocks, twenty inputs, a 1080i59.94 video mode, and the reference
// product name, so the server runs with no descriptor file present.
func Default() *state.Store {
	s := state.New()
	s.Set("product", "ATEM Television Studio HD")
	s.Set("VideoMode.videoMode", "1080i5994")

	for me := 0; me < 2; me++ {
		s.SetProgramInput(me, 1)
		s.SetPreviewInput(me, 2)
		s.Set(fmt.Sprintf("MixEffectBlocks.%d.TransitionStyle.style", me), "Mix")
		s.Set(fmt.Sprintf("MixEffectBlocks.%d.TransitionStyle.transitionPosition", me), "0")
		s.Set(fmt.Sprintf("MixEffectBlocks.%d.TransitionStyle.MixParameters.rate", me), "30")
		s.Set(fmt.Sprintf("MixEffectBlocks.%d.TransitionStyle.DipParameters.rate", me), "30")
		s.Set(fmt.Sprintf("MixEffectBlocks.%d.TransitionStyle.WipeParameters.rate", me), "30")
	}

	for id := 1; id <= 20; id++ {
		s.Set(fmt.Sprintf("Settings.Inputs.%d.name", id), fmt.Sprintf("Input %d", id))
	}

	return s
}
