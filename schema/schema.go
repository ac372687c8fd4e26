/* framecase - Declarative Binary Frames
 *
 * Copyright (C) 2026 The framecase Authors.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

// Package schema declares frame structures from TOML documents. Each
// document holds an ordered list of structures; later structures may
// reference earlier ones (and any pre-registered ones) by name for
// substructures, arrays, and dispatch mappings. Function-valued features
// (conditions, transforms, checksums, dependent fields) are available only
// through the builder API in package frame.
package schema

import (
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml"

	"github.com/framecase/framecase/frame"
	"github.com/framecase/framecase/protocol"
)

type document struct {
	Structures []structureDecl `toml:"structure"`
}

type structureDecl struct {
	Name   string      `toml:"name"`
	Fields []fieldDecl `toml:"field"`
}

type fieldDecl struct {
	Name      string            `toml:"name"`
	Kind      string            `toml:"kind"`
	Of        string            `toml:"of"`        // inner primitive for length/count/dispatch
	Size      int               `toml:"size"`      // bytes kind width, bits kind width in bits
	Magic     string            `toml:"magic"`     // hex-encoded magic sequence
	Provider  string            `toml:"provider"`  // sizing provider reference
	Dispatch  string            `toml:"dispatch"`  // target's dispatch field
	Structure string            `toml:"structure"` // substructure/array element by name
	Default   string            `toml:"default"`   // target default structure by name
	Mapping   map[string]string `toml:"mapping"`   // dispatch key (decimal) to structure name
	Bits      []bitDecl         `toml:"bit"`
}

type bitDecl struct {
	Name  string `toml:"name"`
	Width int    `toml:"width"`
	Flag  bool   `toml:"flag"`
}

// Load declares every structure in the TOML document, registering each into
// the registry as it is built. A nil registry gets a fresh one, scoped to
// the document.
func Load(doc string, reg *protocol.Registry) ([]*frame.Structure, error) {
	tree, err := toml.Load(doc)
	if err != nil {
		return nil, err
	}
	return build(tree, reg)
}

// LoadFile is Load over a TOML file.
func LoadFile(path string, reg *protocol.Registry) ([]*frame.Structure, error) {
	tree, err := toml.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return build(tree, reg)
}

func build(tree *toml.Tree, reg *protocol.Registry) ([]*frame.Structure, error) {
	var doc document
	if err := tree.Unmarshal(&doc); err != nil {
		return nil, err
	}
	if reg == nil {
		reg = protocol.NewRegistry()
	}

	out := make([]*frame.Structure, 0, len(doc.Structures))
	for _, decl := range doc.Structures {
		if decl.Name == "" {
			return nil, fmt.Errorf("schema: structure without a name")
		}
		slots := make([]frame.SlotDecl, 0, len(decl.Fields))
		for _, fd := range decl.Fields {
			kind, err := buildKind(decl.Name, fd, reg)
			if err != nil {
				return nil, err
			}
			slots = append(slots, frame.Slot(fd.Name, kind))
		}
		s, err := frame.New(decl.Name, slots...)
		if err != nil {
			return nil, err
		}
		if err := reg.Register(s); err != nil {
			return nil, fmt.Errorf("schema: structure %q: %w", decl.Name, err)
		}
		out = append(out, s)
	}
	return out, nil
}

func buildKind(structName string, fd fieldDecl, reg *protocol.Registry) (frame.Kind, error) {
	switch fd.Kind {
	case "bytes":
		if fd.Size <= 0 {
			return nil, fmt.Errorf("schema: %s.%s: bytes field needs a positive size", structName, fd.Name)
		}
		return frame.FixedBytes(fd.Size), nil

	case "magic":
		seq, err := hex.DecodeString(strings.ReplaceAll(fd.Magic, " ", ""))
		if err != nil || len(seq) == 0 {
			return nil, fmt.Errorf("schema: %s.%s: magic must be a non-empty hex string", structName, fd.Name)
		}
		return frame.Magic(seq), nil

	case "bits":
		subs := make([]frame.BitSub, 0, len(fd.Bits))
		for _, bd := range fd.Bits {
			if bd.Flag {
				subs = append(subs, frame.BitFlag(bd.Name))
			} else {
				subs = append(subs, frame.BitNum(bd.Name, bd.Width))
			}
		}
		return frame.Bits(fd.Size, subs...), nil

	case "length", "count":
		inner, err := parseIntKind(fd.Of)
		if err != nil {
			return nil, fmt.Errorf("schema: %s.%s: %v", structName, fd.Name, err)
		}
		if fd.Kind == "count" {
			return frame.Count(inner), nil
		}
		return frame.Length(inner), nil

	case "payload":
		if fd.Provider == "" {
			return frame.GreedyPayload(), nil
		}
		return frame.Payload(fd.Provider), nil

	case "dispatch":
		inner, err := parseIntKind(fd.Of)
		if err != nil {
			return nil, fmt.Errorf("schema: %s.%s: %v", structName, fd.Name, err)
		}
		return frame.Dispatch(inner), nil

	case "target":
		if fd.Dispatch == "" {
			return nil, fmt.Errorf("schema: %s.%s: target needs a dispatch field", structName, fd.Name)
		}
		mapping := make(map[uint64]*frame.Structure, len(fd.Mapping))
		keys := make([]string, 0, len(fd.Mapping))
		for key := range fd.Mapping {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			k, err := strconv.ParseUint(key, 0, 64)
			if err != nil {
				return nil, fmt.Errorf("schema: %s.%s: bad dispatch key %q", structName, fd.Name, key)
			}
			target, ok := reg.Lookup(fd.Mapping[key])
			if !ok {
				return nil, fmt.Errorf("schema: %s.%s: unknown structure %q", structName, fd.Name, fd.Mapping[key])
			}
			mapping[k] = target
		}
		kind := frame.Target(fd.Dispatch, mapping)
		if fd.Provider != "" {
			kind = kind.Sized(fd.Provider)
		}
		if fd.Default != "" {
			fallback, ok := reg.Lookup(fd.Default)
			if !ok {
				return nil, fmt.Errorf("schema: %s.%s: unknown structure %q", structName, fd.Name, fd.Default)
			}
			kind = kind.Default(fallback)
		}
		return kind, nil

	case "substructure":
		sub, ok := reg.Lookup(fd.Structure)
		if !ok {
			return nil, fmt.Errorf("schema: %s.%s: unknown structure %q", structName, fd.Name, fd.Structure)
		}
		kind := frame.Substruct(sub)
		if fd.Provider != "" {
			kind = kind.Sized(fd.Provider)
		}
		return kind, nil

	case "array":
		elem, ok := reg.Lookup(fd.Structure)
		if !ok {
			return nil, fmt.Errorf("schema: %s.%s: unknown structure %q", structName, fd.Name, fd.Structure)
		}
		kind := frame.Array(elem)
		if fd.Provider != "" {
			kind = kind.Sized(fd.Provider)
		}
		return kind, nil

	default:
		kind, err := parsePrimitive(fd.Kind)
		if err != nil {
			return nil, fmt.Errorf("schema: %s.%s: %v", structName, fd.Name, err)
		}
		return kind, nil
	}
}

// parsePrimitive parses primitive kind names: uint8..uint64, int8..int64
// with a be/le suffix for multi-byte widths, and float32/float64 likewise.
func parsePrimitive(name string) (frame.Kind, error) {
	if strings.HasPrefix(name, "float") {
		base, little, err := splitEndian(strings.TrimPrefix(name, "float"))
		if err != nil {
			return nil, fmt.Errorf("unknown kind %q", name)
		}
		switch {
		case base == 32 && little:
			return frame.Float32LE(), nil
		case base == 32:
			return frame.Float32BE(), nil
		case base == 64 && little:
			return frame.Float64LE(), nil
		case base == 64:
			return frame.Float64BE(), nil
		}
		return nil, fmt.Errorf("unknown kind %q", name)
	}

	k, err := parseIntKind(name)
	if err != nil {
		return nil, err
	}
	return k, nil
}

func parseIntKind(name string) (*frame.IntKind, error) {
	signed := false
	rest := name
	switch {
	case strings.HasPrefix(name, "uint"):
		rest = strings.TrimPrefix(name, "uint")
	case strings.HasPrefix(name, "int"):
		signed = true
		rest = strings.TrimPrefix(name, "int")
	default:
		return nil, fmt.Errorf("unknown kind %q", name)
	}

	bits, little, err := splitEndian(rest)
	if err != nil {
		return nil, fmt.Errorf("unknown kind %q", name)
	}
	if bits%8 != 0 || bits < 8 || bits > 64 {
		return nil, fmt.Errorf("unknown kind %q", name)
	}
	if signed {
		return frame.NewInt(bits, little), nil
	}
	return frame.NewUint(bits, little), nil
}

// splitEndian splits "16be" into (16, false); bare "8" has no suffix.
func splitEndian(s string) (int, bool, error) {
	little := false
	switch {
	case strings.HasSuffix(s, "be"):
		s = strings.TrimSuffix(s, "be")
	case strings.HasSuffix(s, "le"):
		little = true
		s = strings.TrimSuffix(s, "le")
	}
	bits, err := strconv.Atoi(s)
	if err != nil {
		return 0, false, err
	}
	return bits, little, nil
}
