/* framecase - Declarative Binary Frames
 *
 * Copyright (C) 2026 The framecase Authors.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package frame

// slotDef is one resolved slot of a structure. Provider/consumer links are
// resolved to slot indices at declaration time so descriptors stay immutable
// and trivially shareable.
type slotDef struct {
	name string
	kind Kind

	// consumer is the slot bound to this provider (LengthKind and
	// DispatchKind slots), or -1.
	consumer int
	// bitConsumers maps bit record sub-slots acting as length providers to
	// their consumer slots.
	bitConsumers map[string]int
	// provider is the resolved provider reference for consumer and
	// dependent slots; provider.slot is -1 when there is none. For
	// dispatch targets it is the dispatch field.
	provider providerRef
	// sizeProvider is the byte bound of a sized dispatch target;
	// sizeProvider.slot is -1 when the target is greedy.
	sizeProvider providerRef
	// fixedSuffix is the summed width of the fixed slots following this one
	// up to the next variable slot or the end of the structure.
	fixedSuffix int
}

// Structure is an immutable frame descriptor: an ordered sequence of named
// slots with resolved dependency metadata.
type Structure struct {
	name      string
	slots     []slotDef
	byName    map[string]int
	greedy    int
	checksums []int
}

// New builds a structure descriptor from an ordered slot list, resolving
// provider/consumer links and validating the declaration. Violations are
// reported as ErrDeclaration errors.
func New(name string, decls ...SlotDecl) (*Structure, error) {
	s := &Structure{
		name:   name,
		byName: make(map[string]int, len(decls)),
		greedy: -1,
	}
	for i, decl := range decls {
		if decl.Name == "" {
			return nil, declErrorf("structure %q: slot %d has an empty name", name, i)
		}
		if decl.Kind == nil {
			return nil, declErrorf("structure %q: slot %q has no kind", name, decl.Name)
		}
		if _, dup := s.byName[decl.Name]; dup {
			return nil, declErrorf("structure %q: duplicate slot %q", name, decl.Name)
		}
		s.byName[decl.Name] = i
		s.slots = append(s.slots, slotDef{
			name:         decl.Name,
			kind:         decl.Kind,
			consumer:     -1,
			provider:     providerRef{slot: -1},
			sizeProvider: providerRef{slot: -1},
		})
	}

	if err := s.validateKinds(); err != nil {
		return nil, err
	}
	if err := s.resolveProviders(); err != nil {
		return nil, err
	}
	if err := s.classifyExtents(); err != nil {
		return nil, err
	}
	return s, nil
}

// MustNew is New, panicking on a declaration error. It exists for
// package-level structure variables.
func MustNew(name string, decls ...SlotDecl) *Structure {
	s, err := New(name, decls...)
	if err != nil {
		panic(err)
	}
	return s
}

// Name returns the structure's declared name.
func (s *Structure) Name() string {
	return s.name
}

// Len returns the number of slots.
func (s *Structure) Len() int {
	return len(s.slots)
}

// SlotNames returns the slot names in wire order.
func (s *Structure) SlotNames() []string {
	names := make([]string, len(s.slots))
	for i, slot := range s.slots {
		names[i] = slot.name
	}
	return names
}

// LeadingMagic returns the magic byte sequence when the first slot is a
// magic slot, or nil. The stream framer keys its hunt state off this.
func (s *Structure) LeadingMagic() []byte {
	if len(s.slots) == 0 {
		return nil
	}
	if mk, ok := s.slots[0].kind.(*MagicKind); ok {
		return mk.Sequence()
	}
	return nil
}

// validateKinds checks per-kind declaration invariants.
func (s *Structure) validateKinds() error {
	for i := range s.slots {
		if err := validateKind(s.name, s.slots[i].name, s.slots[i].kind); err != nil {
			return err
		}
	}
	return nil
}

func validateKind(structName, slotName string, k Kind) error {
	switch kind := k.(type) {
	case *BitRecordKind:
		if err := kind.validate(); err != nil {
			return declErrorf("structure %q slot %q: %v", structName, slotName, err)
		}
	case *IntKind:
		if kind.width < 1 || kind.width > 8 {
			return declErrorf("structure %q slot %q: integer width %d bytes out of range", structName, slotName, kind.width)
		}
	case *FixedBytesKind:
		if kind.width < 0 {
			return declErrorf("structure %q slot %q: negative byte block length", structName, slotName)
		}
	case *MagicKind:
		if len(kind.seq) == 0 {
			return declErrorf("structure %q slot %q: empty magic sequence", structName, slotName)
		}
	case *LengthKind:
		if kind.inner == nil || kind.inner.signed {
			return declErrorf("structure %q slot %q: length providers must store an unsigned integer", structName, slotName)
		}
	case *DispatchKind:
		if kind.inner == nil || kind.inner.signed {
			return declErrorf("structure %q slot %q: dispatch keys must be unsigned integers", structName, slotName)
		}
	case *DispatchTargetKind:
		if len(kind.mapping) == 0 && kind.fallback == nil {
			return declErrorf("structure %q slot %q: dispatch target has an empty mapping and no default", structName, slotName)
		}
	case *ChecksumKind:
		if kind.inner == nil || kind.inner.signed {
			return declErrorf("structure %q slot %q: checksums must store an unsigned integer", structName, slotName)
		}
		if kind.algo == nil {
			return declErrorf("structure %q slot %q: checksum has no algorithm", structName, slotName)
		}
	case *ArrayKind:
		if kind.elem == nil {
			return declErrorf("structure %q slot %q: array has no element structure", structName, slotName)
		}
		if kind.elem.greedy >= 0 {
			return declErrorf("structure %q slot %q: array element structure %q contains a greedy slot", structName, slotName, kind.elem.name)
		}
	case *SubstructureKind:
		if kind.sub == nil {
			return declErrorf("structure %q slot %q: substructure has no structure", structName, slotName)
		}
	case *ConditionalKind:
		if kind.cond == nil {
			return declErrorf("structure %q slot %q: conditional has no condition", structName, slotName)
		}
		inner := unwrapConditional(kind)
		if inner.Extent().Class == ExtentGreedy {
			return declErrorf("structure %q slot %q: conditional slots cannot wrap greedy fields", structName, slotName)
		}
		return validateKind(structName, slotName, inner)
	}
	return nil
}

// resolveProviders links consumers, dependents, and dispatch targets to
// their provider slots and checks that every provider has exactly one
// consumer appearing after it in wire order.
func (s *Structure) resolveProviders() error {
	for i := range s.slots {
		slot := &s.slots[i]
		switch kind := unwrapConditional(s.slots[i].kind).(type) {
		case *PayloadKind:
			if kind.provider == "" {
				continue
			}
			ref, err := s.bindLength(kind.provider, i, false)
			if err != nil {
				return err
			}
			slot.provider = ref
		case *ArrayKind:
			if kind.provider == "" {
				continue
			}
			ref, err := s.bindLength(kind.provider, i, true)
			if err != nil {
				return err
			}
			slot.provider = ref
		case *SubstructureKind:
			if kind.provider == "" {
				continue
			}
			ref, err := s.bindLength(kind.provider, i, false)
			if err != nil {
				return err
			}
			slot.provider = ref
		case *DispatchTargetKind:
			j, ok := s.byName[kind.dispatch]
			if !ok {
				return declErrorf("structure %q slot %q: dispatch field %q does not exist", s.name, s.slots[i].name, kind.dispatch)
			}
			if j >= i {
				return declErrorf("structure %q slot %q: dispatch field %q does not precede its target", s.name, s.slots[i].name, kind.dispatch)
			}
			dk, ok := unwrapConditional(s.slots[j].kind).(*DispatchKind)
			if !ok || dk == nil {
				return declErrorf("structure %q slot %q: slot %q is not a dispatch field", s.name, s.slots[i].name, kind.dispatch)
			}
			if s.slots[j].consumer >= 0 {
				return declErrorf("structure %q: dispatch field %q has more than one target", s.name, kind.dispatch)
			}
			s.slots[j].consumer = i
			slot.provider = providerRef{slot: j}
			if kind.provider != "" {
				// The byte bound rides alongside the dispatch link.
				ref, err := s.bindLength(kind.provider, i, false)
				if err != nil {
					return err
				}
				slot.sizeProvider = ref
			}
		case *DependentKind:
			refName, bit := splitProviderRef(kind.provider)
			j, ok := s.byName[refName]
			if !ok {
				return declErrorf("structure %q slot %q: dependent provider %q does not exist", s.name, s.slots[i].name, kind.provider)
			}
			if j >= i {
				return declErrorf("structure %q slot %q: dependent provider %q does not precede it", s.name, s.slots[i].name, kind.provider)
			}
			if bit != "" {
				rec, ok := unwrapConditional(s.slots[j].kind).(*BitRecordKind)
				if !ok {
					return declErrorf("structure %q slot %q: provider %q is not a bit record", s.name, s.slots[i].name, kind.provider)
				}
				if _, ok := rec.sub(bit); !ok {
					return declErrorf("structure %q slot %q: bit record %q has no sub-slot %q", s.name, s.slots[i].name, refName, bit)
				}
			}
			slot.provider = providerRef{slot: j, bit: bit}
		}
	}

	// Dangling providers violate the one-consumer rule.
	for i := range s.slots {
		switch unwrapConditional(s.slots[i].kind).(type) {
		case *LengthKind:
			if s.slots[i].consumer < 0 {
				return declErrorf("structure %q: length provider %q has no consumer", s.name, s.slots[i].name)
			}
		case *DispatchKind:
			if s.slots[i].consumer < 0 {
				return declErrorf("structure %q: dispatch field %q has no target", s.name, s.slots[i].name)
			}
		}
	}
	return nil
}

// bindLength resolves a length/count provider reference for the consumer at
// slot index ci. Array consumers may also bind count-mode providers.
func (s *Structure) bindLength(ref string, ci int, isArray bool) (providerRef, error) {
	refName, bit := splitProviderRef(ref)
	j, ok := s.byName[refName]
	if !ok {
		return providerRef{slot: -1}, declErrorf("structure %q slot %q: length provider %q does not exist", s.name, s.slots[ci].name, ref)
	}
	if j >= ci {
		return providerRef{slot: -1}, declErrorf("structure %q slot %q: length provider %q does not precede its consumer", s.name, s.slots[ci].name, ref)
	}

	switch pk := unwrapConditional(s.slots[j].kind).(type) {
	case *LengthKind:
		if bit != "" {
			return providerRef{slot: -1}, declErrorf("structure %q slot %q: length provider %q is not a bit record", s.name, s.slots[ci].name, ref)
		}
		if pk.count && !isArray {
			return providerRef{slot: -1}, declErrorf("structure %q slot %q: count provider %q can only size a field array", s.name, s.slots[ci].name, ref)
		}
		if s.slots[j].consumer >= 0 {
			return providerRef{slot: -1}, declErrorf("structure %q: length provider %q has more than one consumer", s.name, refName)
		}
		s.slots[j].consumer = ci
		return providerRef{slot: j}, nil
	case *BitRecordKind:
		if bit == "" {
			return providerRef{slot: -1}, declErrorf("structure %q slot %q: provider reference %q must name a bit record sub-slot", s.name, s.slots[ci].name, ref)
		}
		sub, ok := pk.sub(bit)
		if !ok {
			return providerRef{slot: -1}, declErrorf("structure %q slot %q: bit record %q has no sub-slot %q", s.name, s.slots[ci].name, refName, bit)
		}
		if sub.Bool {
			return providerRef{slot: -1}, declErrorf("structure %q slot %q: bit record flag %q cannot act as a length provider", s.name, s.slots[ci].name, ref)
		}
		if hasKey(s.slots[j].bitConsumers, bit) {
			return providerRef{slot: -1}, declErrorf("structure %q: bit record sub-slot %q has more than one consumer", s.name, ref)
		}
		if s.slots[j].bitConsumers == nil {
			s.slots[j].bitConsumers = make(map[string]int)
		}
		s.slots[j].bitConsumers[bit] = ci
		return providerRef{slot: j, bit: bit}, nil
	default:
		return providerRef{slot: -1}, declErrorf("structure %q slot %q: slot %q cannot act as a length provider", s.name, s.slots[ci].name, refName)
	}
}

func hasKey(m map[string]int, k string) bool {
	_, ok := m[k]
	return ok
}

// classifyExtents locates the greedy slot, pins the fixed suffix metadata,
// and records checksum slots.
func (s *Structure) classifyExtents() error {
	for i := range s.slots {
		ext := s.slots[i].kind.Extent()
		if ext.Class == ExtentGreedy {
			if s.greedy >= 0 {
				return declErrorf("structure %q: slots %q and %q are both greedy", s.name, s.slots[s.greedy].name, s.slots[i].name)
			}
			s.greedy = i
		}
		if _, ok := unwrapConditional(s.slots[i].kind).(*ChecksumKind); ok {
			s.checksums = append(s.checksums, i)
		}
	}

	if s.greedy >= 0 {
		for i := s.greedy + 1; i < len(s.slots); i++ {
			if s.slots[i].kind.Extent().Class != ExtentFixed {
				return declErrorf("structure %q: slot %q after the greedy slot %q does not have a fixed extent", s.name, s.slots[i].name, s.slots[s.greedy].name)
			}
		}
	}

	running := 0
	for i := len(s.slots) - 1; i >= 0; i-- {
		s.slots[i].fixedSuffix = running
		if ext := s.slots[i].kind.Extent(); ext.Class == ExtentFixed {
			running += ext.Width
		} else {
			running = 0
		}
	}
	return nil
}

// fixedSize returns the total byte width when every slot has a fixed
// extent.
func (s *Structure) fixedSize() (int, bool) {
	total := 0
	for i := range s.slots {
		ext := s.slots[i].kind.Extent()
		if ext.Class != ExtentFixed {
			return 0, false
		}
		total += ext.Width
	}
	return total, true
}

// providerValue reads a provider's post-transform value from a frame:
// the byte count (or element count) its consumer spans.
func (s *Structure) providerValue(f *Frame, ref providerRef) (uint64, error) {
	v := f.vals[ref.slot]
	if v == nil {
		return 0, &Error{Kind: KindUnsetField, Path: s.slots[ref.slot].name, Message: "length provider is unset"}
	}
	if ref.bit != "" {
		vals, ok := v.(BitValues)
		if !ok {
			return 0, &Error{Kind: KindUnsetField, Path: s.slots[ref.slot].name, Message: "bit record value missing"}
		}
		raw, ok := toUint64(vals[ref.bit])
		if !ok {
			return 0, &Error{Kind: KindUnsetField, Path: s.slots[ref.slot].name + "." + ref.bit, Message: "length provider is unset"}
		}
		return raw, nil
	}
	lk, ok := unwrapConditional(s.slots[ref.slot].kind).(*LengthKind)
	if !ok {
		return 0, &Error{Kind: KindDeclaration, Path: s.slots[ref.slot].name, Message: "slot is not a length provider"}
	}
	raw, ok := toUint64(v)
	if !ok {
		return 0, &Error{Kind: KindUnsetField, Path: s.slots[ref.slot].name, Message: "length provider is unset"}
	}
	return lk.load(raw), nil
}

// providerIsCount reports whether the resolved provider counts elements
// rather than bytes.
func (s *Structure) providerIsCount(ref providerRef) bool {
	if ref.slot < 0 || ref.bit != "" {
		return false
	}
	lk, ok := unwrapConditional(s.slots[ref.slot].kind).(*LengthKind)
	return ok && lk.count
}
