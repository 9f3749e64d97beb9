package rustdoc

import "slices"

// ImplIndex maps types and traits to the impl blocks that target them.
// Impl IDs are in ascending order, which matches rustdoc's declaration order.
type ImplIndex struct {
	ForType  map[ID][]ID
	ForTrait map[ID][]ID
}

// BuildImplIndex scans every impl item in the crate. Impls whose target is
// not local are skipped unless includeForeign is set.
func BuildImplIndex(c *Crate, paths PathIndex, includeForeign bool) ImplIndex {
	idx := ImplIndex{
		ForType:  make(map[ID][]ID),
		ForTrait: make(map[ID][]ID),
	}

	var ids []ID
	for id, item := range c.Index {
		if item.Inner.Impl != nil {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)

	isLocal := func(id ID) bool {
		if e, ok := paths.Lookup(id); ok {
			return !e.Foreign
		}
		item, ok := c.Index[id]
		return ok && item.CrateID == 0
	}

	for _, id := range ids {
		impl := c.Index[id].Inner.Impl
		if target, ok := ResolvedPathID(impl.For); ok && (includeForeign || isLocal(target)) {
			idx.ForType[target] = append(idx.ForType[target], id)
		}
		if impl.Trait != nil && (includeForeign || isLocal(impl.Trait.ID)) {
			idx.ForTrait[impl.Trait.ID] = append(idx.ForTrait[impl.Trait.ID], id)
		}
	}
	return idx
}

// Impls returns the impl IDs whose self type is typeID.
func (x ImplIndex) Impls(typeID ID) []ID {
	return x.ForType[typeID]
}

// Implementors returns the impl IDs that implement traitID.
func (x ImplIndex) Implementors(traitID ID) []ID {
	return x.ForTrait[traitID]
}
