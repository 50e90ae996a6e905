// Entity catalog — kind classification and search-target resolution
// tables. Resolution is table-driven so that adding a resource means
// adding a row, not a code path.
package world

// categories classifies each kind for interrupt-priority comparisons.
var categories = map[Kind]Category{
	KindTree:    CategorySource,
	KindGrass:   CategorySource,
	KindBonfire: CategoryWarmth,
	KindApple:   CategoryFood,
	KindBerry:   CategoryFood,
	KindStick:   CategoryFuel,
	KindWolf:    CategoryThreat,
	KindAgent:   CategoryAgent,
}

// CategoryOf returns the catalog category for a kind, or CategoryNone
// for kinds outside the catalog.
func CategoryOf(kind Kind) Category {
	return categories[kind]
}

// SearchSpec maps a searched-for item kind to the entity kind to
// watch for. An item harvested from a source (an apple on a tree)
// watches the source kind and requires the source to currently hold
// the item; ground items and structures watch their own kind.
type SearchSpec struct {
	Watch       Kind
	RequireItem bool
}

var searchSpecs = map[Kind]SearchSpec{
	KindApple:   {Watch: KindTree, RequireItem: true},
	KindBerry:   {Watch: KindGrass, RequireItem: true},
	KindStick:   {Watch: KindStick},
	KindBonfire: {Watch: KindBonfire},
}

// SearchSpecFor resolves the logical search target for an item kind.
// Kinds without a row watch their own kind directly.
func SearchSpecFor(item Kind) SearchSpec {
	if spec, ok := searchSpecs[item]; ok {
		return spec
	}
	return SearchSpec{Watch: item}
}

// Matches reports whether an entity satisfies the spec for the given
// searched-for item.
func (s SearchSpec) Matches(e *Entity, item Kind) bool {
	if e.Kind != s.Watch {
		return false
	}
	if s.RequireItem {
		return e.Holds(item)
	}
	return true
}
