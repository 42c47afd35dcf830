package catalog

import (
	"testing"

	"github.com/gdpotter/pgmt/internal/objectid"
)

func twoTableCatalog() *Catalog {
	parent := &Table{Schema: "app", Name: "parent"}
	child := &Table{Schema: "app", Name: "child", Dependencies: []objectid.ID{parent.ID()}}
	return &Catalog{Tables: []*Table{parent, child}}
}

func TestBuildDependencyIndexIsMutuallyConsistent(t *testing.T) {
	c := twoTableCatalog()
	c.BuildDependencyIndex()

	parentID := objectid.Table("app", "parent")
	childID := objectid.Table("app", "child")

	fwd := c.ForwardDeps[childID]
	if len(fwd) != 1 || fwd[0] != parentID {
		t.Fatalf("ForwardDeps[child] = %v; want [%v]", fwd, parentID)
	}

	rev := c.ReverseDeps[parentID]
	if len(rev) != 1 || rev[0] != childID {
		t.Fatalf("ReverseDeps[parent] = %v; want [%v]", rev, childID)
	}

	if deps := c.ForwardDeps[parentID]; len(deps) != 0 {
		t.Errorf("ForwardDeps[parent] = %v; want empty", deps)
	}
}

func TestEmptyCatalogHasInitializedMaps(t *testing.T) {
	c := Empty()
	if c.ForwardDeps == nil || c.ReverseDeps == nil {
		t.Fatal("Empty() returned a Catalog with nil dependency maps")
	}
	if c.ObjectCount() != 0 {
		t.Errorf("ObjectCount() = %d; want 0", c.ObjectCount())
	}
}

func TestAugmentFileDependenciesAddsWithoutDuplicating(t *testing.T) {
	c := twoTableCatalog()
	c.BuildDependencyIndex()

	childID := objectid.Table("app", "child")
	parentID := objectid.Table("app", "parent")
	otherID := objectid.Table("app", "other")

	// parentID is already a dependency of childID; re-adding it must not
	// duplicate the edge, while otherID must be added fresh.
	c.AugmentFileDependencies(map[objectid.ID][]objectid.ID{
		childID: {parentID, otherID},
	})

	fwd := c.ForwardDeps[childID]
	if len(fwd) != 2 {
		t.Fatalf("ForwardDeps[child] = %v; want 2 entries, got %d", fwd, len(fwd))
	}

	rev := c.ReverseDeps[otherID]
	if len(rev) != 1 || rev[0] != childID {
		t.Errorf("ReverseDeps[other] = %v; want [%v]", rev, childID)
	}
}

func TestAugmentFileDependenciesNeverRemovesExistingEdges(t *testing.T) {
	c := twoTableCatalog()
	c.BuildDependencyIndex()

	childID := objectid.Table("app", "child")
	before := append([]objectid.ID(nil), c.ForwardDeps[childID]...)

	c.AugmentFileDependencies(map[objectid.ID][]objectid.ID{})

	after := c.ForwardDeps[childID]
	if len(after) != len(before) {
		t.Fatalf("AugmentFileDependencies with no additions changed ForwardDeps[child]: before=%v after=%v", before, after)
	}
}

func TestFindTableViewSequence(t *testing.T) {
	c := twoTableCatalog()
	seq := &Sequence{Schema: "app", Name: "child_id_seq"}
	view := &View{Schema: "app", Name: "active_children"}
	c.Sequences = append(c.Sequences, seq)
	c.Views = append(c.Views, view)

	if got := c.FindTable(objectid.Table("app", "child")); got == nil || got.Name != "child" {
		t.Errorf("FindTable(child) = %v; want the child table", got)
	}
	if got := c.FindTable(objectid.Table("app", "missing")); got != nil {
		t.Errorf("FindTable(missing) = %v; want nil", got)
	}
	if got := c.FindView(objectid.View("app", "active_children")); got != view {
		t.Errorf("FindView(active_children) = %v; want %v", got, view)
	}
	if got := c.FindSequence(objectid.Sequence("app", "child_id_seq")); got != seq {
		t.Errorf("FindSequence(child_id_seq) = %v; want %v", got, seq)
	}
}

func TestObjectCountAndAllIDs(t *testing.T) {
	c := twoTableCatalog()
	if got := c.ObjectCount(); got != 2 {
		t.Errorf("ObjectCount() = %d; want 2", got)
	}

	ids := c.AllIDs()
	if len(ids) != 2 {
		t.Fatalf("AllIDs() returned %d entries; want 2", len(ids))
	}
	if !ids[objectid.Table("app", "parent")] || !ids[objectid.Table("app", "child")] {
		t.Errorf("AllIDs() = %v; want both parent and child present", ids)
	}
}
