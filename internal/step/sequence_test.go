package step

import (
	"strings"
	"testing"

	"github.com/gdpotter/pgmt/internal/catalog"
)

func TestSequenceCreateRendersBoundsAndOwnership(t *testing.T) {
	minV, maxV := int64(1), int64(1000)
	seq := &catalog.Sequence{
		Schema: "app", Name: "orders_id_seq", DataType: "bigint", StartValue: 1, Increment: 1,
		MinValue: &minV, MaxValue: &maxV, OwnedByTable: "orders", OwnedByColumn: "id", Comment: "order ids",
	}
	out := SequenceCreate{Sequence: seq}.Render()
	if len(out) != 3 {
		t.Fatalf("Render() returned %d statements; want 3 (create, ownership, comment)", len(out))
	}
	if !strings.Contains(out[0].Text, "MINVALUE 1") || !strings.Contains(out[0].Text, "MAXVALUE 1000") {
		t.Errorf("Render()[0].Text = %q; want explicit MINVALUE/MAXVALUE", out[0].Text)
	}
	if !strings.Contains(out[1].Text, "OWNED BY \"app\".\"orders\".\"id\"") {
		t.Errorf("Render()[1].Text = %q; want an OWNED BY clause", out[1].Text)
	}
	if !strings.Contains(out[2].Text, "COMMENT ON SEQUENCE") {
		t.Errorf("Render()[2].Text = %q; want a trailing COMMENT statement", out[2].Text)
	}
}

func TestSequenceCreateNoBoundsRendersUnbounded(t *testing.T) {
	seq := &catalog.Sequence{Schema: "app", Name: "s", DataType: "bigint", StartValue: 1, Increment: 1}
	out := SequenceCreate{Sequence: seq}.Render()
	if len(out) != 1 {
		t.Fatalf("Render() returned %d statements; want 1 when unowned and uncommented", len(out))
	}
	if !strings.Contains(out[0].Text, "NO MINVALUE") || !strings.Contains(out[0].Text, "NO MAXVALUE") {
		t.Errorf("Render()[0].Text = %q; want NO MINVALUE/NO MAXVALUE when bounds are nil", out[0].Text)
	}
}

func TestSequenceOwnedByAlterIsRelationshipStep(t *testing.T) {
	seq := &catalog.Sequence{Schema: "app", Name: "s", OwnedByTable: "orders", OwnedByColumn: "id"}
	s := SequenceOwnedByAlter{Sequence: seq}
	if !s.Relationship() {
		t.Error("SequenceOwnedByAlter.Relationship() = false; want true so it is deferred to the trailing ordering phase")
	}
	out := s.Render()
	if len(out) != 1 || !strings.Contains(out[0].Text, "ALTER SEQUENCE") {
		t.Errorf("Render() = %v; want a single ALTER SEQUENCE ... OWNED BY statement", out)
	}
}

func TestSequenceOwnedByAlterUnownedRendersNothing(t *testing.T) {
	seq := &catalog.Sequence{Schema: "app", Name: "s"}
	if out := (SequenceOwnedByAlter{Sequence: seq}).Render(); out != nil {
		t.Errorf("Render() = %v; want nil when the sequence is not owned by a column", out)
	}
}

func TestSequenceDropIsDestructive(t *testing.T) {
	s := SequenceDrop{Schema: "app", Name: "orders_id_seq"}
	out := s.Render()
	if len(out) != 1 || out[0].Safety != Destructive {
		t.Fatalf("Render() = %v; want a single destructive statement", out)
	}
	if !strings.Contains(out[0].Text, "DROP SEQUENCE \"app\".\"orders_id_seq\";") {
		t.Errorf("Render()[0].Text = %q", out[0].Text)
	}
}

func TestSequenceAlterRendersCycleState(t *testing.T) {
	cyclic := &catalog.Sequence{Schema: "app", Name: "s", Increment: 2, Cycle: true}
	out := SequenceAlter{Sequence: cyclic}.Render()
	if !strings.Contains(out[0].Text, "\n    CYCLE") {
		t.Errorf("Render() = %q; want a CYCLE clause", out[0].Text)
	}

	acyclic := &catalog.Sequence{Schema: "app", Name: "s", Increment: 2, Cycle: false}
	out = SequenceAlter{Sequence: acyclic}.Render()
	if !strings.Contains(out[0].Text, "NO CYCLE") {
		t.Errorf("Render() = %q; want a NO CYCLE clause", out[0].Text)
	}
}
