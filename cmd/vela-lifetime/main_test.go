package main

import (
	"testing"

	"github.com/vela-lang/vela/internal/lifetime"
)

func TestToEnvelopeRoundTrip(t *testing.T) {
	je := jsonEnvelope{
		SchemaVersion: "1.0.0",
		Events: []jsonEvent{
			{Payload: "start_node", Kind: "Item"},
			{Payload: "string", Key: "name", StrValue: "x"},
			{Payload: "end_node", Kind: "Item"},
		},
	}

	envelope, err := toEnvelope(je)
	if err != nil {
		t.Fatalf("toEnvelope failed: %v", err)
	}

	nodes, err := lifetime.Build(envelope)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if len(nodes) != 1 {
		t.Fatalf("expected 1 node, got %d", len(nodes))
	}

	if name, ok := nodes[0].Name(); !ok || name != "x" {
		t.Errorf("expected node name 'x', got %q (ok=%v)", name, ok)
	}
}

func TestToEnvelopeRejectsUnknownPayload(t *testing.T) {
	_, err := toEnvelope(jsonEnvelope{
		SchemaVersion: "1.0.0",
		Events:        []jsonEvent{{Payload: "not_a_payload"}},
	})
	if err == nil {
		t.Fatal("expected an error for an unknown payload kind")
	}
}

func TestLifetimeTargetsFiltersByHasLifetime(t *testing.T) {
	nodes := []lifetime.Node{
		{Kind: lifetime.KindAssign, Parent: lifetime.NoIndex, Declaration: lifetime.NoIndex},
		{Kind: lifetime.KindItem, Parent: lifetime.NoIndex, Declaration: lifetime.NoIndex, Names: []string{"x"}},
	}

	targets := lifetimeTargets(nodes)
	if len(targets) != 1 || targets[0] != 1 {
		t.Errorf("expected only the Item node to be a target, got %v", targets)
	}
}
