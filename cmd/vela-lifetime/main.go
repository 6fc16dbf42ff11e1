// Package main provides the entry point for the vela-lifetime driver.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/vela-lang/vela/internal/lifetime"
	"github.com/vela-lang/vela/internal/srcspan"
)

var (
	version = "0.1.0-alpha"
)

func main() {
	var (
		showVersion = flag.Bool("version", false, "show version information")
		showHelp    = flag.Bool("help", false, "show help information")
		dump        = flag.Bool("dump", false, "print the built node tree instead of a lifetime report")
		concurrency = flag.Int("concurrency", 4, "number of lifetime queries to solve concurrently")
		watchDir    = flag.String("watch", "", "watch a directory of *.events.json dumps and re-run on change")
	)

	flag.Parse()

	if *showVersion {
		fmt.Printf("vela-lifetime %s\n", version)

		return
	}

	if *showHelp {
		showUsage()

		return
	}

	if *watchDir != "" {
		if err := watchLoop(*watchDir, *dump, *concurrency); err != nil {
			log.Fatalf("watch failed: %v", err)
		}

		return
	}

	args := flag.Args()
	if len(args) == 0 {
		fmt.Println("Error: no input file specified")
		showUsage()
		os.Exit(1)
	}

	if err := runFile(args[0], *dump, *concurrency); err != nil {
		log.Fatalf("analysis failed: %v", err)
	}
}

func showUsage() {
	fmt.Println("vela-lifetime - lifetime analysis core for the Vela scripting language")
	fmt.Println()
	fmt.Println("USAGE:")
	fmt.Println("    vela-lifetime [OPTIONS] <EVENTS.JSON>")
	fmt.Println()
	fmt.Println("OPTIONS:")
	fmt.Println("    --version         Show version information")
	fmt.Println("    --help            Show this help message")
	fmt.Println("    --dump            Print the built node tree instead of a lifetime report")
	fmt.Println("    --concurrency N   Number of lifetime queries solved concurrently (default 4)")
	fmt.Println("    --watch DIR       Watch DIR for *.events.json files and re-run on change")
	fmt.Println()
	fmt.Println("EXAMPLES:")
	fmt.Println("    vela-lifetime prog.events.json")
	fmt.Println("    vela-lifetime --dump prog.events.json")
	fmt.Println("    vela-lifetime --watch ./dumps")
}

// jsonEvent is the wire shape for one metadata-stream event (spec.md §6.1).
// Exactly one of the value fields is populated, selected by Payload.
type jsonEvent struct {
	Payload   string   `json:"payload"`
	Range     jsonSpan `json:"range"`
	Kind      string   `json:"kind,omitempty"`
	Key       string   `json:"key,omitempty"`
	StrValue  string   `json:"str_value,omitempty"`
	BoolValue bool     `json:"bool_value,omitempty"`
	NumValue  float64  `json:"num_value,omitempty"`
}

type jsonPosition struct {
	Filename string `json:"filename"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
	Offset   int    `json:"offset"`
}

type jsonSpan struct {
	Start jsonPosition `json:"start"`
	End   jsonPosition `json:"end"`
}

type jsonEnvelope struct {
	SchemaVersion string      `json:"schema_version"`
	Events        []jsonEvent `json:"events"`
}

func toSpan(s jsonSpan) srcspan.Span {
	return srcspan.Span{
		Start: srcspan.Position{Filename: s.Start.Filename, Line: s.Start.Line, Column: s.Start.Column, Offset: s.Start.Offset},
		End:   srcspan.Position{Filename: s.End.Filename, Line: s.End.Line, Column: s.End.Column, Offset: s.End.Offset},
	}
}

func toEnvelope(je jsonEnvelope) (lifetime.StreamEnvelope, error) {
	events := make([]lifetime.Event, 0, len(je.Events))

	for _, e := range je.Events {
		rng := toSpan(e.Range)

		switch e.Payload {
		case "start_node":
			events = append(events, lifetime.StartNode(rng, e.Kind))
		case "end_node":
			events = append(events, lifetime.EndNode(rng, e.Kind))
		case "string":
			events = append(events, lifetime.StringField(rng, e.Key, e.StrValue))
		case "bool":
			events = append(events, lifetime.BoolField(rng, e.Key, e.BoolValue))
		case "number":
			events = append(events, lifetime.NumberField(rng, e.Key, e.NumValue))
		default:
			return lifetime.StreamEnvelope{}, fmt.Errorf("unknown event payload %q", e.Payload)
		}
	}

	return lifetime.StreamEnvelope{SchemaVersion: je.SchemaVersion, Events: events}, nil
}

func loadEnvelope(path string) (lifetime.StreamEnvelope, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return lifetime.StreamEnvelope{}, fmt.Errorf("failed to read file: %w", err)
	}

	var je jsonEnvelope
	if err := json.Unmarshal(raw, &je); err != nil {
		return lifetime.StreamEnvelope{}, fmt.Errorf("failed to parse event stream: %w", err)
	}

	return toEnvelope(je)
}

// lifetimeTargets collects every node index whose kind can carry a
// lifetime of its own, the set SolveAll is asked to resolve.
func lifetimeTargets(nodes []lifetime.Node) []int {
	targets := make([]int, 0, len(nodes))

	for i := range nodes {
		if lifetime.HasLifetime(&nodes[i]) {
			targets = append(targets, i)
		}
	}

	return targets
}

func runFile(path string, dump bool, concurrency int) error {
	envelope, err := loadEnvelope(path)
	if err != nil {
		return err
	}

	nodes, err := lifetime.Build(envelope)
	if err != nil {
		return err
	}

	fmt.Printf("Built %d nodes from %s\n", len(nodes), filepath.Base(path))

	if dump {
		for i := range nodes {
			if nodes[i].Parent == lifetime.NoIndex {
				nodes[i].Dump(nodes, os.Stdout, 0)
			}
		}

		return nil
	}

	targets := lifetimeTargets(nodes)

	results, err := lifetime.SolveAll(context.Background(), nodes, targets, nil, concurrency)
	if err != nil {
		return fmt.Errorf("solving lifetimes: %w", err)
	}

	for _, idx := range targets {
		lt := results[idx]
		if lt == nil {
			continue
		}

		name, _ := nodes[idx].Name()
		fmt.Printf("node %d (%s %q): %s\n", idx, nodes[idx].Kind, name, lt)
	}

	return nil
}

// watchLoop re-runs runFile whenever a *.events.json file in dir is
// created or written, in the shape of the teacher's fsnotify-backed
// vfs.FSNotifyWatcher: a single watcher goroutine feeding a typed event
// channel, debounced so a burst of writes to the same file only triggers
// one rebuild.
func watchLoop(dir string, dump bool, concurrency int) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	fmt.Printf("watching %s for *.events.json changes (ctrl-c to stop)\n", dir)

	var (
		debounce *time.Timer
		pending  string
	)

	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			if !strings.HasSuffix(ev.Name, ".events.json") {
				continue
			}

			pending = ev.Name

			if debounce != nil {
				debounce.Stop()
			}

			debounce = time.AfterFunc(150*time.Millisecond, func() {
				if err := runFile(pending, dump, concurrency); err != nil {
					fmt.Fprintf(os.Stderr, "analysis failed for %s: %v\n", pending, err)
				}
			})
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}

			fmt.Fprintf(os.Stderr, "watch error: %v\n", err)
		}
	}
}
