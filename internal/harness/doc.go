// Package harness provides scenario-driven conformance testing for the
// phaseflow engine.
//
// A scenario describes one or more compilation events as a pipeline of
// phases over an in-memory graph: how many nodes pre-exist, and how many
// each phase creates or deletes. The harness drives a real Collector
// through the pre-phase/post-phase hooks and captures the artifact each
// event produces.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: three-phase-pipeline
//	description: "What this scenario validates"
//	strategy: sidetable          # optional: sidetable (default) | property
//	events:
//	  - token: evt-basic
//	    preexisting: 2
//	    phases:
//	      - kind: Canonicalizer
//	        creates: 1
//	      - kind: Inliner
//	        creates: 1
//	        deletes: 0
//
// # Deterministic Testing
//
// Events run sequentially, node IDs are assigned in order, and the phase
// index insertion order follows the scenario, so the produced artifacts
// are byte-stable and suitable for golden file comparison via goldie.
package harness
