/*
Package domain contains the core models of the Lattice exploration engine.

It defines the read-only exploration graph (Explorations, States, Prompts and
Rules), the per-session context threaded through requests, the transient
request/outcome values exchanged with the engine, and the analytics events it
emits. This package holds no I/O and no persistence concerns.

# Key Entities

  - Exploration: an immutable directed graph of States with a designated initial state.
  - State: a node carrying content blocks, an optional Prompt and parameter changes.
  - Prompt: a widget configuration plus ordered Rules, grouped per answer handler.
  - Rule: a Predicate, a destination (state id or END) and optional feedback.
  - Session: the parameter bag and visited-state history owned by one participant.
  - Outcome: the result of resolving one submitted answer.
*/
package domain
