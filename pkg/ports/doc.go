/*
Package ports defines the driven ports (interfaces) of the Lattice engine.

These interfaces decouple the resolver from its collaborators, so the same
engine runs against in-memory fakes in tests and against Loam, BoltDB or Redis
in production.

# Key Interfaces

  - ExplorationStore: loads exploration graphs by id.
  - WidgetRegistry / Widget: resolves interactive widget kinds to implementations.
  - AnalyticsEmitter: receives state-hit, answer and feedback events (fire-and-forget).
  - ExpressionEvaluator: evaluates predicate and parameter expressions.
  - SessionStore / DistributedLocker: server-held playthroughs for stateful transports.
*/
package ports
