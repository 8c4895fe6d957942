/*
Package analytics provides AnalyticsEmitter building blocks: a no-op emitter,
an in-memory Recorder, a fan-out Multi, a structured-log emitter and Async,
which decouples the engine from slow sinks with a bounded buffer.

Emitters never report errors to the engine. Sinks that can fail log and move on.
*/
package analytics
