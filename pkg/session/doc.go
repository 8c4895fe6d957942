/*
Package session drives server-held playthroughs for transports that cannot
ask the client to carry the session (websocket, terminal).

The engine itself is stateless. Manager loads a playthrough, feeds it through
the engine and saves the result, serialising access per session ID with a
local ref-counted mutex and, optionally, a distributed lock shared across
replicas.
*/
package session
