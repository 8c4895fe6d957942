/*
Package lattice is an interaction engine for explorations: branching graphs of
states that a participant walks through one answer at a time.

Each state shows content and an interactive widget (free text, a number, a
multiple choice, a continue button). The participant's answer is classified
against the state's ordered rules; the first matching rule names the next
state (or END) and the feedback to show. The engine keeps no per-participant
state: the parameter context and the visit history travel with every request
and come back updated in the outcome.

# Architecture

The engine follows a hexagonal layout. Exploration stores (memory, bbolt,
Redis, a Loam-managed directory), analytics sinks (Prometheus, Redis
streams, slog) and transports (HTTP with websocket play, MCP, the terminal
player) are adapters around the ports in pkg/ports.

# Usage

	eng, err := lattice.New(lattice.WithDir("./explorations"))
	if err != nil {
		log.Fatal(err)
	}
	view, _ := eng.Start(ctx, "quiz")
	out, _ := eng.Submit(ctx, domain.Request{
		ExplorationID: view.ExplorationID,
		StateID:       view.StateID,
		Answer:        42,
		BlockNumber:   view.BlockNumber,
		Params:        view.Params,
		StateHistory:  view.StateHistory,
	})
	fmt.Println(out.ContentHTML, out.Finished)
*/
package lattice
