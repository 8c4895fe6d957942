/*
Package dsl provides a fluent Go builder for Lattice explorations.

It is the programmatic alternative to YAML/JSON definitions, handy for tests,
generated content and IDE-checked authoring.

Example usage:

	b := dsl.New("yes-no").Title("Are you sure?")

	b.Add("A").
		Text("<p>Are you sure?</p>").
		Widget("TextInput").
		When(dsl.Equals("yes"), "B").
		Otherwise("A", "Think again.")

	b.Add("B").
		Text("<p>Confirmed.</p>").
		Widget("Continue").
		Otherwise(dsl.End, "Done")

	store, err := b.Store() // a memory.ExplorationStore holding the exploration
*/
package dsl
