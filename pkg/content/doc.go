/*
Package content turns content blocks plus a parameter bag into a single
render-ready fragment.

Placeholders take the form {name}. Substituting a name absent from the bag
fails with domain.UnboundParameterError. Successive fragments are joined with a
separator only when both sides are non-empty, so empty feedback or empty state
content never leaves a stray line break behind.
*/
package content
