/*
Package callback maps opaque request tokens to the handlers registered while rendering.

A Registry is created for every render pass and stored with the page it rendered.
Tokens are sequential inside a registry and carry a kind prefix ("v" for inputs,
"a" for actions) so the two token spaces never collide.

Processing is two-phase: a Pass is fed the owners reached by the tree traversal,
then Run fires every matched input of those owners before firing at most one action.
*/
package callback
