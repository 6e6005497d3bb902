/*
Package component implements the stateful component tree and its decoration chains.

A component embeds Core and implements RenderContent. Every component owns a
chain of decorations that sits in front of it: requests traverse the chain
from its head, so a decoration can wrap, replace or short-circuit the three
traversals (render, process callbacks, backtrack).

	[globals, most recent first][locals, most recent first][component]

The chain head and every decoration's next link live in snapshot cells, so
restoring a page snapshot restores the chain topology as well. Call and
Answer are built on top of the chain: a Delegate in front of the caller
forwards to the callee, and an AnswerHandler in front of the callee holds the
continuation that resumes the caller.
*/
package component
