/*
Package session implements the page/session state machine.

A Manager owns a directory of live sessions. Each session keeps one live
component tree and a bounded store of pages; a page is an immutable snapshot
of the tree plus the callbacks rendered on it. Requests address a page:

  - render requests restore the page, render it and store the result as a new page;
  - callback requests restore the page, run the submitted callbacks and store
    the resulting state as a new page, redirecting the client to it.

Requests of one session are serialized by a refcounted per-session mutex and,
optionally, a distributed lock shared by every replica.
*/
package session
