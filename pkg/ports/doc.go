/*
Package ports defines the driven ports (interfaces) of the Arbor engine.

These interfaces decouple the session manager from its storage and
coordination backends.

# Key Interfaces

  - PageStore: bounded, evicting storage for the pages of one session.
  - DistributedLocker: serializes requests of a session across replicas.
  - SessionIndex: shared listing of live sessions for inspection tools.
*/
package ports
