/*
Package domain contains the core request/response model and error taxonomy of Arbor.

It is kept free of I/O and of the component machinery itself, so that adapters
(HTTP, Redis, CLI) can depend on it without pulling in the traversal code.

# Key Entities

  - Request: what a transport hands to the core (session id, page id, resource, submitted tokens).
  - Response: what the core hands back (a rendered body, a redirect to a page, or a structured error).
  - Hooks: lifecycle callbacks used for logging and metrics.
  - Errors: sentinels (ErrSessionExpired, ErrPageExpired, ErrProtocol, ...) mapped to response codes.
*/
package domain
