// Package services talks to the SetSmith backend.
//
// # Gateway
//
// [Gateway] is the only way workflows reach the backend. [CatalogService] implements it
// on top of [APIService] and is stateless, so one value serves every screen.
//
// # Transport
//
// [APIService] attaches the session cookie (see [NewSessionClient]), asks for JSON and
// never follows redirects. Every failure is classified:
//   - transport errors and timeouts : [shared.ErrNetwork]
//   - 401, 403 or a redirect to /login : [shared.ErrAuthRequired]
//   - 404 : [shared.ErrNotFound]
//   - any other non-2xx status or an undecodable body : [shared.ErrUpstream]
//
// Local validation failures ([shared.ErrValidation]) are returned before a request is
// built. Nothing is retried.
//
// # Wire format
//
// create-set sends genres as one comma-joined string (or null when genre filtering is
// off), visibility as 1 (public) or 2 (private) and duration in whole minutes or null.
package services
