// Package gas calls the Google Apps Script web app that fronts Gmail.
//
// Every call is a single HTTP GET against the configured endpoint carrying
// the query parameters action and apiKey plus the operation's arguments. The
// response body must be JSON; it is returned unmodified so callers can
// pretty-print it without disturbing key order.
//
// The client performs no retries, caching or pagination. Errors are typed:
// *RemoteError for transport failures and non-2xx statuses, *FormatError for
// bodies that are not JSON. Neither ever contains the API key.
package gas
