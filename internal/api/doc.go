// Package api exposes card sets, imports and game sessions over HTTP.
//
// Handlers decode and validate requests, call the service layer and map
// its errors to status codes through HandleAPIError, so internal error
// details never reach clients.
package api
