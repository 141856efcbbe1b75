// Package api contains the HTTP handlers, request/response models, and
// error mapping for the task management API. Handlers stay thin: they
// decode and validate input, delegate to the domain and store layers, and
// translate errors to sanitized HTTP responses.
package api
