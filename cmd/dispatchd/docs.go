package main

// General API documentation for swaggo. Regenerate with `swag init -g cmd/dispatchd/docs.go`.
//
// @title           dispatchd API
// @version         1.0
// @description     HTTP API for named event channels and the sinks listening to them.
//
// @contact.name   dispatchd maintainers
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
