package main

// General API documentation for swaggo. Run `make swagger-gen` to generate docs.
//
// @title           podd API
// @version         1.0
// @description     HTTP API for GPU pod lifecycle management, cost tracking and event streaming.
//
// @contact.name   podd maintainers
// @contact.url    https://github.com/your-org/podd
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
