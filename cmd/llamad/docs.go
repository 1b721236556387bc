package main

// General API documentation for swaggo. Run `make swagger-gen` to generate docs.
//
// @title           llamad API
// @version         1.0
// @description     HTTP API for downloading, loading and running local language models.
//
// @contact.name   llamad maintainers
// @contact.url    https://github.com/your-org/llamad
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
