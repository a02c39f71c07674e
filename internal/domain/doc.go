// Package domain contains the core concepts of the url2pdf service.
// Keep this package free of transport (HTTP) and infrastructure (Chrome/Redis) concerns.
package domain
