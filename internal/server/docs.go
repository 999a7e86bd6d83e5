// Package server provides the HTTP server of the VyFood storefront.
//
// This file contains general API documentation annotations for Swag/OpenAPI generation.
// Individual endpoint annotations live in the handler files.
package server

// @title VyFood Storefront API
// @version 1.0
// @description Storefront API for the VyFood shop: catalog browsing, a server-side cart that is reconciled against the live catalog on every load, checkout and a small back office.
// @description
// @description Features:
// @description - Product listing with expression filters, categories and paging
// @description - Cart reconciliation with localized notices (English, Vietnamese)
// @description - Real-time catalog and cart updates via WebSocket and Server-Sent Events
// @description - Admin product management guarded by an API key
//
// @host localhost:8080
// @BasePath /api/v1
//
// @securityDefinitions.apikey AdminKey
// @in header
// @name X-Admin-Key
// @description Admin key for the /admin endpoints
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Backend session token, forwarded as "Bearer <token>"
