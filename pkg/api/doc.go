// Package api implements the HTTP surface of the analysis gateway.
//
// Routes, mounted under /ai:
//
//	POST /ai/analyze        run or queue an analysis request
//	GET  /ai/usage          global usage and queue length
//	GET  /ai/usage/history  ledger entries and totals
//	GET  /ai/model          the configured model
//	POST /ai/files          upload a dataset to the provider
//
// Every error body has the form {"success": false, "message": ..., "errorType": ...}.
// Validation failures are 400, limit and quota rejections 429, and
// configuration and server failures 500.
package api
