// Package notify provides the business boundary for stormnotify's customer
// notification system. It defines the Matcher (alert-to-policy relevance),
// Composer (LLM notification generation), Pipeline (failure-tolerant batch
// orchestration over a bounded worker pool), Service (run lifecycle and async
// dispatch), Store interface (run persistence), and domain models.
package notify
