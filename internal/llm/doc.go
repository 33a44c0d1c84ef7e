// Package llm suggests transaction categories with a hosted language model.
// It supports OpenAI and Anthropic, with retry logic, rate limiting and
// response caching.
package llm
