// Package llm provides the OpenAI-compatible chat client behind the cleaning
// rewriter and the tagging suggester.
//
// # Entry Points
//
// NewClient: construct a client from Config.
// Client.Rewrite: rewrite a rule-cleaned description (cleaning.Rewriter).
// Client.SuggestTags: propose taxonomy labels as JSON (tagging.Suggester).
// Client.HealthCheck: verify the API key and model answer a trivial prompt.
//
// # Retry Behaviour
//
// The client retries on HTTP 408/429/5xx errors, network timeouts and empty
// completions with exponential backoff (base 1s, max 10s, three attempts by
// default). A token-bucket limiter spaces requests to the configured
// requests per minute. Context cancellation aborts retries immediately.
//
// Failures are wrapped with services.ErrService; a missing API key is
// reported as services.ErrConfiguration.
package llm
