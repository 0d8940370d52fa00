// Package grok implements the ownership lookup client against the xAI
// chat completions API with Live Search over X.
//
// The lookup is a two-agent workflow: a cheap existence probe asks
// whether any post mentions the wallet address at all, and only when one
// does a second call analyzes the posts for the owning handle and a
// confidence level. The confidence rubric lives in the external model's
// prompt; this package treats the returned level as an opaque value and
// only normalizes it to the four known states.
package grok
