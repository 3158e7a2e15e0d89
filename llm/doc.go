// Package llm defines chat-completion types and the Client used by the
// insight extractor. Backends implement Backend and live in sub-packages
// (llm/openai).
//
//	backend, _ := openai.NewProvider(cfg.OpenAI)
//	client := llm.New(backend, cfg.LLM, provider.WithResilience[llm.CompletionRequest, *llm.CompletionResponse](policy))
//	text, err := client.CompleteText(ctx, systemPrompt, userPrompt)
package llm
