package llm

// openRouterBaseURL is the OpenAI-compatible chat endpoint on OpenRouter.
const openRouterBaseURL = "https://openrouter.ai/api/v1/chat/completions"

// NewOpenRouterProvider returns a CompletionProvider that speaks the same
// chat-completions wire format as OpenAI, routed through OpenRouter. The
// attribution headers identify quill per OpenRouter's API guidelines.
func NewOpenRouterProvider(apiKey, model string) *OpenAIProvider {
	p := NewOpenAIProvider(apiKey, model)
	p.baseURL = openRouterBaseURL
	p.headers = map[string]string{
		"X-Title": "quill",
	}
	return p
}
