package registry

const (
	// Route provider (LI.FI aggregator).
	LiFiBaseURL = "https://li.quest/v1"

	// Security data provider (DefiLlama).
	LlamaBaseURL = "https://api.llama.fi"
)
