// llmcouncil dispatches questions to a council of LLM backends, stores the
// exchange as session steps, and supports follow-up probes and cross-model
// critique over the stored history.
package main

func main() {
	Execute()
}
