// Command fplhelper answers Fantasy Premier League questions by turning them
// into SQL over a local player table and asking an LLM for advice on the rows.
package main

func main() {
	Execute()
}
