// Package agent implements the tool-augmented think loop: extracting tool
// calls from model output, dispatching them to registered handlers, and
// iterating with continuation prompts until the model stops requesting
// tools or the iteration cap is reached.
//
// The loop is deliberately text-based. Models emit tool calls inline as
//
//	<tool>{"tool":"file-io","params":{"action":"read","path":"notes.md"}}</tool>
//
// so the same wire format works against every backend, including ones with
// no native function-calling support. Extraction, execution, and the loop
// itself are separate types so hosts can use any subset:
//
//	ws := agent.NewWorkspace(dir)
//	tools := agent.NewRegistry()
//	agent.RegisterCoreTools(tools, ws, agent.CoreToolOptions{})
//	loop := agent.NewLoop(registry, tools)
//	res, err := loop.Think(ctx, agent.ThinkRequest{User: "...", AllowTools: true})
package agent
