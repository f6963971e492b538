// Package agentruntime invokes a remote agent once and collects its streamed reply.
//
// Invariants:
// - Every invocation uses a freshly generated session id.
// - Stream events are consumed exactly once, in delivery order.
// - Only chunk events contribute text; partial text is dropped when the stream fails.
//
// Usage:
//
//	client, _ := agentruntime.NewBedrockClient(ctx, agentruntime.BedrockConfig{Region: "us-east-1"})
//	inv, _ := agentruntime.NewInvoker(agentruntime.Config{
//		Client:       client,
//		AgentID:      "AGENT12345",
//		AgentAliasID: "TSTALIASID",
//	})
//	result, _ := inv.Invoke(ctx, "hello")
//	fmt.Println(result.Text)
package agentruntime
