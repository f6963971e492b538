package agentruntime

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime/types"
)

// BedrockConfig selects the AWS environment for the Bedrock Agent Runtime client.
// Empty fields fall back to the SDK's default resolution chain.
type BedrockConfig struct {
	Region   string
	Profile  string
	Endpoint string
}

// responseStreamReader is satisfied by *bedrockagentruntime.InvokeAgentEventStream
type responseStreamReader interface {
	Events() <-chan types.ResponseStream
	Close() error
	Err() error
}

type openStreamFunc func(ctx context.Context, in *bedrockagentruntime.InvokeAgentInput) (responseStreamReader, error)

// BedrockClient implements Client on top of the Bedrock Agent Runtime InvokeAgent operation
type BedrockClient struct {
	open openStreamFunc
}

// NewBedrockClient loads the ambient AWS configuration and creates a client
func NewBedrockClient(ctx context.Context, cfg BedrockConfig) (*BedrockClient, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.Profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(cfg.Profile))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return NewBedrockClientFromConfig(awsCfg, cfg.Endpoint), nil
}

// NewBedrockClientFromConfig creates a client from an already loaded AWS configuration
func NewBedrockClientFromConfig(awsCfg aws.Config, endpoint string) *BedrockClient {
	client := bedrockagentruntime.NewFromConfig(awsCfg, func(o *bedrockagentruntime.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	return &BedrockClient{
		open: func(ctx context.Context, in *bedrockagentruntime.InvokeAgentInput) (responseStreamReader, error) {
			out, err := client.InvokeAgent(ctx, in)
			if err != nil {
				return nil, err
			}
			return out.GetStream(), nil
		},
	}
}

// InvokeAgent starts the invocation and returns its response stream
func (c *BedrockClient) InvokeAgent(ctx context.Context, req Request) (Stream, error) {
	in := &bedrockagentruntime.InvokeAgentInput{
		AgentId:      aws.String(req.AgentID),
		AgentAliasId: aws.String(req.AgentAliasID),
		SessionId:    aws.String(req.SessionID),
		InputText:    aws.String(req.InputText),
	}
	if req.EnableTrace {
		in.EnableTrace = aws.Bool(true)
	}
	if req.EndSession {
		in.EndSession = aws.Bool(true)
	}

	reader, err := c.open(ctx, in)
	if err != nil {
		return nil, err
	}
	return &bedrockStream{reader: reader}, nil
}

type bedrockStream struct {
	reader responseStreamReader
}

func (s *bedrockStream) Recv() (Event, error) {
	ev, ok := <-s.reader.Events()
	if !ok {
		if err := s.reader.Err(); err != nil {
			return Event{}, err
		}
		return Event{}, io.EOF
	}
	return convertEvent(ev), nil
}

func (s *bedrockStream) Close() error {
	return s.reader.Close()
}

func convertEvent(ev types.ResponseStream) Event {
	switch v := ev.(type) {
	case *types.ResponseStreamMemberChunk:
		return Event{Kind: EventChunk, Chunk: &Chunk{Bytes: v.Value.Bytes}}
	case *types.ResponseStreamMemberTrace:
		return Event{
			Kind: EventTrace,
			Trace: &TraceInfo{
				AgentID:      aws.ToString(v.Value.AgentId),
				AgentAliasID: aws.ToString(v.Value.AgentAliasId),
				AgentVersion: aws.ToString(v.Value.AgentVersion),
				SessionID:    aws.ToString(v.Value.SessionId),
			},
		}
	case *types.ResponseStreamMemberReturnControl:
		return Event{Kind: EventReturnControl}
	case *types.ResponseStreamMemberFiles:
		return Event{Kind: EventFiles}
	default:
		return Event{Kind: EventUnknown}
	}
}
