package rpc

import (
	"context"
	"encoding/json"
	"strings"

	"connectrpc.com/connect"

	"pipelinecheck/internal/pipeline/graph"
)

// PipelineServiceClient calls a running gateway over Connect.
type PipelineServiceClient struct {
	parse *connect.Client[json.RawMessage, graph.Report]
	ping  *connect.Client[PingRequest, PingResponse]
}

func NewPipelineServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *PipelineServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(jsonCodec{})}, opts...)
	return &PipelineServiceClient{
		parse: connect.NewClient[json.RawMessage, graph.Report](httpClient, baseURL+ParsePipelineProcedure, opts...),
		ping:  connect.NewClient[PingRequest, PingResponse](httpClient, baseURL+PingProcedure, opts...),
	}
}

// ParsePipeline sends raw submission JSON and returns the gateway's report.
func (c *PipelineServiceClient) ParsePipeline(ctx context.Context, raw []byte) (*graph.Report, error) {
	msg := json.RawMessage(raw)
	res, err := c.parse.CallUnary(ctx, connect.NewRequest(&msg))
	if err != nil {
		return nil, err
	}
	return res.Msg, nil
}

func (c *PipelineServiceClient) Ping(ctx context.Context) (*PingResponse, error) {
	res, err := c.ping.CallUnary(ctx, connect.NewRequest(&PingRequest{}))
	if err != nil {
		return nil, err
	}
	return res.Msg, nil
}
