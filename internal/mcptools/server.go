package mcptools

import (
	"context"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// version is set by the linker at build time.
var version = "dev"

// NewSimilarityMCPServer creates an MCP server with all similarity tools registered.
func NewSimilarityMCPServer(svc *SimilarityService) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "konig",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "build_graph",
		Description: "Fuzzy-hash every file in a directory with ssdeep and build an undirected similarity graph. Artifacts whose similarity score meets the threshold are connected by an edge weighted with the score.",
	}, svc.BuildGraph)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_subgraph",
		Description: "Return the connected component containing an artifact: every artifact transitively similar to it and the edges between them.",
	}, svc.GetSubgraph)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "graph_stats",
		Description: "Report the node count, edge count and density of the current similarity graph.",
	}, svc.GraphStats)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_clusters",
		Description: "List the connected components of the similarity graph, largest first, with edge counts and weight summaries.",
	}, svc.GetClusters)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "similar_to",
		Description: "List the artifacts directly similar to a given artifact, highest score first, along with its digest.",
	}, svc.SimilarTo)

	return server
}

// RunMCPServer starts an HTTP server exposing the similarity MCP tools.
func RunMCPServer(ctx context.Context, svc *SimilarityService, addr string) error {
	server := NewSimilarityMCPServer(svc)

	handler := mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server { return server },
		nil,
	)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	// Shutdown gracefully when context is cancelled.
	go func() {
		<-ctx.Done()
		httpServer.Shutdown(context.Background())
	}()

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
