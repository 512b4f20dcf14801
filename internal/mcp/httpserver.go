package mcp

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const defaultMaxBodyBytes int64 = 1 << 20 // 1MiB

type HTTPServerConfig struct {
	Sessions     *SessionRegistry
	UpstreamURL  string
	MaxBodyBytes int64
}

// NewHTTPEngine wires the streamable MCP handler plus the info and health
// endpoints into one gin engine.
func NewHTTPEngine(server *sdkmcp.Server, cfg HTTPServerConfig) *gin.Engine {
	handler := NewHTTPTransportHandler(server, cfg)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(serverName))
	r.Use(cors.Default())
	r.Use(requestIDMiddleware())

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"name":      serverName,
			"version":   serverVersion,
			"transport": "streamable-http",
			"endpoints": gin.H{
				"mcp":    "/mcp",
				"health": "/health",
			},
		})
	})

	r.GET("/health", func(c *gin.Context) {
		active := 0
		if cfg.Sessions != nil {
			active = cfg.Sessions.Len()
		}
		c.JSON(http.StatusOK, gin.H{
			"status":          "ok",
			"active_sessions": active,
			"upstream_url":    cfg.UpstreamURL,
		})
	})

	r.Any("/mcp", gin.WrapH(handler))
	return r
}

// NewHTTPTransportHandler builds the streamable-HTTP handler with body limit
// and session tracking applied.
func NewHTTPTransportHandler(server *sdkmcp.Server, cfg HTTPServerConfig) http.Handler {
	base := sdkmcp.NewStreamableHTTPHandler(func(*http.Request) *sdkmcp.Server {
		return server
	}, &sdkmcp.StreamableHTTPOptions{})

	h := withBodyLimit(base, cfg.MaxBodyBytes)
	if cfg.Sessions != nil {
		h = withSessionTracking(h, cfg.Sessions)
	}
	return h
}

func withBodyLimit(next http.Handler, limit int64) http.Handler {
	if limit <= 0 {
		limit = defaultMaxBodyBytes
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, limit)
		}
		next.ServeHTTP(w, r)
	})
}

func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Header("X-Request-ID", id)
		c.Next()
	}
}
