package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"

	"github.com/tryluxor/server/internal/agent/graph/parsers"
	"github.com/tryluxor/server/internal/catalog"
	logx "github.com/tryluxor/server/pkg/logger"
)

// ===================================
// Product Lookup Tool
// ===================================

// ProductFinder runs the catalog lookup behind the tool.
type ProductFinder interface {
	Find(ctx context.Context, query string, n int) (catalog.LookupResult, error)
}

type ProductLookupInput struct {
	Query string `json:"query"`
	N     int    `json:"n,omitempty"`
}

type productLookupTool struct {
	finder       ProductFinder
	defaultLimit int
}

// NewProductLookupTool exposes the catalog lookup as an invokable tool. A
// failing lookup is reported to the model as an "Error: ..." result.
func NewProductLookupTool(finder ProductFinder, defaultLimit int) tool.InvokableTool {
	if defaultLimit <= 0 {
		defaultLimit = catalog.DefaultLookupLimit
	}
	return &productLookupTool{finder: finder, defaultLimit: defaultLimit}
}

func (t *productLookupTool) Info(context.Context) (*schema.ToolInfo, error) {
	return &schema.ToolInfo{
		Name: parsers.ToolProductLookup,
		Desc: "Search the product catalog by meaning, falling back to a name/description match. Returns matching products with price, stock and rating.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"query": {
				Type:     schema.String,
				Desc:     "What the customer is looking for, e.g. \"black handbags\" or \"stylish living room furniture\".",
				Required: true,
			},
			"n": {
				Type: schema.Integer,
				Desc: fmt.Sprintf("Maximum number of products to return (default: %d)", t.defaultLimit),
			},
		}),
	}, nil
}

func (t *productLookupTool) InvokableRun(ctx context.Context, argumentsInJSON string, _ ...tool.Option) (string, error) {
	var in ProductLookupInput
	if err := json.Unmarshal([]byte(argumentsInJSON), &in); err != nil {
		logx.Warn().Err(err).Str("arguments", argumentsInJSON).Msg("invalid product_lookup arguments")
		return "Error: invalid arguments: " + err.Error(), nil
	}
	if in.N <= 0 {
		in.N = t.defaultLimit
	}

	res, err := t.finder.Find(ctx, in.Query, in.N)
	if err != nil {
		logx.Error().Err(err).Str("query", in.Query).Msg("product lookup failed")
		return "Error: " + err.Error(), nil
	}

	logx.Debug().
		Str("query", in.Query).
		Str("source", res.Source).
		Int("total", res.Total).
		Msg("product lookup finished")

	if len(res.Products) == 0 {
		return catalog.NoProductsFound, nil
	}
	b, err := json.Marshal(res)
	if err != nil {
		return "", fmt.Errorf("marshal lookup result: %w", err)
	}
	return string(b), nil
}

// LookupArguments encodes a query as product_lookup arguments.
func LookupArguments(query string) string {
	b, _ := json.Marshal(ProductLookupInput{Query: strings.TrimSpace(query)})
	return string(b)
}

// SanitizeArguments normalizes product_lookup arguments before execution.
// Malformed input is passed through untouched.
func SanitizeArguments(name, arguments string) string {
	if name != parsers.ToolProductLookup {
		return arguments
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(arguments), &m); err != nil {
		return arguments
	}
	if v, ok := m["query"]; ok {
		switch vv := v.(type) {
		case string:
			m["query"] = strings.TrimSpace(vv)
		default:
			m["query"] = strings.TrimSpace(fmt.Sprint(v))
		}
	}
	if v, ok := m["n"]; ok {
		if f, isNum := v.(float64); !isNum || f < 1 {
			delete(m, "n")
		} else {
			m["n"] = int(f)
		}
	}
	b, err := json.Marshal(m)
	if err != nil {
		return arguments
	}
	return string(b)
}
