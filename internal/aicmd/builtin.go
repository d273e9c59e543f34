package aicmd

import (
	"context"
	"fmt"
	"time"

	"github.com/dop251/goja"
	"github.com/valyala/fasthttp"

	"flowkit/internal/contract"
	"flowkit/internal/runctx"
)

const (
	// maxToolResponseBody caps tool HTTP response bodies; longer bodies are
	// truncated before being handed back to the model.
	maxToolResponseBody = 10 * 1024

	httpToolTimeout   = 30 * time.Second
	scriptToolTimeout = 5 * time.Second
)

// NewBuiltinTools returns a registry pre-populated with the builtin tools
// every AI command may declare: http_request and eval_script.
func NewBuiltinTools() *Tools {
	tools := NewTools()
	tools.MustRegister("http_request", HTTPRequestTool())
	tools.MustRegister("eval_script", EvalScriptTool())
	return tools
}

// HTTPRequestTool sends an HTTP request on the model's behalf via the shared
// fasthttp client.
func HTTPRequestTool() *Tool {
	return &Tool{
		Description: "Send an HTTP request to a URL and return status, headers, and body",
		Input: contract.Object(map[string]contract.Validator{
			"method":  contract.Enum("GET", "POST", "PUT", "DELETE"),
			"url":     contract.String(),
			"headers": contract.Any(),
			"body":    contract.String(),
		}).Require("method", "url"),
		Execute: execHTTPRequest,
	}
}

func execHTTPRequest(ctx context.Context, args map[string]any, rc *runctx.Context) (any, error) {
	method, _ := args["method"].(string)
	rawURL, _ := args["url"].(string)

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(rawURL)
	req.Header.SetMethod(method)

	if headers, ok := args["headers"].(map[string]any); ok {
		for k, v := range headers {
			if s, ok := v.(string); ok {
				req.Header.Set(k, s)
			}
		}
	}
	if body, ok := args["body"].(string); ok && body != "" {
		req.SetBodyString(body)
	}

	client := &fasthttp.Client{}
	if err := client.DoTimeout(req, resp, httpToolTimeout); err != nil {
		return nil, fmt.Errorf("http_request to %s failed: %w", rawURL, err)
	}

	headers := make(map[string]string)
	resp.Header.VisitAll(func(key, value []byte) {
		headers[string(key)] = string(value)
	})

	body := resp.Body()
	if len(body) > maxToolResponseBody {
		body = body[:maxToolResponseBody]
	}

	return map[string]any{
		"status_code": resp.StatusCode(),
		"headers":     headers,
		"body":        string(body),
	}, nil
}

// EvalScriptTool evaluates a JavaScript expression in an isolated VM with the
// supplied variables bound as globals.
func EvalScriptTool() *Tool {
	return &Tool{
		Description: "Evaluate a JavaScript expression and return its value",
		Input: contract.Object(map[string]contract.Validator{
			"expression": contract.String(),
			"variables":  contract.Any(),
		}).Require("expression"),
		Execute: execEvalScript,
	}
}

func execEvalScript(ctx context.Context, args map[string]any, rc *runctx.Context) (any, error) {
	expression, _ := args["expression"].(string)

	vm := goja.New()
	if vars, ok := args["variables"].(map[string]any); ok {
		for name, val := range vars {
			if err := vm.Set(name, val); err != nil {
				return nil, fmt.Errorf("eval_script: binding %q: %w", name, err)
			}
		}
	}

	timer := time.AfterFunc(scriptToolTimeout, func() {
		vm.Interrupt("script timed out")
	})
	defer timer.Stop()

	value, err := vm.RunString(expression)
	if err != nil {
		return nil, fmt.Errorf("eval_script: %w", err)
	}
	return value.Export(), nil
}
