package openapi

import (
	"github.com/danielgtaylor/huma/v2"
	// Registers the application/cbor format with huma.
	_ "github.com/danielgtaylor/huma/v2/formats/cbor"
)

const (
	mediaTypeJSON = "application/json"
	mediaTypeCBOR = "application/cbor"
)

// Config returns the huma configuration shared by the server and tests.
//
// Response bodies carry no $schema link field, so clients see exactly the
// documented payload. Every operation documents application/cbor next to
// application/json for request and response bodies.
func Config(title, version string) huma.Config {
	cfg := huma.DefaultConfig(title, version)
	cfg.DocsPath = "/api-docs"
	cfg.CreateHooks = nil
	cfg.OnAddOperation = append(cfg.OnAddOperation, documentCBOR)
	return cfg
}

func documentCBOR(_ *huma.OpenAPI, op *huma.Operation) {
	if op.RequestBody != nil && op.RequestBody.Content != nil {
		if c, ok := op.RequestBody.Content[mediaTypeJSON]; ok {
			op.RequestBody.Content[mediaTypeCBOR] = c
		}
	}
	for _, resp := range op.Responses {
		if resp.Content == nil {
			continue
		}
		if c, ok := resp.Content[mediaTypeJSON]; ok {
			resp.Content[mediaTypeCBOR] = c
		}
	}
}
