package main

import (
	"context"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/planlib"
	"github.com/m-mizutani/planlib/llm/claude"
	"github.com/m-mizutani/planlib/llm/gemini"
	"github.com/m-mizutani/planlib/llm/openai"
)

var errUnsupported = errors.New("unsupported option")

type providerConfig struct {
	name        string
	model       string
	apiKey      string
	gcpProject  string
	gcpLocation string
}

// newClient returns the LLM client for cfg and a function releasing it.
func newClient(ctx context.Context, cfg providerConfig) (planlib.LLMClient, func(), error) {
	noop := func() {}

	switch cfg.name {
	case "openai":
		if cfg.apiKey == "" {
			return nil, nil, goerr.New("--api-key is required for openai")
		}
		var opts []openai.Option
		if cfg.model != "" {
			opts = append(opts, openai.WithModel(cfg.model))
		}
		client, err := openai.New(ctx, cfg.apiKey, opts...)
		if err != nil {
			return nil, nil, goerr.Wrap(err, "failed to create openai client")
		}
		return client, noop, nil

	case "claude":
		if cfg.apiKey == "" {
			return nil, nil, goerr.New("--api-key is required for claude")
		}
		var opts []claude.Option
		if cfg.model != "" {
			opts = append(opts, claude.WithModel(cfg.model))
		}
		client, err := claude.New(ctx, cfg.apiKey, opts...)
		if err != nil {
			return nil, nil, goerr.Wrap(err, "failed to create claude client")
		}
		return client, noop, nil

	case "gemini":
		if cfg.gcpProject == "" || cfg.gcpLocation == "" {
			return nil, nil, goerr.New("--gcp-project and --gcp-location are required for gemini")
		}
		var opts []gemini.Option
		if cfg.model != "" {
			opts = append(opts, gemini.WithModel(cfg.model))
		}
		client, err := gemini.New(ctx, cfg.gcpProject, cfg.gcpLocation, opts...)
		if err != nil {
			return nil, nil, goerr.Wrap(err, "failed to create gemini client")
		}
		return client, func() { _ = client.Close() }, nil

	default:
		return nil, nil, goerr.Wrap(errUnsupported, "unknown provider", goerr.V("provider", cfg.name))
	}
}
