// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package tools defines the analysis tools exposed over MCP and executes
// calls against them.
//
// Each tool is described by a Definition whose InputSchema is a JSON
// Schema object. Arguments arrive as raw JSON, are decoded into a typed
// struct and validated before the tool runs.
//
// Thread Safety:
//
//	All types in this package are safe for concurrent use.
package tools

import (
	"context"
	"encoding/json"
	"errors"
)

var (
	// ErrUnknownTool indicates a call named a tool that is not registered.
	ErrUnknownTool = errors.New("unknown tool")

	// ErrInvalidArguments indicates arguments that failed to decode or validate.
	ErrInvalidArguments = errors.New("invalid arguments")
)

// ParamType is a JSON Schema primitive type.
type ParamType string

const (
	ParamTypeString ParamType = "string"
	ParamTypeBool   ParamType = "boolean"
	ParamTypeArray  ParamType = "array"
	ParamTypeObject ParamType = "object"
)

// ParamDef defines a single tool parameter.
type ParamDef struct {
	// Type is the parameter type.
	Type ParamType `json:"type"`

	// Description explains what the parameter is for.
	Description string `json:"description,omitempty"`

	// Default is the value used when the parameter is omitted.
	Default any `json:"default,omitempty"`

	// Enum restricts values to a set of options.
	Enum []string `json:"enum,omitempty"`

	// Items defines the element type of an array parameter.
	Items *ParamDef `json:"items,omitempty"`
}

// Schema is the JSON Schema object describing a tool's arguments.
type Schema struct {
	Type       ParamType           `json:"type"`
	Properties map[string]ParamDef `json:"properties"`
	Required   []string            `json:"required,omitempty"`
}

// Definition describes a tool as listed by tools/list.
type Definition struct {
	// Name is the unique identifier for the tool.
	Name string `json:"name"`

	// Description explains what the tool does.
	Description string `json:"description"`

	// InputSchema defines the tool arguments.
	InputSchema Schema `json:"inputSchema"`
}

// Tool is an executable tool.
type Tool interface {
	// Name returns the unique tool name.
	Name() string

	// Definition returns the tool's schema.
	Definition() Definition

	// Execute runs the tool.
	//
	// Inputs:
	//   ctx - Context for cancellation
	//   args - Raw JSON arguments; may be empty
	//
	// Outputs:
	//   *Result - The tool output, possibly flagged as an error
	//   error - Non-nil only for failures the caller must surface as
	//           protocol errors
	Execute(ctx context.Context, args json.RawMessage) (*Result, error)
}

// Result is the text content returned by a tool call.
type Result struct {
	// Text is the payload, usually indented JSON.
	Text string

	// IsError marks a request-level failure described by Text.
	IsError bool
}

// errorResult builds an error-flagged result.
func errorResult(text string) *Result {
	return &Result{Text: text, IsError: true}
}

// jsonResult renders v as indented JSON.
func jsonResult(v any) (*Result, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return &Result{Text: string(data)}, nil
}
