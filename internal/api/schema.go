package api

import (
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// submissionSchema describes the webhook body. Title and message are not
// listed as required so that missing fields produce the hub's own
// validation error.
const submissionSchema = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"properties": {
		"title":     {"type": ["string", "null"], "maxLength": 512},
		"message":   {"type": ["string", "null"], "maxLength": 8192},
		"type":      {"type": ["string", "null"], "maxLength": 64},
		"timestamp": {"type": ["string", "null"]},
		"sender":    {"type": ["string", "null"], "maxLength": 256}
	}
}`

func compileSubmissionSchema() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(submissionSchema))
	if err != nil {
		return nil, fmt.Errorf("parsing submission schema: %w", err)
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource("submission.json", doc); err != nil {
		return nil, fmt.Errorf("adding submission schema: %w", err)
	}
	sch, err := c.Compile("submission.json")
	if err != nil {
		return nil, fmt.Errorf("compiling submission schema: %w", err)
	}
	return sch, nil
}

var payloadSchema = mustCompile(compileSubmissionSchema)

func mustCompile(fn func() (*jsonschema.Schema, error)) *jsonschema.Schema {
	sch, err := fn()
	if err != nil {
		panic(err)
	}
	return sch
}
