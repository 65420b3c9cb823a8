package loader

// pipelineSchemaJSON is the authoritative schema for pipeline documents.
// Structural defaults and referential checks (needs exist, filters resolve)
// live in the normalize package; this schema guards shape and required fields.
const pipelineSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["apiVersion", "kind", "metadata", "jobs"],
  "properties": {
    "apiVersion": {"type": "string"},
    "kind": {"type": "string", "const": "Pipeline"},
    "metadata": {
      "type": "object",
      "required": ["name"],
      "properties": {
        "name": {"type": "string", "minLength": 1},
        "description": {"type": "string"}
      }
    },
    "trunkBranch": {"type": "string"},
    "concurrencyGroup": {"type": "string"},
    "filters": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name", "patterns"],
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "patterns": {
            "type": "array",
            "minItems": 1,
            "items": {"type": "string", "minLength": 1}
          }
        }
      }
    },
    "jobs": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["name", "steps"],
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "needs": {"type": "array", "items": {"type": "string"}},
          "when": {
            "type": "object",
            "properties": {
              "events": {
                "type": "array",
                "items": {"enum": ["push", "pull_request", "merge_group"]}
              },
              "filter": {"type": "string"}
            }
          },
          "matrix": {
            "type": "object",
            "required": ["axes"],
            "properties": {
              "axes": {
                "type": "object",
                "additionalProperties": {
                  "type": "array",
                  "minItems": 1,
                  "items": {"type": "string"}
                }
              },
              "include": {
                "type": "array",
                "items": {
                  "type": "object",
                  "additionalProperties": {"type": "string"}
                }
              }
            }
          },
          "steps": {
            "type": "array",
            "minItems": 1,
            "items": {
              "type": "object",
              "required": ["name"],
              "properties": {
                "name": {"type": "string", "minLength": 1},
                "run": {"type": "string"},
                "uses": {"type": "string"},
                "if": {"type": "string"},
                "continueOnError": {"type": "boolean"},
                "timeout": {"type": "string"},
                "install": {
                  "type": "object",
                  "required": ["lockfile", "path"],
                  "properties": {
                    "lockfile": {"type": "string", "minLength": 1},
                    "tool": {"type": "string"},
                    "path": {"type": "string", "minLength": 1}
                  }
                }
              }
            }
          },
          "artifact": {
            "type": "object",
            "required": ["name", "paths"],
            "properties": {
              "name": {"type": "string", "minLength": 1},
              "paths": {
                "type": "array",
                "minItems": 1,
                "items": {"type": "string", "minLength": 1}
              },
              "when": {"type": "string"}
            }
          }
        }
      }
    }
  }
}`
