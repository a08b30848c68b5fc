package httpserver

const openAPISpec = `{
  "openapi": "3.0.3",
  "info": {
    "title": "baseconv API",
    "version": "1.0.0",
    "description": "Converts signed numbers between bases 2 and 36, including fractional parts."
  },
  "paths": {
    "/convert": {
      "post": {
        "summary": "Convert one number",
        "requestBody": {
          "required": true,
          "content": {"application/json": {"schema": {"$ref": "#/components/schemas/ConvertRequest"}}}
        },
        "responses": {
          "200": {"description": "Converted value"},
          "400": {"description": "Invalid base or precision"},
          "422": {"description": "Malformed number or invalid digit"},
          "429": {"description": "Rate limit exceeded"}
        }
      }
    },
    "/convert/batch": {
      "post": {
        "summary": "Convert many numbers; each item succeeds or fails independently",
        "requestBody": {
          "required": true,
          "content": {"application/json": {"schema": {
            "type": "object",
            "properties": {"items": {"type": "array", "items": {"$ref": "#/components/schemas/ConvertRequest"}}}
          }}}
        },
        "responses": {
          "200": {"description": "Per-item results in request order"},
          "413": {"description": "Batch exceeds maxBatchSize"}
        }
      }
    },
    "/config": {
      "get": {"summary": "Current conversion settings", "responses": {"200": {"description": "Settings"}}},
      "put": {
        "summary": "Update and persist conversion settings",
        "requestBody": {
          "required": true,
          "content": {"application/json": {"schema": {
            "type": "object",
            "properties": {
              "stripZeros": {"type": "boolean"},
              "precision": {"type": "integer", "minimum": 0},
              "autoConvert": {"type": "boolean"}
            }
          }}}
        },
        "responses": {"200": {"description": "Updated settings"}, "400": {"description": "Rejected update"}}
      }
    },
    "/healthz": {
      "get": {"summary": "Liveness check", "responses": {"200": {"description": "Service is up"}}}
    }
  },
  "components": {
    "schemas": {
      "ConvertRequest": {
        "type": "object",
        "required": ["from", "to", "number"],
        "properties": {
          "from": {"type": "integer", "minimum": 2, "maximum": 36},
          "to": {"type": "integer", "minimum": 2, "maximum": 36},
          "number": {"oneOf": [{"type": "string"}, {"type": "number"}], "example": "-1A.8"},
          "precision": {"type": "integer", "minimum": 0},
          "stripZeros": {"type": "boolean"}
        }
      }
    }
  }
}
`
