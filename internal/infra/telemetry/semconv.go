// Package telemetry provides OpenTelemetry setup and semantic conventions for baseconv.
package telemetry

import (
	"strconv"

	"go.opentelemetry.io/otel/attribute"
)

// Semantic convention attribute keys for baseconv telemetry.
// Following OpenTelemetry naming conventions: namespace.attribute_name

const (
	// AttrEnvironment specifies the deployment environment (dev/staging/prod) for every metric.
	AttrEnvironment = attribute.Key("environment")
	// AttrFromBase records the radix of the input number.
	AttrFromBase = attribute.Key("conversion.from_base")
	// AttrToBase records the radix of the result.
	AttrToBase = attribute.Key("conversion.to_base")
	// AttrPath distinguishes to_base10, from_base10 and via_base10 routing.
	AttrPath = attribute.Key("conversion.path")
	// AttrSurface identifies the entrypoint that requested the conversion (cli, http, batch).
	AttrSurface = attribute.Key("surface")
	// AttrResult records the outcome of an operation (success, error).
	AttrResult = attribute.Key("result")
	// AttrErrorType categorizes failures by error code.
	AttrErrorType = attribute.Key("error.type")
	// AttrRoute labels HTTP API metrics by route.
	AttrRoute = attribute.Key("http.route")
	// AttrStatus communicates the HTTP status class of a response.
	AttrStatus = attribute.Key("status")
)

// Result values
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// ConversionAttributes returns common attributes for conversion metrics.
func ConversionAttributes(environment, surface, path string, fromBase, toBase int) []attribute.KeyValue {
	return []attribute.KeyValue{
		AttrEnvironment.String(environment),
		AttrSurface.String(surface),
		AttrPath.String(path),
		AttrFromBase.String(strconv.Itoa(fromBase)),
		AttrToBase.String(strconv.Itoa(toBase)),
	}
}

// ErrorAttributes returns attributes for error metrics.
func ErrorAttributes(environment, surface, errorType string) []attribute.KeyValue {
	return []attribute.KeyValue{
		AttrEnvironment.String(environment),
		AttrSurface.String(surface),
		AttrErrorType.String(errorType),
	}
}

// RequestAttributes returns attributes for HTTP API request metrics.
func RequestAttributes(environment, route string, status int) []attribute.KeyValue {
	return []attribute.KeyValue{
		AttrEnvironment.String(environment),
		AttrRoute.String(route),
		AttrStatus.String(strconv.Itoa(status/100) + "xx"),
	}
}
