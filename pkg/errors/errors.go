// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Handbook Contributors

package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/samber/oops"
)

// Code is the machine-readable identifier for an error.
type Code string

const (
	CodeConfigLoadReadFailure      Code = "config.load.read.failure"
	CodeConfigParseInvalidFormat   Code = "config.parse.invalid_format"
	CodeConfigValidateInvalidValue Code = "config.validate.invalid_value"
	CodeConfigAlreadyExists        Code = "config.write.conflict"

	CodeKnowledgeLoadReadFailure   Code = "knowledge.load.read.failure"
	CodeKnowledgeLoadInvalidFormat Code = "knowledge.load.invalid_format"
	CodeKnowledgeTopicInvalid      Code = "knowledge.topic.invalid"
	CodeKnowledgeTopicNotFound     Code = "knowledge.topic.not_found"
	CodeKnowledgeRuleInvalid       Code = "knowledge.rule.invalid"
	CodeKnowledgeRelevanceInvalid  Code = "knowledge.relevance.invalid"
	CodeKnowledgeFormatInvalid     Code = "knowledge.format.invalid"

	CodeProviderRequestInvalid  Code = "provider.request.invalid"
	CodeProviderUpstreamFailure Code = "provider.upstream.failure"
	CodeProviderNotFound        Code = "provider.registry.not_found"

	CodeSecretInvalidInput   Code = "secret.input.invalid"
	CodeSecretNotFound       Code = "secret.get.not_found"
	CodeSecretStoreFailure   Code = "secret.store.failure"
	CodeSecretDeleteFailure  Code = "secret.delete.failure"
	CodeSecretListFailure    Code = "secret.list.failure"
	CodeSecretResolveFailure Code = "secret.resolve.failure"

	CodeServerRequestInvalid  Code = "server.request.invalid"
	CodeServerInternalFailure Code = "server.internal.failure"
	CodeServerEntityNotFound  Code = "server.entity.not_found"
	CodeServerConfigInvalid   Code = "server.config.invalid"
	CodeServerStartFailure    Code = "server.start.failure"
	CodeServerShutdownFailure Code = "server.shutdown.failure"
	CodeServerRateLimited     Code = "server.request.budget_exceeded"

	CodeCLIGatewayNotRunning Code = "cli.gateway.not_running"
	CodeCLIRequestFailure    Code = "cli.request.failure"
	CodeCLIResponseInvalid   Code = "cli.response.invalid"
	CodeCLISetupFailure      Code = "cli.setup.failure"
	CodeCLIInputInvalid      Code = "cli.input.invalid"
)

// Attr is a structured key/value context attached to an error.
type Attr struct {
	Key   string
	Value any
}

// Field creates a structured error field.
func Field(key string, value any) Attr {
	return Attr{Key: key, Value: value}
}

func FieldTopic(value string) Attr {
	return Field("topic", value)
}

func FieldRule(value string) Attr {
	return Field("rule", value)
}

func FieldProvider(value string) Attr {
	return Field("provider", value)
}

func FieldPath(value string) Attr {
	return Field("path", value)
}

func New(code Code, msg string, fields ...Attr) error {
	return oops.Code(code).With(flatten(fields)...).New(msg)
}

func Errorf(code Code, format string, args ...any) error {
	return oops.Code(code).Errorf(format, args...)
}

func Wrap(err error, code Code, msg string, fields ...Attr) error {
	if err == nil {
		return nil
	}

	return oops.Code(code).With(flatten(fields)...).Wrapf(err, "%s", msg)
}

func Wrapf(err error, code Code, format string, args ...any) error {
	if err == nil {
		return nil
	}

	return oops.Code(code).Wrapf(err, format, args...)
}

// With adds structured fields to an existing error chain.
func With(err error, fields ...Attr) error {
	if err == nil {
		return nil
	}

	code := CodeOf(err)
	if code == "" {
		code = CodeServerInternalFailure
	}

	return oops.Code(code).With(flatten(fields)...).Wrap(err)
}

// CodeOf returns the code carried by err, or "" for errors built outside
// this package.
func CodeOf(err error) Code {
	oopsErr, ok := oops.AsOops(err)
	if err == nil || !ok {
		return ""
	}

	switch code := oopsErr.Code().(type) {
	case Code:
		return code
	case string:
		return Code(code)
	default:
		return Code(fmt.Sprint(code))
	}
}

// FieldsOf returns the structured fields attached along err's chain.
func FieldsOf(err error) map[string]any {
	if oopsErr, ok := oops.AsOops(err); err != nil && ok {
		return oopsErr.Context()
	}
	return nil
}

func HasCode(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}

// statusByReason maps the last segment of a code to the HTTP status it
// implies.
var statusByReason = map[string]int{
	"not_found":       http.StatusNotFound,
	"conflict":        http.StatusConflict,
	"invalid":         http.StatusBadRequest,
	"invalid_input":   http.StatusBadRequest,
	"invalid_value":   http.StatusBadRequest,
	"invalid_format":  http.StatusBadRequest,
	"budget_exceeded": http.StatusTooManyRequests,
}

func IsNotFound(err error) bool {
	return HTTPStatus(err) == http.StatusNotFound
}

func IsConflict(err error) bool {
	return HTTPStatus(err) == http.StatusConflict
}

func IsInvalidInput(err error) bool {
	return HTTPStatus(err) == http.StatusBadRequest
}

func IsBudgetExceeded(err error) bool {
	return HTTPStatus(err) == http.StatusTooManyRequests
}

func IsUpstreamFailure(err error) bool {
	return HTTPStatus(err) == http.StatusBadGateway
}

// HTTPStatus classifies err by its code. Codes with an "upstream" segment
// ending in "failure" are gateway errors; unknown codes are internal.
func HTTPStatus(err error) int {
	code := string(CodeOf(err))
	if code == "" {
		return http.StatusInternalServerError
	}

	segments := strings.Split(code, ".")
	last := segments[len(segments)-1]
	if status, ok := statusByReason[last]; ok {
		return status
	}
	if last == "failure" && slices.Contains(segments, "upstream") {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func Join(errs ...error) error {
	return oops.Code(CodeServerInternalFailure).Wrap(stderrors.Join(errs...))
}

func flatten(fields []Attr) []any {
	pairs := make([]any, 0, len(fields)*2)
	for _, field := range fields {
		if field.Key == "" {
			continue
		}
		pairs = append(pairs, field.Key, field.Value)
	}
	return pairs
}
