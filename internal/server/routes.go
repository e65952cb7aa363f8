// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Handbook Contributors

package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/prmsu-dev/handbook/internal/answer"
	"github.com/prmsu-dev/handbook/internal/provider"
)

// ServiceName is reported by the health endpoint.
const ServiceName = "PRMSU Chatbot"

func (s *Server) registerRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "info",
		Method:      http.MethodGet,
		Path:        "/",
		Summary:     "API information",
		Tags:        []string{"system"},
	}, s.handleInfo)

	huma.Register(s.api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Tags:        []string{"system"},
	}, s.handleHealth)

	// Chat endpoints. /chat is the original path; /api/v1/chat sits beside
	// the other versioned routes.
	huma.Register(s.api, huma.Operation{
		OperationID: "chat",
		Method:      http.MethodPost,
		Path:        "/chat",
		Summary:     "Ask a question about the student handbook",
		Tags:        []string{"chat"},
	}, s.handleChat)

	huma.Register(s.api, huma.Operation{
		OperationID: "chat-v1",
		Method:      http.MethodPost,
		Path:        "/api/v1/chat",
		Summary:     "Ask a question about the student handbook",
		Tags:        []string{"chat"},
	}, s.handleChat)

	// Topic endpoints
	huma.Register(s.api, huma.Operation{
		OperationID: "list-topics",
		Method:      http.MethodGet,
		Path:        "/api/v1/topics",
		Summary:     "List knowledge base topics",
		Tags:        []string{"topics"},
	}, s.handleListTopics)

	huma.Register(s.api, huma.Operation{
		OperationID: "get-topic",
		Method:      http.MethodGet,
		Path:        "/api/v1/topics/{key}",
		Summary:     "Get a knowledge base topic",
		Tags:        []string{"topics"},
	}, s.handleGetTopic)

	// Generative provider endpoints are only registered when one is configured.
	if s.services.Provider() != nil {
		huma.Register(s.api, huma.Operation{
			OperationID: "get-generative-status",
			Method:      http.MethodGet,
			Path:        "/api/v1/generative/status",
			Summary:     "Get generative provider health",
			Tags:        []string{"generative"},
		}, s.handleGenerativeStatus)

		huma.Register(s.api, huma.Operation{
			OperationID: "probe-generative",
			Method:      http.MethodPost,
			Path:        "/api/v1/generative/probe",
			Summary:     "Probe the generative provider",
			Tags:        []string{"generative"},
		}, s.handleGenerativeProbe)
	}
}

// --- Request/Response types ---

type infoOutput struct {
	Body struct {
		Message   string            `json:"message"`
		Version   string            `json:"version"`
		Endpoints map[string]string `json:"endpoints"`
	}
}

// CacheHealth summarizes the answer cache.
type CacheHealth struct {
	Entries int   `json:"entries"`
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
}

// HealthBody is the JSON body of the health endpoint response.
type HealthBody struct {
	Status        string           `json:"status" example:"healthy" doc:"Health status"`
	Service       string           `json:"service" example:"PRMSU Chatbot"`
	KnowledgeBase string           `json:"knowledge_base" enum:"embedded,file" doc:"Where the knowledge base was loaded from"`
	TotalTopics   int              `json:"total_topics" doc:"Number of topics in the knowledge base"`
	Cache         *CacheHealth     `json:"cache,omitempty"`
	Generative    *provider.Status `json:"generative,omitempty" doc:"Last known generative provider health"`
}

// HealthResponse wraps the health check response.
type HealthResponse struct {
	Body HealthBody
}

type chatInput struct {
	Body struct {
		Question string `json:"question" doc:"Question about the student handbook" example:"What does PRMSU stand for?"`
		// Kept for compatibility with existing clients; only the best match is shown.
		MaxResults int `json:"max_results,omitempty" minimum:"1" maximum:"20" default:"5" doc:"Accepted for compatibility; unused"`
	}
}

// ChatResponse is the JSON body returned by the chat endpoints.
type ChatResponse struct {
	Question     string  `json:"question"`
	Answer       string  `json:"answer"`
	SourcesUsed  int     `json:"sources_used" doc:"Number of facts that matched the question"`
	ResponseTime float64 `json:"response_time" doc:"Processing time in seconds"`
	Outcome      string  `json:"outcome" enum:"answered,out_of_domain,not_found"`
	Category     string  `json:"category,omitempty" doc:"Presentation category of the answer"`
}

type chatOutput struct {
	Body ChatResponse
}

// TopicSummary is the REST representation of a knowledge base topic.
type TopicSummary struct {
	Key  string `json:"key"`
	Fact string `json:"fact"`
}

type listTopicsOutput struct {
	Body struct {
		Topics []TopicSummary `json:"topics"`
	}
}

type topicKeyInput struct {
	Key string `path:"key" doc:"Topic key" example:"grading_system"`
}

type getTopicOutput struct {
	Body TopicSummary
}

type generativeStatusOutput struct {
	Body provider.Status
}

// --- Handlers ---

func (s *Server) handleInfo(_ context.Context, _ *struct{}) (*infoOutput, error) {
	out := &infoOutput{}
	out.Body.Message = APITitle + " API"
	out.Body.Version = s.cfg.Version
	out.Body.Endpoints = map[string]string{
		"chat":   "POST /chat - Ask questions about PRMSU",
		"health": "GET /health - Health check",
		"topics": "GET /api/v1/topics - Knowledge base topics",
		"docs":   "GET /docs - API documentation",
	}
	return out, nil
}

func (s *Server) handleHealth(ctx context.Context, _ *struct{}) (*HealthResponse, error) {
	body := HealthBody{
		Status:        "healthy",
		Service:       ServiceName,
		KnowledgeBase: s.services.KnowledgeBase(),
		TotalTopics:   s.services.Knowledge().Len(),
	}
	if c, ok := s.services.Asker().(CacheStatser); ok {
		st := c.Stats()
		body.Cache = &CacheHealth{Entries: st.Entries, Hits: st.Hits, Misses: st.Misses}
	}
	if p := s.services.Provider(); p != nil {
		st := p.Status(ctx)
		body.Generative = &st
	}
	return &HealthResponse{Body: body}, nil
}

func (s *Server) handleChat(ctx context.Context, input *chatInput) (*chatOutput, error) {
	question := input.Body.Question
	if strings.TrimSpace(question) == "" {
		return nil, huma.Error400BadRequest("Question cannot be empty")
	}

	a := s.services.Asker().Answer(question)

	slog.Debug("question answered",
		"outcome", a.Outcome,
		"category", a.Category,
		"sources", a.Sources,
		"elapsed", a.Elapsed,
		"request_id", RequestIDFromContext(ctx),
	)

	return &chatOutput{Body: chatResponse(a)}, nil
}

func chatResponse(a answer.Answer) ChatResponse {
	return ChatResponse{
		Question:     a.Question,
		Answer:       a.Text,
		SourcesUsed:  a.Sources,
		ResponseTime: a.Elapsed.Seconds(),
		Outcome:      string(a.Outcome),
		Category:     a.Category,
	}
}

func (s *Server) handleListTopics(_ context.Context, _ *struct{}) (*listTopicsOutput, error) {
	topics := s.services.Knowledge().Topics()
	out := &listTopicsOutput{}
	out.Body.Topics = make([]TopicSummary, len(topics))
	for i, t := range topics {
		out.Body.Topics[i] = TopicSummary{Key: t.Key, Fact: t.Fact}
	}
	return out, nil
}

func (s *Server) handleGetTopic(_ context.Context, input *topicKeyInput) (*getTopicOutput, error) {
	t, err := s.services.Knowledge().Lookup(input.Key)
	if err != nil {
		if IsNotFound(err) {
			return nil, huma.Error404NotFound(fmt.Sprintf("topic %q not found", input.Key))
		}
		return nil, huma.Error500InternalServerError("failed to get topic")
	}
	return &getTopicOutput{Body: TopicSummary{Key: t.Key, Fact: t.Fact}}, nil
}

func (s *Server) handleGenerativeStatus(ctx context.Context, _ *struct{}) (*generativeStatusOutput, error) {
	return &generativeStatusOutput{Body: s.services.Provider().Status(ctx)}, nil
}

// handleGenerativeProbe always answers 200 with the refreshed status; a
// failed probe shows up as available=false with the error message.
func (s *Server) handleGenerativeProbe(ctx context.Context, _ *struct{}) (*generativeStatusOutput, error) {
	p := s.services.Provider()
	if err := p.Probe(ctx); err != nil {
		slog.Warn("generative provider probe failed", "error", err)
	}
	return &generativeStatusOutput{Body: p.Status(ctx)}, nil
}
