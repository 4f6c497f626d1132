package aiquiz

import "time"

type AIQuizContainer struct {
	Handler *Handler
	Service Service
}

func NewAIQuizContainer(provider Provider, timeout time.Duration) *AIQuizContainer {
	service := NewService(provider, timeout)
	handler := NewHandler(service)

	return &AIQuizContainer{
		Handler: handler,
		Service: service,
	}
}
