package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"growth-hub-quiz/internal/app"
	"growth-hub-quiz/internal/domain"
	"growth-hub-quiz/internal/quiz"
)

type WSHandler struct {
	service  *app.QuizService
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.QuizService, logger *zap.Logger) *WSHandler {
	return &WSHandler{
		service: service,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type answerPayload struct {
	QuestionID string          `json:"questionId"`
	Answer     json.RawMessage `json:"answer"`
}

type matchPayload struct {
	QuestionID string `json:"questionId"`
	Left       string `json:"left"`
	Right      string `json:"right"`
}

type matchResult struct {
	QuestionID string          `json:"questionId"`
	Left       string          `json:"left"`
	Right      string          `json:"right"`
	Accepted   bool            `json:"accepted"`
	Attempt    app.AttemptView `json:"attempt"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

var errNotAnswered = errors.New("answer the current question first")

// ServeWS upgrades HTTP requests to websockets and runs one quiz attempt per connection.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	quizID := r.URL.Query().Get("quizId")
	learnerID := r.URL.Query().Get("learnerId")
	if quizID == "" || learnerID == "" {
		http.Error(w, "missing quizId or learnerId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	started, err := h.service.Start(r.Context(), quizID, learnerID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	attemptID := started.AttemptID
	defer h.service.Abandon(r.Context(), attemptID)

	updates, cancel := h.service.Subscribe(r.Context())
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	// Single writer: gorilla connections do not support concurrent writes.
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				h.logger.Debug("ws write failed", zap.String("attempt", attemptID), zap.Error(err))
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "leaderboard", Payload: update}:
				case <-closeSignals:
					return
				case <-writerDone:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	open := enqueue(send, writerDone, outboundMessage[any]{Type: "started", Payload: started})

	for open {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		for _, msg := range h.handle(r, attemptID, inbound) {
			if open = enqueue(send, writerDone, msg); !open {
				break
			}
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

func (h *WSHandler) handle(r *http.Request, attemptID string, inbound inboundMessage) []outboundMessage[any] {
	ctx := r.Context()
	switch inbound.Type {
	case "answer":
		var payload answerPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return errorMessages(errors.New("invalid answer payload"))
		}
		question, err := h.service.Question(ctx, attemptID, payload.QuestionID)
		if err != nil {
			return errorMessages(err)
		}
		answer, err := domain.DecodeAnswer(question, payload.Answer)
		if err != nil {
			return errorMessages(err)
		}
		view, err := h.service.Answer(ctx, attemptID, payload.QuestionID, answer)
		if err != nil {
			return errorMessages(err)
		}
		return []outboundMessage[any]{{Type: "progress", Payload: view}}

	case "match":
		var payload matchPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return errorMessages(errors.New("invalid match payload"))
		}
		accepted, view, err := h.service.Match(ctx, attemptID, payload.QuestionID, payload.Left, payload.Right)
		if err != nil {
			return errorMessages(err)
		}
		return []outboundMessage[any]{{Type: "matchResult", Payload: matchResult{
			QuestionID: payload.QuestionID,
			Left:       payload.Left,
			Right:      payload.Right,
			Accepted:   accepted,
			Attempt:    view,
		}}}

	case "next":
		current, err := h.service.View(ctx, attemptID)
		if err != nil {
			return errorMessages(err)
		}
		if current.State == quiz.StateComplete {
			return errorMessages(domain.ErrSessionComplete)
		}
		if current.Total > 0 && !current.Answered {
			return errorMessages(errNotAnswered)
		}
		view, err := h.service.Next(ctx, attemptID)
		if view.State != quiz.StateComplete {
			if err != nil {
				return errorMessages(err)
			}
			return []outboundMessage[any]{{Type: "progress", Payload: view}}
		}
		msgs := []outboundMessage[any]{{Type: "report", Payload: view}}
		if err != nil {
			msgs = append(msgs, errorMessages(err)...)
		}
		return msgs

	case "retake":
		view, err := h.service.Retake(ctx, attemptID)
		if err != nil {
			return errorMessages(err)
		}
		return []outboundMessage[any]{{Type: "progress", Payload: view}}

	default:
		return errorMessages(errors.New("unsupported message type"))
	}
}

// enqueue hands msg to the writer. It reports false once the writer has
// stopped, so a dead connection never blocks the read loop.
func enqueue(send chan<- outboundMessage[any], writerDone <-chan struct{}, msg outboundMessage[any]) bool {
	select {
	case send <- msg:
		return true
	case <-writerDone:
		return false
	}
}

func errorMessages(err error) []outboundMessage[any] {
	return []outboundMessage[any]{{Type: "error", Payload: errorPayload{Message: err.Error()}}}
}
