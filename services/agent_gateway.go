package services

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/intervox-ai/backend/interview"
	ws "github.com/intervox-ai/backend/websocket"
)

// GatewayStore is the slice of the session store the gateway needs.
type GatewayStore interface {
	interview.Store
	AddMetric(ctx context.Context, interviewID, metricName, metricValue string) error
}

// AgentCommand is one tool-style instruction from the conversation driver.
// The type selects the state-machine operation; the remaining fields carry
// that operation's arguments.
type AgentCommand struct {
	Type              string `json:"type"`
	InterviewID       string `json:"interview_id,omitempty"`
	Name              string `json:"name,omitempty"`
	Position          string `json:"position,omitempty"`
	Question          string `json:"question,omitempty"`
	Response          string `json:"response,omitempty"`
	QualityScore      int    `json:"quality_score,omitempty"`
	Note              string `json:"note,omitempty"`
	OverallImpression string `json:"overall_impression,omitempty"`
	MetricName        string `json:"metric_name,omitempty"`
	MetricValue       string `json:"metric_value,omitempty"`
}

// AgentReply is the gateway's answer to a command.
type AgentReply struct {
	Type          string                    `json:"type"`
	Command       string                    `json:"command,omitempty"`
	Message       string                    `json:"message,omitempty"`
	InterviewID   string                    `json:"interview_id,omitempty"`
	Status        *interview.StatusSnapshot `json:"status,omitempty"`
	Report        *interview.Report         `json:"report,omitempty"`
	ShouldAdvance bool                      `json:"should_advance,omitempty"`
	Error         string                    `json:"error,omitempty"`
}

// AgentGateway binds each connected conversation driver to its own
// interview session and translates driver commands into state-machine
// operations. Each session is driven by exactly one connection, so
// per-session calls need no locking; the map of sessions does.
type AgentGateway struct {
	store                GatewayStore
	maxQuestionsPerPhase int

	mu       sync.Mutex
	sessions map[*ws.Client]*interview.Session
}

func NewAgentGateway(store GatewayStore, maxQuestionsPerPhase int) *AgentGateway {
	return &AgentGateway{
		store:                store,
		maxQuestionsPerPhase: maxQuestionsPerPhase,
		sessions:             make(map[*ws.Client]*interview.Session),
	}
}

// Attach binds a fresh interview session to a newly connected driver and
// wires the client's message and close handlers.
func (g *AgentGateway) Attach(client *ws.Client) {
	session := interview.NewSession(g.store, g.maxQuestionsPerPhase)

	g.mu.Lock()
	g.sessions[client] = session
	g.mu.Unlock()

	client.MessageHandler = g.handleMessage
	client.OnClose = g.detach

	agentConnections.Inc()
	slog.Info("Conversation driver attached", "identity", client.Identity, "room_name", client.RoomName)
}

func (g *AgentGateway) detach(client *ws.Client) {
	g.mu.Lock()
	session, ok := g.sessions[client]
	delete(g.sessions, client)
	g.mu.Unlock()

	if ok {
		agentConnections.Dec()
		slog.Info("Conversation driver detached", "identity", client.Identity, "interview_id", session.InterviewID(), "phase", session.Phase())
	}
}

func (g *AgentGateway) handleMessage(client *ws.Client, messageBytes []byte) {
	var cmd AgentCommand
	if err := json.Unmarshal(messageBytes, &cmd); err != nil {
		slog.Error("Failed to unmarshal agent command", "error", err, "identity", client.Identity)
		client.SendJSON(AgentReply{Type: "error", Error: "invalid command payload"})
		return
	}

	g.mu.Lock()
	session, ok := g.sessions[client]
	g.mu.Unlock()
	if !ok {
		client.SendJSON(AgentReply{Type: "error", Command: cmd.Type, Error: "no session bound to this connection"})
		return
	}

	agentCommands.WithLabelValues(cmd.Type).Inc()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client.SendJSON(g.dispatch(ctx, session, cmd))
}

func (g *AgentGateway) dispatch(ctx context.Context, session *interview.Session, cmd AgentCommand) AgentReply {
	switch cmd.Type {
	case "record_candidate_info":
		// The token endpoint may have already opened the row; binding to
		// its id keeps one row per conversation.
		if cmd.InterviewID != "" {
			session.Bind(cmd.InterviewID)
		}
		hadRow := session.InterviewID() != ""
		message, err := session.RecordCandidateInfo(ctx, cmd.Name, cmd.Position)
		if err != nil {
			// The conversation keeps going in memory; completion retries
			// the write.
			slog.Error("Failed to persist candidate info", "error", err, "candidate_name", cmd.Name)
			return AgentReply{Type: "error", Command: cmd.Type, Error: "session could not be persisted, continuing in memory"}
		}
		if !hadRow {
			sessionsStarted.Inc()
		}
		return AgentReply{Type: "ack", Command: cmd.Type, Message: message, InterviewID: session.InterviewID()}

	case "record_question":
		message, _ := session.RecordQuestion(cmd.Question)
		return AgentReply{Type: "ack", Command: cmd.Type, Message: message, ShouldAdvance: session.ShouldAdvance()}

	case "record_response":
		message, err := session.RecordResponse(cmd.Response, cmd.QualityScore)
		if errors.Is(err, interview.ErrScoreOutOfRange) {
			return AgentReply{Type: "error", Command: cmd.Type, Error: err.Error()}
		}
		return AgentReply{Type: "ack", Command: cmd.Type, Message: message}

	case "record_note":
		message, _ := session.RecordNote(cmd.Note)
		return AgentReply{Type: "ack", Command: cmd.Type, Message: message}

	case "advance_phase":
		message := session.Advance()
		return AgentReply{Type: "ack", Command: cmd.Type, Message: message}

	case "get_status":
		status := session.Status()
		return AgentReply{Type: "status", Command: cmd.Type, Status: &status, ShouldAdvance: session.ShouldAdvance()}

	case "get_report":
		report := session.GenerateReport()
		return AgentReply{Type: "report", Command: cmd.Type, Report: &report}

	case "record_metric":
		if session.InterviewID() == "" {
			return AgentReply{Type: "error", Command: cmd.Type, Error: "no persisted session to attach the metric to"}
		}
		if err := g.store.AddMetric(ctx, session.InterviewID(), cmd.MetricName, cmd.MetricValue); err != nil {
			return AgentReply{Type: "error", Command: cmd.Type, Error: "failed to record metric"}
		}
		return AgentReply{Type: "ack", Command: cmd.Type, Message: "Metric recorded."}

	case "complete_interview":
		message, err := session.Complete(ctx, cmd.OverallImpression)
		if err != nil {
			slog.Error("Failed to complete interview", "error", err, "interview_id", session.InterviewID())
			return AgentReply{Type: "error", Command: cmd.Type, Error: err.Error()}
		}
		if message != interview.AlreadyCompletedMessage {
			sessionsCompleted.Inc()
		}
		return AgentReply{Type: "ack", Command: cmd.Type, Message: message, InterviewID: session.InterviewID()}

	default:
		slog.Warn("Unknown agent command", "command", cmd.Type)
		return AgentReply{Type: "error", Command: cmd.Type, Error: "unknown command"}
	}
}
