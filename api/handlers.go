package api

import (
	"fmt"
	"net/http"

	"github.com/lookbusy1344/arm-emulator/codegen"
	"github.com/lookbusy1344/arm-emulator/config"
	"github.com/lookbusy1344/arm-emulator/service"
)

// compileSource runs the compile pipeline with cfg's configured sizes,
// for the stateless /api/v1/compile endpoint.
func compileSource(path string, source string, cfg *config.Config) service.CompileResult {
	opts := codegen.DefaultOptions()
	opts.StackSize = cfg.Compile.StackSize
	opts.HeapSize = cfg.Compile.HeapSize
	return service.Compile(path, []byte(source), opts)
}

// handleCreateSession handles POST /api/v1/session.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.sessions.CreateSession()
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to create session: %v", err))
		return
	}

	writeJSON(w, http.StatusCreated, SessionCreateResponse{
		SessionID: session.ID,
		CreatedAt: session.CreatedAt,
	})
}

// handleListSessions handles GET /api/v1/session.
func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	ids := s.sessions.ListSessions()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sessions": ids,
		"count":    len(ids),
	})
}

// handleGetSessionStatus handles GET /api/v1/session/{id}.
func (s *Server) handleGetSessionStatus(w http.ResponseWriter, r *http.Request, sessionID string) {
	_, svc, err := s.sessions.RequireProgram(sessionID)
	if err != nil {
		writeSessionErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toSessionStatusResponse(sessionID, svc.Snapshot()))
}

// handleDestroySession handles DELETE /api/v1/session/{id}.
func (s *Server) handleDestroySession(w http.ResponseWriter, r *http.Request, sessionID string) {
	if err := s.sessions.DestroySession(sessionID); err != nil {
		writeSessionErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

// handleLoadProgram handles POST /api/v1/session/{id}/load.
func (s *Server) handleLoadProgram(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req CompileRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if len(req.Source) > s.cfg.Service.MaxSourceBytes {
		writeError(w, http.StatusRequestEntityTooLarge, "Source exceeds maximum size")
		return
	}

	result, err := s.sessions.LoadSource(sessionID, req.Source)
	if err != nil {
		if err == ErrSessionNotFound {
			writeSessionErr(w, err)
			return
		}
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to load program: %v", err))
		return
	}

	writeJSON(w, http.StatusOK, toCompileResponse(result))
}

// handleRun handles POST /api/v1/session/{id}/run: run to completion or
// until a breakpoint/watchpoint fires.
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request, sessionID string) {
	_, svc, err := s.sessions.RequireProgram(sessionID)
	if err != nil {
		writeSessionErr(w, err)
		return
	}

	state, reason, runErr := svc.Continue()
	if s.broadcaster != nil {
		s.broadcastExecution(sessionID, state, reason, runErr)
	}

	resp := toSessionStatusResponse(sessionID, svc.Snapshot())
	if runErr != nil {
		resp.Error = runErr.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleStop handles POST /api/v1/session/{id}/stop.
func (s *Server) handleStop(w http.ResponseWriter, r *http.Request, sessionID string) {
	_, svc, err := s.sessions.RequireProgram(sessionID)
	if err != nil {
		writeSessionErr(w, err)
		return
	}
	svc.Stop()
	writeJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

// handleStep handles POST /api/v1/session/{id}/step: execute one statement.
func (s *Server) handleStep(w http.ResponseWriter, r *http.Request, sessionID string) {
	_, svc, err := s.sessions.RequireProgram(sessionID)
	if err != nil {
		writeSessionErr(w, err)
		return
	}

	stepErr := svc.Step()
	resp := toSessionStatusResponse(sessionID, svc.Snapshot())
	if stepErr != nil {
		resp.Error = stepErr.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleReset handles POST /api/v1/session/{id}/reset.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request, sessionID string) {
	_, svc, err := s.sessions.RequireProgram(sessionID)
	if err != nil {
		writeSessionErr(w, err)
		return
	}

	if err := svc.Reset(s.cfg.Compile.MaxSteps); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to reset: %v", err))
		return
	}

	writeJSON(w, http.StatusOK, toSessionStatusResponse(sessionID, svc.Snapshot()))
}

// handleGetVariables handles GET /api/v1/session/{id}/variables.
func (s *Server) handleGetVariables(w http.ResponseWriter, r *http.Request, sessionID string) {
	_, svc, err := s.sessions.RequireProgram(sessionID)
	if err != nil {
		writeSessionErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"variables": svc.Variables()})
}

// handleGetStack handles GET /api/v1/session/{id}/stack.
func (s *Server) handleGetStack(w http.ResponseWriter, r *http.Request, sessionID string) {
	_, svc, err := s.sessions.RequireProgram(sessionID)
	if err != nil {
		writeSessionErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, StackResponse{Entries: svc.Stack()})
}

// handleGetIR handles GET /api/v1/session/{id}/ir.
func (s *Server) handleGetIR(w http.ResponseWriter, r *http.Request, sessionID string) {
	_, svc, err := s.sessions.RequireProgram(sessionID)
	if err != nil {
		writeSessionErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, IRResponse{Lines: svc.IR()})
}

// handleGetOutput handles GET /api/v1/session/{id}/output: drains
// whatever the program has printed since the last call.
func (s *Server) handleGetOutput(w http.ResponseWriter, r *http.Request, sessionID string) {
	_, svc, err := s.sessions.RequireProgram(sessionID)
	if err != nil {
		writeSessionErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, OutputEvent{Stream: "stdout", Content: svc.Output()})
}

// handleAddBreakpoint handles POST /api/v1/session/{id}/breakpoint.
func (s *Server) handleAddBreakpoint(w http.ResponseWriter, r *http.Request, sessionID string) {
	_, svc, err := s.sessions.RequireProgram(sessionID)
	if err != nil {
		writeSessionErr(w, err)
		return
	}

	var req BreakpointRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	bp := svc.AddBreakpoint(req.Index, req.Temporary, req.Condition)
	writeJSON(w, http.StatusCreated, bp)
}

// handleDeleteBreakpoint handles DELETE /api/v1/session/{id}/breakpoint/{bpID}.
func (s *Server) handleDeleteBreakpoint(w http.ResponseWriter, r *http.Request, sessionID, idStr string) {
	_, svc, err := s.sessions.RequireProgram(sessionID)
	if err != nil {
		writeSessionErr(w, err)
		return
	}

	id, err := parseIntParam(idStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid breakpoint ID")
		return
	}

	if err := svc.RemoveBreakpoint(id); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

// handleListBreakpoints handles GET /api/v1/session/{id}/breakpoints.
func (s *Server) handleListBreakpoints(w http.ResponseWriter, r *http.Request, sessionID string) {
	_, svc, err := s.sessions.RequireProgram(sessionID)
	if err != nil {
		writeSessionErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, BreakpointsResponse{Breakpoints: svc.Breakpoints()})
}

// handleAddWatchpoint handles POST /api/v1/session/{id}/watchpoint.
func (s *Server) handleAddWatchpoint(w http.ResponseWriter, r *http.Request, sessionID string) {
	_, svc, err := s.sessions.RequireProgram(sessionID)
	if err != nil {
		writeSessionErr(w, err)
		return
	}

	var req WatchpointRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Type == "" {
		req.Type = "write"
	}

	wp, err := svc.AddWatchpoint(req.Type, req.Variable)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, wp)
}

// handleDeleteWatchpoint handles DELETE /api/v1/session/{id}/watchpoint/{wpID}.
func (s *Server) handleDeleteWatchpoint(w http.ResponseWriter, r *http.Request, sessionID, idStr string) {
	_, svc, err := s.sessions.RequireProgram(sessionID)
	if err != nil {
		writeSessionErr(w, err)
		return
	}

	id, err := parseIntParam(idStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid watchpoint ID")
		return
	}

	if err := svc.RemoveWatchpoint(id); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

// handleListWatchpoints handles GET /api/v1/session/{id}/watchpoints.
func (s *Server) handleListWatchpoints(w http.ResponseWriter, r *http.Request, sessionID string) {
	_, svc, err := s.sessions.RequireProgram(sessionID)
	if err != nil {
		writeSessionErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, WatchpointsResponse{Watchpoints: svc.Watchpoints()})
}

// handleEvaluateExpression handles POST /api/v1/session/{id}/evaluate.
func (s *Server) handleEvaluateExpression(w http.ResponseWriter, r *http.Request, sessionID string) {
	_, svc, err := s.sessions.RequireProgram(sessionID)
	if err != nil {
		writeSessionErr(w, err)
		return
	}

	var req EvaluateRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	value, err := svc.Evaluate(req.Expression)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, EvaluateResponse{Value: value})
}

// handleSendStdin handles POST /api/v1/session/{id}/stdin.
func (s *Server) handleSendStdin(w http.ResponseWriter, r *http.Request, sessionID string) {
	_, svc, err := s.sessions.RequireProgram(sessionID)
	if err != nil {
		writeSessionErr(w, err)
		return
	}

	var req StdinRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	svc.SendInput([]byte(req.Data))
	writeJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

// broadcastExecution pushes a run's outcome to every WebSocket client
// subscribed to this session.
func (s *Server) broadcastExecution(sessionID string, state service.ExecutionState, reason string, runErr error) {
	switch {
	case runErr != nil:
		s.broadcaster.BroadcastExecutionEvent(sessionID, "error", map[string]interface{}{"message": runErr.Error()})
	case state == service.StateHalted:
		s.broadcaster.BroadcastExecutionEvent(sessionID, "halted", nil)
	case reason != "":
		s.broadcaster.BroadcastExecutionEvent(sessionID, "stopped", map[string]interface{}{"message": reason})
	}
}

func writeSessionErr(w http.ResponseWriter, err error) {
	switch err {
	case ErrSessionNotFound:
		writeError(w, http.StatusNotFound, "Session not found")
	case ErrNoProgramLoaded:
		writeError(w, http.StatusBadRequest, "No program loaded for this session")
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
