package http

import (
	"net/http"

	"moneytracker/internal/services"
)

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := s.tracker.Goals(r.Context())
	if err != nil {
		ErrorFor(r.Context(), err).Write(w)
		return
	}
	out := make([]goalDTO, 0, len(goals))
	for _, g := range goals {
		out = append(out, toGoalDTO(g))
	}
	NewResponse().JSON(out).Write(w)
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	p, ok := parseBody(w, r)
	if !ok {
		return
	}
	g, err := s.tracker.AddGoal(r.Context(), services.GoalInput{
		Name:     p.Get("name"),
		Amount:   p.Get("amount"),
		Deadline: p.Get("deadline"),
	})
	if err != nil {
		ErrorFor(r.Context(), err).Write(w)
		return
	}
	NewResponse().Status(http.StatusCreated).JSON(toGoalDTO(g)).Write(w)
}

// handleAddGoalProgress adds "amount" to a goal, or the default step when
// no amount is given.
func (s *Server) handleAddGoalProgress(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDURLParam(r, "id")
	if err != nil {
		ErrorFor(r.Context(), err).Write(w)
		return
	}
	p, ok := parseBody(w, r)
	if !ok {
		return
	}
	g, err := s.tracker.AddGoalProgress(r.Context(), id, p.Get("amount"))
	if err != nil {
		ErrorFor(r.Context(), err).Write(w)
		return
	}
	NewResponse().JSON(toGoalDTO(g)).Write(w)
}

func (s *Server) handleSetGoalProgress(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDURLParam(r, "id")
	if err != nil {
		ErrorFor(r.Context(), err).Write(w)
		return
	}
	p, ok := parseBody(w, r)
	if !ok {
		return
	}
	g, err := s.tracker.SetGoalProgress(r.Context(), id, p.Get("progress"))
	if err != nil {
		ErrorFor(r.Context(), err).Write(w)
		return
	}
	NewResponse().JSON(toGoalDTO(g)).Write(w)
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDURLParam(r, "id")
	if err != nil {
		ErrorFor(r.Context(), err).Write(w)
		return
	}
	if err := s.tracker.DeleteGoal(r.Context(), id); err != nil {
		ErrorFor(r.Context(), err).Write(w)
		return
	}
	NewResponse().Status(http.StatusNoContent).Write(w)
}
