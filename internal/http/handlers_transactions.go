package http

import (
	"net/http"

	"moneytracker/internal/services"
)

// parseBody reads a JSON or form body, writing a 400 on failure.
func parseBody(w http.ResponseWriter, r *http.Request) (*RequestBodyParser, bool) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError("Invalid request body").Write(w)
		return nil, false
	}
	return p, true
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	p, ok := parseBody(w, r)
	if !ok {
		return
	}
	res, err := s.tracker.AddExpense(r.Context(), services.ExpenseInput{
		Amount:   p.Get("amount"),
		Category: p.Get("category"),
		Date:     p.Get("date"),
		Note:     p.Get("note"),
	})
	if err != nil {
		ErrorFor(r.Context(), err).Write(w)
		return
	}
	NewResponse().Status(http.StatusCreated).JSON(expenseResultDTO{
		Expense:    toExpenseDTO(res.Expense),
		Advisories: advisories(res.Advisories),
	}).Write(w)
}

// handleQuickExpense records an expense dated today.
func (s *Server) handleQuickExpense(w http.ResponseWriter, r *http.Request) {
	p, ok := parseBody(w, r)
	if !ok {
		return
	}
	res, err := s.tracker.AddQuickExpense(r.Context(), p.Get("amount"), p.Get("category"), p.Get("note"))
	if err != nil {
		ErrorFor(r.Context(), err).Write(w)
		return
	}
	NewResponse().Status(http.StatusCreated).JSON(quickExpenseDTO{
		Expense:    toExpenseDTO(res.Expense),
		Daily:      toDailyDTO(res.Daily),
		Advisories: advisories(res.Advisories),
	}).Write(w)
}

func (s *Server) handleCreateIncome(w http.ResponseWriter, r *http.Request) {
	p, ok := parseBody(w, r)
	if !ok {
		return
	}
	res, err := s.tracker.AddIncome(r.Context(), services.IncomeInput{
		Amount: p.Get("amount"),
		Source: p.Get("source"),
		Date:   p.Get("date"),
	})
	if err != nil {
		ErrorFor(r.Context(), err).Write(w)
		return
	}
	NewResponse().Status(http.StatusCreated).JSON(incomeResultDTO{
		Income:     toIncomeDTO(res.Income),
		Advisories: advisories(res.Advisories),
	}).Write(w)
}

func (s *Server) handleDailySpending(w http.ResponseWriter, r *http.Request) {
	daily, err := s.tracker.DailySpending(r.Context())
	if err != nil {
		ErrorFor(r.Context(), err).Write(w)
		return
	}
	NewResponse().JSON(toDailyDTO(daily)).Write(w)
}
