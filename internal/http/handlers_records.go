package http

import (
	"context"
	"net/http"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/export"
	"fintrack/internal/log"
	"fintrack/internal/services"
)

// resource wires one record kind to the generic CRUD handlers.
type resource[T any] struct {
	kind   export.Kind
	label  string
	list   func(ctx context.Context, sess core.Session) ([]T, error)
	create func(ctx context.Context, sess core.Session, v T) (T, error)
	update func(ctx context.Context, sess core.Session, id string, v T) (T, error)
	remove func(ctx context.Context, sess core.Session, id string) error
	parse  func(p *RequestBodyParser) (T, error)
	rows   func(items []T, today core.Date) []export.Row
}

func transactionResource(rs *services.RecordService) resource[core.Transaction] {
	return resource[core.Transaction]{
		kind:   export.KindTransactions,
		label:  "Transaction",
		list:   rs.ListTransactions,
		create: rs.CreateTransaction,
		update: rs.UpdateTransaction,
		remove: rs.DeleteTransaction,
		parse:  parseTransaction,
		rows:   func(items []core.Transaction, _ core.Date) []export.Row { return export.TransactionRows(items) },
	}
}

func billResource(rs *services.RecordService) resource[core.Bill] {
	return resource[core.Bill]{
		kind:   export.KindBills,
		label:  "Bill",
		list:   rs.ListBills,
		create: rs.CreateBill,
		update: rs.UpdateBill,
		remove: rs.DeleteBill,
		parse:  parseBill,
		rows:   export.BillRows,
	}
}

func goalResource(rs *services.RecordService) resource[core.Goal] {
	return resource[core.Goal]{
		kind:   export.KindGoals,
		label:  "Goal",
		list:   rs.ListGoals,
		create: rs.CreateGoal,
		update: rs.UpdateGoal,
		remove: rs.DeleteGoal,
		parse:  parseGoal,
		rows:   func(items []core.Goal, _ core.Date) []export.Row { return export.GoalRows(items) },
	}
}

func investmentResource(rs *services.RecordService) resource[core.Investment] {
	return resource[core.Investment]{
		kind:   export.KindInvestments,
		label:  "Investment",
		list:   rs.ListInvestments,
		create: rs.CreateInvestment,
		update: rs.UpdateInvestment,
		remove: rs.DeleteInvestment,
		parse:  parseInvestment,
		rows:   func(items []core.Investment, _ core.Date) []export.Row { return export.InvestmentRows(items) },
	}
}

func registerResource[T any](mux *http.ServeMux, s *Server, res resource[T]) {
	base := "/api/" + string(res.kind)
	mux.Handle("GET "+base, s.authed(listHandler(s, res)))
	mux.Handle("POST "+base, s.authed(createHandler(s, res)))
	mux.Handle("PUT "+base+"/{id}", s.authed(updateHandler(s, res)))
	mux.Handle("DELETE "+base+"/{id}", s.authed(deleteHandler(s, res)))
}

// recordTable is the data behind the record_table fragment.
type recordTable struct {
	Kind   string
	Header []string
	Rows   [][]string
}

func listHandler[T any](s *Server, res resource[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := res.list(r.Context(), session(r))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		if items == nil {
			items = []T{}
		}
		if !isHTMX(r) {
			writeJSON(w, http.StatusOK, items)
			return
		}

		values, err := export.Values(res.rows(items, s.today()))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		table := recordTable{Kind: string(res.kind)}
		if len(values) > 0 {
			table.Header, table.Rows = values[0], values[1:]
		}
		s.render(w, r, "record_table", table)
	}
}

func createHandler[T any](s *Server, res resource[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, ok := parseBody(s, w, r, res.parse)
		if !ok {
			return
		}
		created, err := res.create(r.Context(), session(r), v)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		s.countWrite(amqp.OpCreated)
		s.respondWrite(w, r, res.kind, amqp.OpCreated, res.label+" saved", http.StatusCreated, created)
	}
}

func updateHandler[T any](s *Server, res resource[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, ok := parseBody(s, w, r, res.parse)
		if !ok {
			return
		}
		updated, err := res.update(r.Context(), session(r), r.PathValue("id"), v)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		s.countWrite(amqp.OpUpdated)
		s.respondWrite(w, r, res.kind, amqp.OpUpdated, res.label+" updated", http.StatusOK, updated)
	}
}

func deleteHandler[T any](s *Server, res resource[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := res.remove(r.Context(), session(r), r.PathValue("id")); err != nil {
			s.writeError(w, r, err)
			return
		}
		s.countWrite(amqp.OpDeleted)
		s.respondWrite(w, r, res.kind, amqp.OpDeleted, res.label+" deleted", http.StatusNoContent, nil)
	}
}

func parseBody[T any](s *Server, w http.ResponseWriter, r *http.Request, parse func(*RequestBodyParser) (T, error)) (T, bool) {
	var zero T
	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		s.writeError(w, r, err)
		return zero, false
	}
	v, err := parse(p)
	if err != nil {
		s.writeError(w, r, err)
		return zero, false
	}
	return v, true
}

// respondWrite confirms a successful write. HTMX callers always get 200 so
// the swap happens; JSON callers get status and the record.
func (s *Server) respondWrite(w http.ResponseWriter, r *http.Request, kind export.Kind, op, message string, status int, record any) {
	log.FromContext(r.Context()).DebugContext(r.Context(), "Record written",
		log.FieldRecordKind, string(kind),
		log.FieldOperation, op)

	if isHTMX(r) {
		SuccessResponse(string(kind), op, message).Write(w)
		return
	}
	if status == http.StatusNoContent {
		w.WriteHeader(status)
		return
	}
	writeJSON(w, status, record)
}

// handlePayBill marks a bill paid. The response carries the paid bill and,
// for recurring bills, the next occurrence.
func (s *Server) handlePayBill(w http.ResponseWriter, r *http.Request) {
	paid, next, err := s.records.MarkPaid(r.Context(), session(r), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.countWrite(amqp.OpUpdated)

	if isHTMX(r) {
		msg := paid.Name + " paid"
		if next != nil {
			msg += ", next due " + next.DueDate.String()
		}
		SuccessResponse(string(export.KindBills), amqp.OpUpdated, msg).Write(w)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Paid core.Bill  `json:"paid"`
		Next *core.Bill `json:"next,omitempty"`
	}{paid, next})
}
