package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewHandler(
	voteHandler *VoteHandler,
	voterHandler *VoterHandler,
	electionHandler *ElectionHandler,
	historyHandler *HistoryHandler,
	metricsHandler http.Handler,
) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Post("/votes", voteHandler.CastVote)
		r.Get("/votes", voteHandler.ListVotes)
		r.Get("/votes/stats", voteHandler.VoteStats)

		r.Get("/voters/{address}/status", voterHandler.Status)

		r.Get("/election", electionHandler.State)
		r.Get("/candidates", electionHandler.Candidates)
		r.Get("/results", electionHandler.Results)

		r.Route("/admin", func(r chi.Router) {
			r.Post("/candidates", electionHandler.AddCandidate)
			r.Get("/voters", voterHandler.List)
			r.Post("/voters", voterHandler.RegisterVoter)
			r.Post("/voters/batch", voterHandler.RegisterVoters)
			r.Post("/election/start", electionHandler.Start)
			r.Post("/election/end", electionHandler.End)
			r.Post("/election/reset", electionHandler.Reset)
			r.Post("/transfer", electionHandler.TransferAdmin)
		})

		r.Route("/history", func(r chi.Router) {
			r.Get("/", historyHandler.List)
			r.Get("/{number}", historyHandler.Get)
			r.Delete("/{number}", historyHandler.Delete)
		})
	})

	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler)
	}

	return r
}
