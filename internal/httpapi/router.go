package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"habithold/internal/config"
	"habithold/internal/service"
)

// Services bundles everything the router serves.
type Services struct {
	Users       *service.UserService
	Stats       *service.StatsService
	Habits      *service.HabitService
	Kingdoms    *service.KingdomService
	Rollups     *service.RollupService
	Rankings    *service.RankingService
	Motivations *service.MotivationService
	Watchers    *service.WatcherService
}

// NewRouter builds the HTTP surface.
func NewRouter(cfg config.ServerConfig, svc Services) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	if len(cfg.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.AllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type", "X-User-ID"},
			ExposedHeaders: []string{"X-Request-Id"},
			MaxAge:         300,
		}))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	uh := &UserHandler{Users: svc.Users, Stats: svc.Stats}
	hh := &HabitHandler{Habits: svc.Habits, Users: svc.Users}
	kh := &KingdomHandler{Kingdoms: svc.Kingdoms}
	bh := &BattleHandler{Rollups: svc.Rollups, Rankings: svc.Rankings}
	mh := &MotivationHandler{Motivations: svc.Motivations}
	wh := &WatchHandler{Watchers: svc.Watchers}

	r.Group(func(r chi.Router) {
		r.Use(RequireUser)

		r.Post("/users", uh.Register)

		r.Route("/me", func(r chi.Router) {
			r.Get("/", uh.Me)
			r.Patch("/", uh.UpdateProfile)
			r.Get("/stats", uh.PersonalStats)
			r.Get("/stats/grid", uh.Grid)
			r.Get("/stats/totals", uh.Totals)
			r.Get("/watch", wh.Stream)
			r.Delete("/motivation", mh.Dismiss)

			r.Route("/habits", func(r chi.Router) {
				r.Get("/", hh.List)
				r.Post("/", hh.Create)
				r.Patch("/{name}", hh.Update)
				r.Delete("/{name}", hh.Delete)
				r.Post("/{name}/mark", hh.Mark)
				r.Post("/{name}/days/{day}", hh.SetDay)
			})
		})

		r.Post("/kingdoms", kh.Create)
		r.Post("/kingdoms/join", kh.Join)

		r.Route("/kingdom", func(r chi.Router) {
			r.Get("/", kh.Get)
			r.Patch("/", kh.UpdateProfile)
			r.Post("/leave", kh.Leave)

			r.Get("/progress", bh.Progress)
			r.Get("/battle", bh.Due)
			r.Post("/battle/close", bh.Close)

			r.Get("/leaderboard", bh.Leaderboard)
			r.Get("/title", bh.KingdomTitle)
			r.Get("/chronicles", bh.Weeks)
			r.Get("/chronicles/overall", bh.OverallChronicle)
			r.Get("/chronicles/{week}", bh.WeekChronicle)

			r.Post("/members/{uid}/motivate", mh.Send)
		})
	})

	return r
}
