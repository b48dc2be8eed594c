package main

import (
	"embed"
	"html/template"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/jm2375/Kirk-Cataloger/internal/catalog"
	"github.com/jm2375/Kirk-Cataloger/internal/musicbrainz"
	"github.com/jm2375/Kirk-Cataloger/internal/youtube"
)

//go:embed templates/index.gohtml
var tplFS embed.FS

func main() {
	cfg, err := loadConfigFromEnv()
	if err != nil {
		log.Fatalf("catalog-service: %v", err)
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("catalog-service: invalid REDIS_URL: %v", err)
	}
	rdb := redis.NewClient(opt)
	defer rdb.Close()

	store := catalog.NewStore(rdb, cfg.CacheDuration)
	yt := youtube.NewClient(cfg.YouTubeAPIKey, cfg.YouTubeBaseURL)
	mb := musicbrainz.NewClient(cfg.MusicBrainzURL, cfg.userAgent(), cfg.MusicBrainzDelay)

	srv := catalog.NewServer(store, yt, mb, cfg.MusicBrainzDelay, time.Second)

	// No global timeout middleware: the stream endpoints are long-lived.
	r := srv.Router(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		corsMiddleware(cfg.CORSOrigin),
		rateLimitMiddleware(cfg.RateLimitRPS, "/api/process-playlist", "/api/playlist/"),
	)
	r.Get("/", indexHandler(cfg.APIBaseURL))

	log.Printf("catalog-service listening on :%s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatalf("catalog-service: %v", err)
	}
}

func indexHandler(apiBaseURL string) http.HandlerFunc {
	tpl := template.Must(template.ParseFS(tplFS, "templates/index.gohtml"))
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := tpl.Execute(w, struct{ API string }{API: apiBaseURL}); err != nil {
			log.Printf("catalog-service: render index: %v", err)
		}
	}
}
