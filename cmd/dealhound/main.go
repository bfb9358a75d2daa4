// Command dealhound searches for collectible physical-media deals from the
// command line.
//
// Verbs:
//
//	dealhound search -title "House" -year 1977     one film
//	dealhound batch -file films.json               films from a JSON list
//	dealhound cache-expire                         drop expired cache rows
//	dealhound cache-clear                          drop the whole cache
//	dealhound status                               sale window + cache stats
//
// Configuration comes from the environment: SERPAPI_KEY (required),
// GEMINI_API_KEY, DEALHOUND_DB, DEALHOUND_LOG, MAX_PRICE,
// REQUESTS_PER_MINUTE.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"dealhound/internal/database"
	"dealhound/models"
	"dealhound/services/advisor"
	"dealhound/services/classifier"
	"dealhound/services/deals"
	"dealhound/services/retailers"
	"dealhound/services/salewindow"
	"dealhound/services/shopsearch"
)

func main() {
	if logPath := os.Getenv("DEALHOUND_LOG"); logPath != "" {
		log.SetOutput(&lumberjack.Logger{
			Filename:   logPath,
			MaxSize:    10, // MB
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		})
	}

	verb := "search"
	args := os.Args[1:]
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") && args[0] != "" {
		verb = args[0]
		args = args[1:]
	}

	switch verb {
	case "search":
		runSearch(args)
	case "batch":
		runBatch(args)
	case "cache-expire":
		runCacheExpire()
	case "cache-clear":
		runCacheClear()
	case "status":
		runStatus()
	default:
		log.Fatalf("unknown command %q (want search, batch, cache-expire, cache-clear or status)", verb)
	}
}

func runSearch(args []string) {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	title := fs.String("title", "", "film title (required)")
	year := fs.Int("year", 0, "film release year")
	director := fs.String("director", "", "film director")
	skipCache := fs.Bool("skip-cache", false, "bypass the result cache")
	fs.Parse(args)

	if *title == "" {
		log.Fatal("search requires -title")
	}

	finder, db := newFinder()
	defer db.Close()

	ctx, stop := signalContext()
	defer stop()

	film := &models.Film{Title: *title, Year: *year, Director: *director}
	log.Printf("[main] searching %s (price ceiling $%.2f)", film, finder.MaxPrice())
	found := finder.Search(ctx, film, *skipCache)
	printDeals(found)
}

func runBatch(args []string) {
	fs := flag.NewFlagSet("batch", flag.ExitOnError)
	file := fs.String("file", "", "JSON file with a list of films (required)")
	skipCache := fs.Bool("skip-cache", false, "bypass the result cache")
	fs.Parse(args)

	if *file == "" {
		log.Fatal("batch requires -file")
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		log.Fatalf("read film list: %v", err)
	}
	var films []*models.Film
	if err := json.Unmarshal(data, &films); err != nil {
		log.Fatalf("parse film list: %v", err)
	}
	if len(films) == 0 {
		log.Fatal("film list is empty")
	}

	finder, db := newFinder()
	defer db.Close()

	ctx, stop := signalContext()
	defer stop()

	log.Printf("[main] searching %d films (price ceiling $%.2f)", len(films), finder.MaxPrice())
	found := finder.FindAll(ctx, films, *skipCache)
	printDeals(found)
}

func runCacheExpire() {
	db, repo := openCache()
	defer db.Close()

	removed, err := repo.ClearExpired()
	if err != nil {
		log.Fatalf("clear expired cache: %v", err)
	}
	fmt.Printf("removed %d expired cache entries\n", removed)
}

func runCacheClear() {
	db, repo := openCache()
	defer db.Close()

	removed, err := repo.ClearAll()
	if err != nil {
		log.Fatalf("clear cache: %v", err)
	}
	fmt.Printf("removed %d cache entries\n", removed)
}

func runStatus() {
	status := salewindow.StatusAt(time.Now())
	if status.SalePeriod {
		fmt.Printf("sale period: %s (caching disabled)\n", status.SaleName)
	} else {
		fmt.Printf("normal period (cache ttl %dh)\n", status.CacheTTLHours)
	}

	db, repo := openCache()
	defer db.Close()

	stats, err := repo.GetStats()
	if err != nil {
		log.Fatalf("cache stats: %v", err)
	}
	fmt.Printf("cache: %d entries (%d expired)\n", stats.TotalEntries, stats.ExpiredEntries)
}

// newFinder builds the full aggregator from the environment.
func newFinder() (*deals.Finder, *database.DB) {
	serpKey := os.Getenv("SERPAPI_KEY")
	if serpKey == "" {
		log.Fatal("SERPAPI_KEY environment variable is required")
	}

	db, repo := openCache()

	httpc := &http.Client{Timeout: 30 * time.Second}
	search := shopsearch.New(serpKey, httpc)

	var adv deals.Advisor
	if geminiKey := os.Getenv("GEMINI_API_KEY"); geminiKey != "" {
		adv = advisor.New(geminiKey, httpc)
	} else {
		log.Printf("[main] GEMINI_API_KEY not set, advisory features disabled")
	}

	site := retailers.NewProtectedSiteSearcher(search)
	retailerSearch := retailers.NewSearcher(nil, site)

	finder := deals.NewFinder(deals.Config{
		Shopping:          search,
		Retailers:         retailerSearch,
		Cache:             repo,
		Advisor:           adv,
		Classifier:        classifier.New(),
		MaxPrice:          envFloat("MAX_PRICE", 20),
		RequestsPerMinute: envInt("REQUESTS_PER_MINUTE", 30),
	})
	return finder, db
}

func openCache() (*database.DB, *database.CacheRepository) {
	path := os.Getenv("DEALHOUND_DB")
	if path == "" {
		path = "dealhound.db"
	}
	db, err := database.NewDB(database.Config{DatabasePath: path})
	if err != nil {
		log.Fatalf("open database %s: %v", path, err)
	}
	return db, database.NewCacheRepository(db.Connection())
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func printDeals(found []models.Deal) {
	if len(found) == 0 {
		fmt.Println("no deals found")
		return
	}
	for _, d := range found {
		price := fmt.Sprintf("$%.2f", d.Price)
		if d.Price == 0 {
			price = "price unknown"
		}
		fmt.Printf("%s: %s (%s, %s)\n  %s\n", d.MovieTitle, d.ProductTitle, price, d.Retailer, d.URL)
	}
}

func envFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Fatalf("invalid %s value %q: %v", key, v, err)
	}
	return f
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("invalid %s value %q: %v", key, v, err)
	}
	return n
}
