//go:build integration
// +build integration

package http

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kjstillabower/weatherify/internal/models"
	"github.com/kjstillabower/weatherify/internal/panel"
	"github.com/kjstillabower/weatherify/internal/search"
	"github.com/kjstillabower/weatherify/internal/service"
	testhelpers "github.com/kjstillabower/weatherify/internal/testhelpers"
)

// TestIntegration_LiveSearchAndSelect runs the search flow against the real
// Geoapify and Open-Meteo APIs. Requires GEOCODE_API_KEY.
func TestIntegration_LiveSearchAndSelect(t *testing.T) {
	cfg := testhelpers.GetIntegrationConfig(t)
	weather, geocoder := testhelpers.SetupIntegrationClients(t, cfg)
	suggestCache, cleanup := testhelpers.SetupIntegrationCache(t, cfg)
	defer cleanup()

	logger := zap.NewNop()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	board := panel.NewBoard()
	dispatcher := service.NewDispatcher(ctx, weather, geocoder, logger)
	controller := search.NewController(ctx, service.NewCachedAutocompleter(geocoder, suggestCache, time.Minute, logger), dispatcher, board.Searched, search.WithLogger(logger))
	defer controller.Close()
	router := NewRouter(NewHandler(board, controller, nil, logger, 200), logger, RouterConfig{RequestTimeout: 5 * time.Second})

	if w := do(t, router, "PUT", "/search/input", `{"text":"Berlin"}`); w.Code != http.StatusOK {
		t.Fatalf("input status = %d", w.Code)
	}

	var st models.SearchQueryState
	deadline := time.Now().Add(15 * time.Second)
	for {
		w := do(t, router, "GET", "/search", "")
		st = models.SearchQueryState{}
		_ = json.NewDecoder(w.Body).Decode(&st)
		if st.State == string(search.StateSuggestionsVisible) {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("no suggestions for Berlin, state = %+v", st)
		}
		time.Sleep(100 * time.Millisecond)
	}

	var pick string
	for _, s := range st.Suggestions {
		if s.Coordinates != nil {
			pick = s.ID
			break
		}
	}
	if pick == "" {
		t.Fatal("no suggestion with coordinates")
	}

	if w := do(t, router, "POST", "/search/select", `{"id":"`+pick+`"}`); w.Code != http.StatusAccepted {
		t.Fatalf("select status = %d (body %s)", w.Code, w.Body.String())
	}

	waitCtx, waitCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer waitCancel()
	if err := dispatcher.Wait(waitCtx); err != nil {
		t.Fatalf("dispatcher.Wait: %v", err)
	}

	view := board.Searched.View()
	if view.Loading {
		t.Fatal("searched panel still loading after forecast fetch")
	}
	if *view.TemperatureCelsius < -90 || *view.TemperatureCelsius > 60 {
		t.Errorf("implausible temperature %v", *view.TemperatureCelsius)
	}
}
