package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kjstillabower/weatherify/internal/models"
	"github.com/kjstillabower/weatherify/internal/panel"
)

func setupBenchmarkRouter() http.Handler {
	board := panel.NewBoard()
	board.Current.SetLabel("Berlin, Germany")
	board.Current.SetSnapshot(models.WeatherSnapshot{TemperatureCelsius: 18.2, WindSpeedKph: 9.4})
	h := NewHandler(board, &mockSearch{}, nil, zap.NewNop(), 200)
	return NewRouter(h, zap.NewNop(), RouterConfig{RequestTimeout: 5 * time.Second})
}

// BenchmarkHandler_GetPanels measures panel rendering through the full middleware chain.
func BenchmarkHandler_GetPanels(b *testing.B) {
	router := setupBenchmarkRouter()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/panels", nil))
		if w.Code != http.StatusOK {
			b.Fatalf("status = %d", w.Code)
		}
	}
}

// BenchmarkHandler_PutSearchInput measures keystroke handling including validation.
func BenchmarkHandler_PutSearchInput(b *testing.B) {
	router := setupBenchmarkRouter()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("PUT", "/search/input", strings.NewReader(`{"text":"san francisco"}`))
		router.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			b.Fatalf("status = %d", w.Code)
		}
	}
}

// BenchmarkHandler_ClassifyTemperature measures the icon lookup route.
func BenchmarkHandler_ClassifyTemperature(b *testing.B) {
	router := setupBenchmarkRouter()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/classify/temperature/21.5", nil))
	}
}
