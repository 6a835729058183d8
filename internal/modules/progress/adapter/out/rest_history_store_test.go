package out_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	progressout "commutecast/internal/modules/progress/adapter/out"
	"commutecast/internal/platform/calendar"
	"commutecast/internal/platform/restapi"
)

func TestRESTHistoryStoreRange(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if r.URL.Path != "/day_entries" || q.Get("user_id") != "eq.u1" || q.Get("and") != "(date.gte.2026-10-11,date.lte.2026-10-17)" {
			t.Errorf("unexpected request %s", r.URL.String())
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
  {"date":"2026-10-12","minutes_learned":15,"lessons_completed":1,"streak_active":true},
  {"date":"2026-10-13T00:00:00+00:00","minutes_learned":4,"lessons_completed":0,"streak_active":false}
]`))
	}))
	defer srv.Close()

	store := progressout.NewRESTHistoryStore(restapi.New(restapi.Options{BaseURL: srv.URL, Timeout: 5 * time.Second}))
	entries, err := store.GetCalendarRange(context.Background(), "u1", calendar.MustParse("2026-10-11"), calendar.MustParse("2026-10-17"))
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	if len(entries) != 2 || entries[0].MinutesLearned != 15 || !entries[0].StreakActive {
		t.Fatalf("unexpected entries: %+v", entries)
	}
	if entries[1].Date.String() != "2026-10-13" {
		t.Fatalf("timestamp dates must truncate to the day, got %s", entries[1].Date)
	}
}
