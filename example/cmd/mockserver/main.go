// Standalone mock records API for testing the CLI.
//
// Usage:
//
//	go run ./example/cmd/mockserver
//
// Then in another terminal:
//
//	go run ./cmd/wrtrack run -c example/wrtrack.yaml
package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"
)

func main() {
	fmt.Println("Mock records server starting on :9999")
	fmt.Println("World records improve every 30-120 seconds")
	fmt.Println("Press Ctrl+C to stop")
	fmt.Println()

	var (
		records = make(map[string]*mockRecord)
		holders = []string{"AX7Q", "BM2K", "CT9R", "DW4N"}
		mu      sync.Mutex
	)

	http.HandleFunc("/api/courses", func(w http.ResponseWriter, r *http.Request) {
		ids := strings.Split(r.URL.Query().Get("course_ids"), ",")

		time.Sleep(time.Duration(50+rand.Intn(150)) * time.Millisecond)

		mu.Lock()
		courses := make([]map[string]any, 0, len(ids))
		for _, id := range ids {
			if id == "" {
				continue
			}
			rec, exists := records[id]
			if !exists {
				rec = &mockRecord{
					valueMs:      int64(45000 + rand.Intn(30000)),
					holder:       holders[rand.Intn(len(holders))],
					nextChangeAt: time.Now().Add(time.Duration(30+rand.Intn(91)) * time.Second),
				}
				records[id] = rec
			}

			if time.Now().After(rec.nextChangeAt) {
				old := rec.valueMs
				rec.valueMs -= int64(100 + rand.Intn(2000))
				rec.holder = holders[rand.Intn(len(holders))]
				rec.nextChangeAt = time.Now().Add(time.Duration(30+rand.Intn(91)) * time.Second)
				slog.Info("record improved", "course", id, "from", old, "to", rec.valueMs, "holder", rec.holder)
			}

			courses = append(courses, map[string]any{
				"id":              id,
				"world_record_ms": rec.valueMs,
				"holder":          map[string]string{"code": rec.holder},
			})
		}
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"courses": courses})
	})

	if err := http.ListenAndServe(":9999", nil); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

type mockRecord struct {
	valueMs      int64
	holder       string
	nextChangeAt time.Time
}
