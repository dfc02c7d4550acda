package obs

import (
	"encoding/json"
	"log"
	"os"
	"sync"
)

var (
	initOnce sync.Once
	shared   *log.Logger
)

// Logger returns the process-wide logger. Request logging, audit entries
// and notification records all write through it so the service emits one
// machine-parseable JSON stream on stdout.
func Logger() *log.Logger {
	initOnce.Do(func() {
		shared = log.New(os.Stdout, "", 0)
	})
	return shared
}

// LogRequest serializes the entry as a single JSON line. A marshal failure
// is reported in-band rather than dropped.
func LogRequest(entry map[string]any) {
	data, err := json.Marshal(entry)
	if err != nil {
		Logger().Println(`{"level":"error","msg":"log entry not serializable"}`)
		return
	}
	Logger().Println(string(data))
}
