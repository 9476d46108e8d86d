package status

import (
	"fmt"
	"net/http"
)

// HandleSSEStream streams every event on the bus to the client as
// Server-Sent Events, following the teacher's HandleSSEStream shape:
// flusher check, standard SSE headers, an initial "connected" message,
// then a select loop until the client disconnects.
func HandleSSEStream(bus *Bus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "streaming unsupported", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")

		ch := bus.Subscribe()
		defer bus.Unsubscribe(ch)

		fmt.Fprintf(w, "event: connected\ndata: {}\n\n")
		flusher.Flush()

		for {
			select {
			case e, ok := <-ch:
				if !ok {
					return
				}
				msg, err := e.SSEFormat()
				if err != nil {
					continue
				}
				w.Write(msg)
				flusher.Flush()
			case <-r.Context().Done():
				return
			}
		}
	}
}
