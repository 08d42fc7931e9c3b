package metrics_test

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/alitto/shuttle"
	"github.com/alitto/shuttle/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func Example() {
	loop := shuttle.NewLoop()
	worker := shuttle.NewConcurrentWorker(loop)

	// Register loop and dispatcher collectors
	if err := metrics.RegisterLoop(prometheus.DefaultRegisterer, loop); err != nil {
		log.Fatal(err)
	}
	if err := metrics.RegisterDispatcher(prometheus.DefaultRegisterer, "concurrent", worker); err != nil {
		log.Fatal(err)
	}

	// Expose the registered metrics via HTTP
	http.Handle("/metrics", promhttp.Handler())
	go http.ListenAndServe(":8080", nil)

	go postTasks(loop, worker)

	loop.Run(context.Background())
}

func postTasks(loop *shuttle.Loop, worker *shuttle.ConcurrentWorker) {
	// Every handler blocks on its own post while the loop keeps pumping the next ones
	for i := 0; i < 1000; i++ {
		loop.InvokeLater(func() {
			worker.Post(func() error {
				time.Sleep(3 * time.Second)
				return nil
			})
		})
	}
}
