package workqueue

import (
	"sync"
	"testing"
)

type readWriteBenchmark struct {
	name    string
	writers int
	filter  func(int) bool
}

var readWriteBenchmarks = []readWriteBenchmark{
	{name: "single-writer", writers: 1},
	{name: "many-writers", writers: 100},
	{name: "many-writers-filtered", writers: 100, filter: func(v int) bool { return v%2 == 0 }},
}

// One reader drains the queue while many goroutines write to it, the way a loop drains events
// posted from worker goroutines.
func BenchmarkQueueReadWrite(b *testing.B) {
	writeCount := 10000

	for _, bench := range readWriteBenchmarks {
		b.Run(bench.name, func(b *testing.B) {
			for n := 0; n < b.N; n++ {
				queue := New[int]()
				total := int64(bench.writers * writeCount)
				readCount := int64(0)

				writerWg := sync.WaitGroup{}
				writerWg.Add(bench.writers)

				// Launch goroutines that write many elements to the queue
				for i := 0; i < bench.writers; i++ {
					go func() {
						defer writerWg.Done()
						for i := 0; i < writeCount; i++ {
							queue.Write(i)
						}
					}()
				}

				// Read until every written element has been consumed. Elements rejected by the
				// filter are drained once writers are done.
				for readCount < total {
					var ok bool
					if bench.filter != nil {
						_, ok = queue.ReadFunc(bench.filter)
					} else {
						_, ok = queue.Read()
					}
					if ok {
						readCount++
						continue
					}

					if bench.filter != nil && queue.WriteCount() == uint64(total) {
						for _, ok := queue.Read(); ok; _, ok = queue.Read() {
							readCount++
						}
						continue
					}

					<-queue.HasElements()
				}

				writerWg.Wait()
			}
		})
	}
}
