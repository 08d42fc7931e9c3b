package shuttle_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alitto/shuttle"
)

func ExamplePost() {
	loop := shuttle.NewLoop()
	worker := shuttle.NewWorker(loop)

	loop.InvokeLater(func() {
		defer loop.Quit()

		// The loop keeps dispatching events while the unit sleeps
		sum, err := shuttle.Post(worker, func() (int, error) {
			time.Sleep(10 * time.Millisecond)
			return 1 + 2, nil
		})
		fmt.Println(sum, err)
	})

	loop.Run(context.Background())
	// Output: 3 <nil>
}

func ExampleWorker_Post() {
	loop := shuttle.NewLoop()
	worker := shuttle.NewWorker(loop)
	errNotFound := errors.New("not found")

	loop.InvokeLater(func() {
		defer loop.Quit()

		err := worker.Post(func() error {
			return errNotFound
		})
		fmt.Println(err == errNotFound)
	})

	loop.Run(context.Background())
	// Output: true
}

func ExamplePostAsync() {
	loop := shuttle.NewLoop()
	worker := shuttle.NewAsyncWorker(loop)

	loop.InvokeLater(func() {
		err := shuttle.PostAsync(worker, shuttle.AsyncTask[string]{
			Run: func() (string, error) {
				return strings.ToUpper("done"), nil
			},
			Finish: func(outcome shuttle.Outcome[string]) {
				defer loop.Quit()
				fmt.Println(outcome.Value, outcome.Err)
			},
		})
		fmt.Println("posted", err)
	})

	loop.Run(context.Background())
	// Output:
	// posted <nil>
	// DONE <nil>
}
